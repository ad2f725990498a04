package stabilize

import (
	"fmt"
	"image"
	"image/color"

	"video-stabilizer/pkg/geometry"

	"gocv.io/x/gocv"
)

// Compositor re-projects raw frames into the stabilization reference and
// fills exposed borders from the most recent stabilized output. It retains
// exactly one raster across frames, replaced (never aliased) each call.
type Compositor struct {
	prev    gocv.Mat
	hasPrev bool
}

// NewCompositor returns a compositor with no hole-fill history yet.
func NewCompositor() *Compositor {
	return &Compositor{}
}

// Compose inverse-warps frame by the cumulative transform, fills any exposed
// (all-black) pixels from the previous stabilized output, and retains the
// result for the next frame's hole fill. A singular cumulative transform
// emits the frame unwarped rather than aborting the stream. The caller owns
// the returned Mat.
func (c *Compositor) Compose(frame gocv.Mat, cumulative geometry.AffineTransform) (gocv.Mat, error) {
	if frame.Empty() {
		return gocv.Mat{}, fmt.Errorf("empty frame")
	}

	var out gocv.Mat
	if inv, ok := cumulative.Inverse(); ok {
		out = WarpAffine(frame, inv, frame.Cols(), frame.Rows())
		if c.hasPrev {
			fillHoles(out, c.prev)
		}
	} else {
		out = frame.Clone()
	}

	if c.hasPrev {
		c.prev.Close()
	}
	c.prev = out.Clone()
	c.hasPrev = true

	return out, nil
}

// Close releases the retained previous output.
func (c *Compositor) Close() {
	if c.hasPrev {
		c.prev.Close()
		c.hasPrev = false
	}
}

// WarpAffine applies an affine transform to an image, rendering out-of-bounds
// samples as black.
func WarpAffine(src gocv.Mat, transform geometry.AffineTransform, width, height int) gocv.Mat {
	transformMat := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	transformMat.SetDoubleAt(0, 0, transform.A)
	transformMat.SetDoubleAt(0, 1, transform.B)
	transformMat.SetDoubleAt(0, 2, transform.TX)
	transformMat.SetDoubleAt(1, 0, transform.C)
	transformMat.SetDoubleAt(1, 1, transform.D)
	transformMat.SetDoubleAt(1, 2, transform.TY)
	defer transformMat.Close()

	dst := gocv.NewMat()
	gocv.WarpAffineWithParams(src, &dst, transformMat, image.Point{width, height},
		gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{R: 0, G: 0, B: 0, A: 0})

	return dst
}

// fillHoles substitutes every all-zero pixel in dst with the corresponding
// pixel from prev. Both rasters must have the same size and type; a mismatch
// (e.g. first frame after a resolution change) leaves dst untouched.
func fillHoles(dst, prev gocv.Mat) {
	if dst.Rows() != prev.Rows() || dst.Cols() != prev.Cols() || dst.Type() != prev.Type() {
		return
	}

	d, err := dst.DataPtrUint8()
	if err != nil {
		return
	}
	p, err := prev.DataPtrUint8()
	if err != nil {
		return
	}

	ch := dst.Channels()
	if ch <= 0 {
		return
	}
	for i := 0; i+ch <= len(d); i += ch {
		hole := true
		for c := 0; c < ch; c++ {
			if d[i+c] != 0 {
				hole = false
				break
			}
		}
		if hole {
			copy(d[i:i+ch], p[i:i+ch])
		}
	}
}

// DrawLandmarks returns a copy of img with a small marker at each landmark.
// The input is never mutated, so the canonical stabilized frame that feeds
// the next hole fill stays clean.
func DrawLandmarks(img gocv.Mat, pts []geometry.Point2D) gocv.Mat {
	dst := img.Clone()
	for _, p := range pts {
		gocv.Circle(&dst, image.Pt(int(p.X), int(p.Y)), 2, color.RGBA{R: 255}, -1)
	}
	return dst
}

// Package enhance provides the frame preparation passes: local contrast
// enhancement and an edge rendition for visual inspection.
package enhance

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"gocv.io/x/gocv"
)

const (
	claheClipLimit = 2.0
	claheTileSize  = 8
)

// Contrast applies CLAHE to the lightness channel in Lab space, boosting
// local contrast while preserving color.
func Contrast(src gocv.Mat) gocv.Mat {
	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(src, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()

	clahe := gocv.NewCLAHEWithParams(claheClipLimit, image.Pt(claheTileSize, claheTileSize))
	defer clahe.Close()

	lightness := gocv.NewMat()
	defer lightness.Close()
	clahe.Apply(channels[0], &lightness)

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge([]gocv.Mat{lightness, channels[1], channels[2]}, &merged)

	dst := gocv.NewMat()
	gocv.CvtColor(merged, &dst, gocv.ColorLabToBGR)
	return dst
}

// Edges returns a thresholded Sobel edge rendition of the frame. The pass is
// pure Go, so frame prep can run it without a second OpenCV round trip.
func Edges(img image.Image, level uint8) *image.Gray {
	return segment.Threshold(effect.Sobel(img), level)
}

// Label stamps a white box with black text in the top-right corner of the
// raster, for frame number and timestamp annotations.
func Label(m *gocv.Mat, text string) {
	w := m.Cols()
	if w < 220 || m.Rows() < 50 {
		return
	}
	gocv.Rectangle(m, image.Rect(w-210, 10, w-10, 50), color.RGBA{R: 255, G: 255, B: 255}, -1)
	gocv.PutText(m, text, image.Pt(w-200, 40), gocv.FontHersheySimplex, 0.5, color.RGBA{}, 1)
}

package stabilize

import (
	"testing"

	"video-stabilizer/pkg/geometry"

	"gocv.io/x/gocv"
)

// uniformMat returns an 8-bit 3-channel raster filled with a single value.
func uniformMat(rows, cols int, val uint8) gocv.Mat {
	scalar := gocv.NewScalar(float64(val), float64(val), float64(val), 0)
	return gocv.NewMatWithSizeFromScalar(scalar, rows, cols, gocv.MatTypeCV8UC3)
}

func pixelAt(m gocv.Mat, row, col int) [3]uint8 {
	return [3]uint8{
		m.GetUCharAt(row, col*3),
		m.GetUCharAt(row, col*3+1),
		m.GetUCharAt(row, col*3+2),
	}
}

func TestComposeIdentityPassesThrough(t *testing.T) {
	c := NewCompositor()
	defer c.Close()

	frame := uniformMat(8, 8, 120)
	defer frame.Close()

	out, err := c.Compose(frame, geometry.Identity())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	defer out.Close()

	if got := pixelAt(out, 3, 3); got != [3]uint8{120, 120, 120} {
		t.Errorf("pixel (3,3) = %v, want 120s", got)
	}
}

func TestComposeFillsExposedBorderFromPreviousOutput(t *testing.T) {
	c := NewCompositor()
	defer c.Close()

	// First frame establishes the hole-fill source.
	first := uniformMat(8, 8, 150)
	defer first.Close()
	out1, err := c.Compose(first, geometry.Identity())
	if err != nil {
		t.Fatalf("Compose first: %v", err)
	}
	out1.Close()

	// Cumulative translation of +2 px in X: the inverse warp shifts the
	// frame left, exposing the two rightmost columns as sentinel black.
	second := uniformMat(8, 8, 200)
	defer second.Close()
	out2, err := c.Compose(second, geometry.Translation(2, 0))
	if err != nil {
		t.Fatalf("Compose second: %v", err)
	}
	defer out2.Close()

	if got := pixelAt(out2, 4, 2); got != [3]uint8{200, 200, 200} {
		t.Errorf("interior pixel = %v, want 200s", got)
	}
	for _, col := range []int{6, 7} {
		if got := pixelAt(out2, 4, col); got != [3]uint8{150, 150, 150} {
			t.Errorf("exposed pixel (4,%d) = %v, want filled 150s", col, got)
		}
	}
}

func TestComposeWithoutHistoryLeavesBorderBlack(t *testing.T) {
	c := NewCompositor()
	defer c.Close()

	frame := uniformMat(8, 8, 200)
	defer frame.Close()
	out, err := c.Compose(frame, geometry.Translation(2, 0))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	defer out.Close()

	if got := pixelAt(out, 4, 7); got != [3]uint8{0, 0, 0} {
		t.Errorf("exposed pixel with no history = %v, want black", got)
	}
}

func TestComposeSingularTransformEmitsUnwarped(t *testing.T) {
	c := NewCompositor()
	defer c.Close()

	frame := uniformMat(8, 8, 90)
	defer frame.Close()

	out, err := c.Compose(frame, geometry.AffineTransform{})
	if err != nil {
		t.Fatalf("Compose with singular transform: %v", err)
	}
	defer out.Close()

	if got := pixelAt(out, 2, 5); got != [3]uint8{90, 90, 90} {
		t.Errorf("pixel = %v, want the unwarped frame", got)
	}
}

func TestComposeEmptyFrame(t *testing.T) {
	c := NewCompositor()
	defer c.Close()

	if _, err := c.Compose(gocv.NewMat(), geometry.Identity()); err == nil {
		t.Error("expected error for empty frame")
	}
}

func TestDrawLandmarksDoesNotMutateInput(t *testing.T) {
	frame := uniformMat(16, 16, 0)
	defer frame.Close()

	marked := DrawLandmarks(frame, []geometry.Point2D{{X: 8, Y: 8}})
	defer marked.Close()

	if got := pixelAt(marked, 8, 8); got == [3]uint8{0, 0, 0} {
		t.Error("marker not drawn on the copy")
	}
	if got := pixelAt(frame, 8, 8); got != [3]uint8{0, 0, 0} {
		t.Errorf("input frame mutated: pixel = %v", got)
	}
}

package enhance

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestContrastPreservesShape(t *testing.T) {
	scalar := gocv.NewScalar(40, 90, 160, 0)
	src := gocv.NewMatWithSizeFromScalar(scalar, 32, 48, gocv.MatTypeCV8UC3)
	defer src.Close()

	dst := Contrast(src)
	defer dst.Close()

	if dst.Rows() != 32 || dst.Cols() != 48 {
		t.Errorf("output size = %dx%d, want 48x32", dst.Cols(), dst.Rows())
	}
	if dst.Type() != gocv.MatTypeCV8UC3 {
		t.Errorf("output type = %v, want CV8UC3", dst.Type())
	}
}

func TestEdgesFindsStepBoundary(t *testing.T) {
	// Left half black, right half white: the Sobel response peaks at the
	// vertical boundary.
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 20; x < 40; x++ {
			img.Set(x, y, color.White)
		}
	}

	edges := Edges(img, 60)
	if b := edges.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("edge bounds = %v, want 40x20", b)
	}
	if edges.GrayAt(20, 10).Y == 0 {
		t.Error("no edge response at the step boundary")
	}
	if edges.GrayAt(5, 10).Y != 0 {
		t.Error("edge response in a flat region")
	}
}

func TestLabelStampsBox(t *testing.T) {
	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 60, 320, gocv.MatTypeCV8UC3)
	defer src.Close()

	Label(&src, "Frame: 0001 | 00:20")

	// Inside the stamped box.
	if src.GetUCharAt(20, (320-100)*3) != 255 {
		t.Error("label box not stamped")
	}
	// Well outside it.
	if src.GetUCharAt(55, 10*3) != 0 {
		t.Error("label leaked outside its box")
	}
}

func TestLabelSkipsTinyFrames(t *testing.T) {
	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 20, 100, gocv.MatTypeCV8UC3)
	defer src.Close()

	Label(&src, "x") // must not panic or draw out of bounds
	if src.GetUCharAt(10, 50*3) != 0 {
		t.Error("tiny frame should be left untouched")
	}
}

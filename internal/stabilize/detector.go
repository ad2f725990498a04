package stabilize

import (
	"fmt"

	"video-stabilizer/pkg/geometry"

	"gocv.io/x/gocv"
)

// Detector proposes new landmark candidates on a grayscale frame.
type Detector interface {
	Detect(gray gocv.Mat, maxCorners int) ([]geometry.Point2D, error)
}

// CornerDetector finds Shi-Tomasi corners via GoodFeaturesToTrack.
type CornerDetector struct {
	Quality     float64 // quality threshold relative to the strongest corner
	MinDistance float64 // minimum pairwise separation in pixels
}

// NewCornerDetector returns a detector with the stabilizer's tuning.
func NewCornerDetector() *CornerDetector {
	return &CornerDetector{Quality: QualityLevel, MinDistance: MinDistance}
}

// Detect returns up to maxCorners candidate positions. Finding none is not
// an error; the caller just keeps the landmarks it already has.
func (d *CornerDetector) Detect(gray gocv.Mat, maxCorners int) ([]geometry.Point2D, error) {
	if gray.Empty() {
		return nil, fmt.Errorf("empty grayscale frame")
	}

	corners := gocv.NewMat()
	defer corners.Close()
	gocv.GoodFeaturesToTrack(gray, &corners, maxCorners, d.Quality, d.MinDistance)

	pts := make([]geometry.Point2D, 0, corners.Rows())
	for i := 0; i < corners.Rows(); i++ {
		v := corners.GetVecfAt(i, 0)
		if len(v) < 2 {
			continue
		}
		pts = append(pts, geometry.Point2D{X: float64(v[0]), Y: float64(v[1])})
	}
	return pts, nil
}

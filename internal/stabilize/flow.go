package stabilize

import (
	"fmt"

	"video-stabilizer/pkg/geometry"

	"gocv.io/x/gocv"
)

// TrackResult holds the surviving correspondences of one tracking step.
// Old and New are parallel arrays restricted to landmarks the flow marked
// valid; Attempted is the pre-tracking landmark count.
type TrackResult struct {
	Old       []geometry.Point2D
	New       []geometry.Point2D
	Attempted int
}

// Matched returns how many landmarks survived the step.
func (r TrackResult) Matched() int {
	return len(r.New)
}

// FlowTracker matches landmarks from one grayscale frame to the next.
type FlowTracker interface {
	Track(prev, next gocv.Mat, pts []geometry.Point2D) (TrackResult, error)
}

// PyrLKTracker computes pyramidal Lucas-Kanade sparse optical flow.
type PyrLKTracker struct{}

// NewPyrLKTracker returns a tracker with OpenCV's default pyramid settings.
func NewPyrLKTracker() *PyrLKTracker {
	return &PyrLKTracker{}
}

// Track computes the displaced position of every landmark and drops the ones
// whose flow status is invalid.
func (t *PyrLKTracker) Track(prev, next gocv.Mat, pts []geometry.Point2D) (TrackResult, error) {
	if prev.Empty() || next.Empty() {
		return TrackResult{}, fmt.Errorf("empty frame")
	}
	if len(pts) == 0 {
		return TrackResult{}, nil
	}

	prevPts := pointsToMat(pts)
	defer prevPts.Close()
	nextPts := gocv.NewMat()
	defer nextPts.Close()
	status := gocv.NewMat()
	defer status.Close()
	flowErr := gocv.NewMat()
	defer flowErr.Close()

	gocv.CalcOpticalFlowPyrLK(prev, next, prevPts, nextPts, &status, &flowErr)

	res := TrackResult{Attempted: len(pts)}
	for i := 0; i < nextPts.Rows() && i < len(pts); i++ {
		if status.GetUCharAt(i, 0) != 1 {
			continue
		}
		v := nextPts.GetVecfAt(i, 0)
		res.Old = append(res.Old, pts[i])
		res.New = append(res.New, geometry.Point2D{X: float64(v[0]), Y: float64(v[1])})
	}
	return res, nil
}

// pointsToMat packs points into an Nx1 two-channel float32 Mat, the layout
// the optical flow call expects.
func pointsToMat(pts []geometry.Point2D) gocv.Mat {
	m := gocv.NewMatWithSize(len(pts), 1, gocv.MatTypeCV32FC2)
	for i, p := range pts {
		m.SetFloatAt(i, 0, float32(p.X))
		m.SetFloatAt(i, 1, float32(p.Y))
	}
	return m
}

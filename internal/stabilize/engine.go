// Package stabilize implements the per-frame video stabilization engine:
// tracked landmark maintenance, robust similarity motion estimation between
// consecutive frames, multiplicative accumulation into a cumulative
// transform, and inverse warping of each frame into the frame-0 reference
// with hole filling from the last stabilized output.
package stabilize

import (
	"fmt"
	"log"

	"video-stabilizer/pkg/geometry"

	"gocv.io/x/gocv"
)

// Engine runs the per-frame pipeline: conditional corner detection, optical
// flow tracking, failure check, motion estimation, accumulation, and
// compositing. It is strictly sequential; frame N must finish before frame
// N+1 starts, because the cumulative transform, the landmark set, and the
// retained rasters form a causal dependency chain.
type Engine struct {
	detector   Detector
	tracker    FlowTracker
	landmarks  *LandmarkSet
	state      MotionState
	compositor *Compositor

	prevGray gocv.Mat
	hasPrev  bool

	// Verbose enables per-frame diagnostics (feature counts).
	Verbose bool
}

// NewEngine creates an engine with the gocv-backed detector and tracker.
func NewEngine() *Engine {
	return NewEngineWith(NewCornerDetector(), NewPyrLKTracker())
}

// NewEngineWith creates an engine with custom detection and tracking stages.
func NewEngineWith(d Detector, t FlowTracker) *Engine {
	return &Engine{
		detector:   d,
		tracker:    t,
		landmarks:  NewLandmarkSet(),
		state:      NewMotionState(),
		compositor: NewCompositor(),
	}
}

// State returns the current motion state.
func (e *Engine) State() MotionState {
	return e.state
}

// Landmarks returns the currently tracked positions. The slice is valid
// until the next Process call.
func (e *Engine) Landmarks() []geometry.Point2D {
	return e.landmarks.Points()
}

// Process runs one frame through the pipeline and returns the stabilized
// raster. The caller owns the returned Mat; the input frame is not retained.
func (e *Engine) Process(frame gocv.Mat) (gocv.Mat, error) {
	if frame.Empty() {
		return gocv.Mat{}, fmt.Errorf("empty frame")
	}

	gray := gocv.NewMat()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	if e.landmarks.NeedsReplenish() {
		pts, err := e.detector.Detect(gray, MaxCandidates)
		if err != nil {
			gray.Close()
			return gocv.Mat{}, fmt.Errorf("corner detection: %w", err)
		}
		if len(pts) > 0 {
			e.landmarks.Append(pts...)
			if e.Verbose {
				log.Printf("detected %d candidates, tracking %d landmarks", len(pts), e.landmarks.Len())
			}
		}
	}

	reset := false
	if e.hasPrev && e.landmarks.Len() > 0 {
		res, err := e.tracker.Track(e.prevGray, gray, e.landmarks.Points())
		if err != nil {
			gray.Close()
			return gocv.Mat{}, fmt.Errorf("optical flow: %w", err)
		}

		if ShouldReset(res.Attempted, res.Matched()) {
			// Tracking breakdown: discard all accumulated motion. The gray
			// raster is not retained either; it becomes the previous frame
			// only on the next call, so tracking restarts from scratch.
			log.Printf("tracking lost %d of %d landmarks, resetting",
				res.Attempted-res.Matched(), res.Attempted)
			e.state = e.state.Reset()
			e.landmarks.Clear()
			e.dropPrev()
			gray.Close()
			reset = true
		} else {
			// A failed estimate (degenerate geometry, too few inliers) is
			// soft: the cumulative transform carries forward unchanged.
			if increment, _, err := EstimateSimilarity(res.Old, res.New); err == nil {
				e.state = e.state.Accumulate(increment)
			}
			e.landmarks.Replace(res.New)
		}
	}

	if !reset {
		e.dropPrev()
		e.prevGray = gray
		e.hasPrev = true
		e.state = e.state.BeginTracking()
	}

	return e.compositor.Compose(frame, e.state.Cumulative)
}

// Annotated returns a copy of a stabilized frame with the current landmarks
// drawn on it, for the diagnostic output stream.
func (e *Engine) Annotated(stabilized gocv.Mat) gocv.Mat {
	return DrawLandmarks(stabilized, e.landmarks.Points())
}

func (e *Engine) dropPrev() {
	if e.hasPrev {
		e.prevGray.Close()
		e.hasPrev = false
	}
}

// Close releases the retained rasters. The engine must not be used after.
func (e *Engine) Close() {
	e.dropPrev()
	e.compositor.Close()
}

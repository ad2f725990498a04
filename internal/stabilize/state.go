package stabilize

import (
	"video-stabilizer/pkg/geometry"
)

// ResetRetention is the fraction of landmarks that must survive a tracking
// step. Below it the accumulated motion is no longer trustworthy and the
// tracker resets wholesale.
const ResetRetention = 0.8

// Phase identifies where the tracker is in its two-state lifecycle.
type Phase int

const (
	// PhaseInitial means no previous raster is held: stream start or the
	// frame right after a reset. Tracking is skipped in this phase.
	PhaseInitial Phase = iota

	// PhaseTracking means a previous raster exists and correspondences are
	// tracked normally.
	PhaseTracking
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseTracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// MotionState is the accumulated camera motion since the stabilization
// reference frame, together with the tracker phase. It is a value type;
// every transition returns a new state so the reset path is a single pure
// function rather than a side effect scattered across flags.
type MotionState struct {
	// Cumulative maps current raw-frame pixel coordinates back to the
	// reference (frame 0) coordinate system. The implied 3x3 homogeneous
	// matrix keeps its bottom row fixed at [0 0 1].
	Cumulative geometry.AffineTransform

	Phase Phase
}

// NewMotionState returns the initial state: identity motion, no history.
func NewMotionState() MotionState {
	return MotionState{Cumulative: geometry.Identity(), Phase: PhaseInitial}
}

// Accumulate right-multiplies a per-frame increment onto the cumulative
// transform. The increment is a motion expressed in the previous accumulated
// frame's coordinates, so the ordering is cumulative * increment. There is
// no renormalization; estimation bias compounds over long sequences.
func (s MotionState) Accumulate(increment geometry.AffineTransform) MotionState {
	s.Cumulative = s.Cumulative.Compose(increment)
	return s
}

// BeginTracking marks that a previous raster now exists.
func (s MotionState) BeginTracking() MotionState {
	s.Phase = PhaseTracking
	return s
}

// Reset discards all accumulated motion and returns the initial state.
// This is the only fault-recovery path; there is no partial recovery.
func (s MotionState) Reset() MotionState {
	return NewMotionState()
}

// ShouldReset reports whether a tracking step lost enough landmarks to count
// as a breakdown (scene cut, occlusion, extreme motion): fewer than
// ResetRetention of the attempted landmarks survived.
func ShouldReset(attempted, matched int) bool {
	if attempted == 0 {
		return false
	}
	return float64(matched) < ResetRetention*float64(attempted)
}

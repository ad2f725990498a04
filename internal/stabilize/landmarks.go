package stabilize

import (
	"video-stabilizer/pkg/geometry"
)

// Tracking parameters. These match the tuning the stabilizer was validated
// with; they are exported so drivers can report them.
const (
	// ReplenishFloor is the landmark count below which corner detection is
	// re-triggered. At or above it detection is skipped so fresh candidates
	// do not cluster onto already-tracked corners.
	ReplenishFloor = 200

	// MaxCandidates caps how many corners a single detection call may add.
	MaxCandidates = 300

	// QualityLevel is the corner quality threshold, relative to the
	// strongest corner found in the frame.
	QualityLevel = 0.01

	// MinDistance is the minimum pairwise corner separation in pixels.
	MinDistance = 10
)

// LandmarkSet is the insertion-ordered collection of currently tracked
// points. It is backed by a fixed-capacity buffer (replenish floor plus one
// full detection batch) so a long video never reallocates it.
type LandmarkSet struct {
	pts []geometry.Point2D
}

// NewLandmarkSet creates an empty landmark set at full capacity.
func NewLandmarkSet() *LandmarkSet {
	return &LandmarkSet{pts: make([]geometry.Point2D, 0, ReplenishFloor+MaxCandidates)}
}

// Len returns the number of tracked landmarks.
func (s *LandmarkSet) Len() int {
	return len(s.pts)
}

// Points returns the tracked positions. The slice aliases internal storage
// and is valid until the next Append, Replace, or Clear.
func (s *LandmarkSet) Points() []geometry.Point2D {
	return s.pts
}

// NeedsReplenish reports whether the set has dropped below the detection
// floor and new candidates should be proposed.
func (s *LandmarkSet) NeedsReplenish() bool {
	return len(s.pts) < ReplenishFloor
}

// Append adds candidates to the set, dropping any overflow past capacity.
// It returns how many were actually added.
func (s *LandmarkSet) Append(pts ...geometry.Point2D) int {
	room := cap(s.pts) - len(s.pts)
	if room <= 0 {
		return 0
	}
	if len(pts) > room {
		pts = pts[:room]
	}
	s.pts = append(s.pts, pts...)
	return len(pts)
}

// Replace swaps the entire set for the surviving post-tracking positions.
func (s *LandmarkSet) Replace(pts []geometry.Point2D) {
	s.pts = s.pts[:0]
	s.Append(pts...)
}

// Clear drops every landmark.
func (s *LandmarkSet) Clear() {
	s.pts = s.pts[:0]
}

package stabilize

import (
	"testing"

	"video-stabilizer/pkg/geometry"
)

func makePoints(n int) []geometry.Point2D {
	pts := make([]geometry.Point2D, n)
	for i := range pts {
		pts[i] = geometry.Point2D{X: float64(i), Y: float64(i * 2)}
	}
	return pts
}

func TestNeedsReplenishThreshold(t *testing.T) {
	tests := []struct {
		count int
		want  bool
	}{
		{0, true},
		{ReplenishFloor - 1, true},
		{ReplenishFloor, false},
		{ReplenishFloor + 50, false},
	}
	for _, tt := range tests {
		s := NewLandmarkSet()
		s.Append(makePoints(tt.count)...)
		if got := s.NeedsReplenish(); got != tt.want {
			t.Errorf("NeedsReplenish with %d landmarks = %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestAppendCapsAtCapacity(t *testing.T) {
	s := NewLandmarkSet()
	capacity := ReplenishFloor + MaxCandidates

	added := s.Append(makePoints(capacity + 100)...)
	if added != capacity {
		t.Errorf("Append added %d, want %d", added, capacity)
	}
	if s.Len() != capacity {
		t.Errorf("Len = %d, want %d", s.Len(), capacity)
	}
	if s.Append(geometry.Point2D{X: 1}) != 0 {
		t.Error("Append past capacity should add nothing")
	}
}

func TestReplaceAndClear(t *testing.T) {
	s := NewLandmarkSet()
	s.Append(makePoints(300)...)

	survivors := makePoints(250)
	s.Replace(survivors)
	if s.Len() != 250 {
		t.Fatalf("Len after Replace = %d, want 250", s.Len())
	}
	if s.Points()[10] != survivors[10] {
		t.Errorf("Points()[10] = %v, want %v", s.Points()[10], survivors[10])
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", s.Len())
	}
	if !s.NeedsReplenish() {
		t.Error("cleared set should need replenishment")
	}
}

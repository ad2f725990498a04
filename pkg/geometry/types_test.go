package geometry

import (
	"math"
	"testing"
)

const tol = 1e-9

func transformsAlmostEqual(a, b AffineTransform, eps float64) bool {
	return math.Abs(a.A-b.A) < eps && math.Abs(a.B-b.B) < eps &&
		math.Abs(a.C-b.C) < eps && math.Abs(a.D-b.D) < eps &&
		math.Abs(a.TX-b.TX) < eps && math.Abs(a.TY-b.TY) < eps
}

func TestIdentityApply(t *testing.T) {
	p := NewPoint2D(12.5, -3.75)
	got := Identity().Apply(p)
	if got != p {
		t.Errorf("Identity().Apply(%v) = %v", p, got)
	}
}

func TestComposeTranslationOrder(t *testing.T) {
	// Rotation by 90 degrees then translation applied on the left:
	// (T * R).Apply(p) must equal T.Apply(R.Apply(p)).
	r := Rotation(math.Pi / 2)
	tr := Translation(10, 0)
	p := NewPoint2D(1, 0)

	composed := tr.Compose(r).Apply(p)
	stepwise := tr.Apply(r.Apply(p))
	if composed.Distance(stepwise) > tol {
		t.Errorf("compose mismatch: %v vs %v", composed, stepwise)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tf   AffineTransform
	}{
		{"identity", Identity()},
		{"translation", Translation(5, -7)},
		{"rotation", Rotation(0.3)},
		{"similarity", Similarity(1.2, -0.4, 3, 9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.tf.Inverse()
			if !ok {
				t.Fatal("transform reported singular")
			}
			round := tt.tf.Compose(inv)
			if !transformsAlmostEqual(round, Identity(), 1e-9) {
				t.Errorf("t * t^-1 = %+v, want identity", round)
			}
		})
	}
}

func TestInverseSingular(t *testing.T) {
	if _, ok := (AffineTransform{}).Inverse(); ok {
		t.Error("zero transform should be singular")
	}
}

func TestSimilarityDecomposition(t *testing.T) {
	tf := Similarity(1.5, 0.25, 2, 3)
	if math.Abs(tf.ScaleFactor()-1.5) > tol {
		t.Errorf("ScaleFactor = %v, want 1.5", tf.ScaleFactor())
	}
	if math.Abs(tf.Angle()-0.25) > tol {
		t.Errorf("Angle = %v, want 0.25", tf.Angle())
	}
}

func TestMatrixRoundTrip(t *testing.T) {
	tf := Similarity(0.9, 1.1, -4, 6)
	if got := FromMatrix(tf.ToMatrix()); got != tf {
		t.Errorf("FromMatrix(ToMatrix()) = %+v, want %+v", got, tf)
	}
}

func TestCentroid(t *testing.T) {
	pts := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	got := Centroid(pts)
	want := Point2D{5, 5}
	if got.Distance(want) > tol {
		t.Errorf("Centroid = %v, want %v", got, want)
	}
	if got := Centroid(nil); got != (Point2D{}) {
		t.Errorf("Centroid(nil) = %v, want zero", got)
	}
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{1, 2}, {-3, 8}, {5, -1}}
	got := BoundingBox(pts)
	want := Rect{X: -3, Y: -1, Width: 8, Height: 9}
	if got != want {
		t.Errorf("BoundingBox = %+v, want %+v", got, want)
	}
}

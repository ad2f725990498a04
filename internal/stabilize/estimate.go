package stabilize

import (
	"fmt"
	"math"
	"math/rand"

	"video-stabilizer/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

const (
	// MinEstimatePairs is the practical minimum below which no motion model
	// is fit for the frame.
	MinEstimatePairs = 3

	ransacIterations = 2000
	inlierThreshold  = 3.0 // px
)

// EstimateSimilarity fits a 4-DOF transform (uniform scale, rotation,
// translation) mapping src onto dst using RANSAC, so correspondences on
// independently moving foreground objects are discounted as outliers.
// Returns the transform and the inlier count. Uses a pure Go implementation
// for cross-version compatibility with gocv.
func EstimateSimilarity(src, dst []geometry.Point2D) (geometry.AffineTransform, int, error) {
	if len(src) != len(dst) {
		return geometry.AffineTransform{}, 0, fmt.Errorf("point count mismatch: %d vs %d", len(src), len(dst))
	}
	if len(src) < MinEstimatePairs {
		return geometry.AffineTransform{}, 0, fmt.Errorf("need at least %d points, got %d", MinEstimatePairs, len(src))
	}

	n := len(src)
	bestInliers := []int{}
	var bestTransform geometry.AffineTransform

	for iter := 0; iter < ransacIterations; iter++ {
		// Randomly sample 2 points (minimum for a similarity)
		indices := rand.Perm(n)[:2]
		i0, i1 := indices[0], indices[1]

		transform, err := similarityFrom2(src[i0], src[i1], dst[i0], dst[i1])
		if err != nil {
			continue
		}

		// Count inliers
		var inliers []int
		for i := range src {
			dist := transform.Apply(src[i]).Distance(dst[i])
			if dist < inlierThreshold {
				inliers = append(inliers, i)
			}
		}

		if len(inliers) > len(bestInliers) {
			bestInliers = inliers
			bestTransform = transform
		}
	}

	if len(bestInliers) < MinEstimatePairs {
		return geometry.AffineTransform{}, 0, fmt.Errorf("not enough inliers: %d", len(bestInliers))
	}

	// Recompute transform using all inliers
	inlierSrc := make([]geometry.Point2D, len(bestInliers))
	inlierDst := make([]geometry.Point2D, len(bestInliers))
	for i, idx := range bestInliers {
		inlierSrc[i] = src[idx]
		inlierDst[i] = dst[idx]
	}

	finalTransform, err := similarityLeastSquares(inlierSrc, inlierDst)
	if err != nil {
		return bestTransform, len(bestInliers), nil
	}

	return finalTransform, len(bestInliers), nil
}

// similarityFrom2 computes a similarity transform from exactly 2 point pairs.
func similarityFrom2(s0, s1, d0, d1 geometry.Point2D) (geometry.AffineTransform, error) {
	sx, sy := s1.X-s0.X, s1.Y-s0.Y
	dx, dy := d1.X-d0.X, d1.Y-d0.Y

	srcLen := math.Hypot(sx, sy)
	dstLen := math.Hypot(dx, dy)
	if srcLen < 0.001 || dstLen < 0.001 {
		return geometry.AffineTransform{}, fmt.Errorf("degenerate points")
	}

	scale := dstLen / srcLen
	theta := math.Atan2(dy, dx) - math.Atan2(sy, sx)

	a := scale * math.Cos(theta)
	b := scale * math.Sin(theta)

	// Translation: d0 = S * s0 + t  =>  t = d0 - S * s0
	tx := d0.X - (a*s0.X - b*s0.Y)
	ty := d0.Y - (b*s0.X + a*s0.Y)

	return geometry.AffineTransform{
		A: a, B: -b, TX: tx,
		C: b, D: a, TY: ty,
	}, nil
}

// similarityLeastSquares solves for (a, b, tx, ty) in
//
//	x' = a*x - b*y + tx
//	y' = b*x + a*y + ty
//
// over all pairs, using QR decomposition.
func similarityLeastSquares(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	n := len(src)
	if n < 2 {
		return geometry.AffineTransform{}, fmt.Errorf("need at least 2 points")
	}

	// Build overdetermined system
	A := mat.NewDense(n*2, 4, nil)
	B := mat.NewVecDense(n*2, nil)

	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, -y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, dst[i].X)

		A.Set(i*2+1, 0, y)
		A.Set(i*2+1, 1, x)
		A.Set(i*2+1, 3, 1)
		B.SetVec(i*2+1, dst[i].Y)
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return geometry.AffineTransform{}, err
	}

	a, b := params.AtVec(0), params.AtVec(1)
	return geometry.AffineTransform{
		A: a, B: -b, TX: params.AtVec(2),
		C: b, D: a, TY: params.AtVec(3),
	}, nil
}

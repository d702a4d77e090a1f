package geomsolve

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Point2 and Point3 are plain 2D/3D coordinate pairs, independent of the
// top-level package's r2.Point so this package has no dependency on
// arcore's public API.
type Point2 struct{ X, Y float64 }
type Point3 struct{ X, Y, Z float64 }

// buildA builds the 2Nx9 design matrix A for the planar homography DLT:
// each point correspondence (x,y) <- (X,Y) contributes the two rows
// [-X -Y -1 0 0 0 xX xY x] and [0 0 0 -X -Y -1 yX yY y], so that A*h=0 for
// the homography h (flattened row-major, h[8]=1 after rescale). Grounded
// directly on the pack's Zhang's-method buildA (calibrate/zhangs.go),
// reused here for both planar-marker PnP (§4.6) and chessboard sample
// homographies (§4.7).
func buildA(img, world []Point2) (*mat.Dense, error) {
	if len(img) < 4 || len(world) < 4 || len(img) != len(world) {
		return nil, errors.New("geomsolve: need at least 4 matched point pairs")
	}
	data := make([]float64, 0, len(img)*2*9)
	for i := range img {
		x, y := img[i].X, img[i].Y
		X, Y := world[i].X, world[i].Y
		data = append(data, -X, -Y, -1, 0, 0, 0, x*X, x*Y, x)
		data = append(data, 0, 0, 0, -X, -Y, -1, y*X, y*Y, y)
	}
	return mat.NewDense(2*len(img), 9, data), nil
}

// SolveHomography recovers the 3x3 homography H such that world points
// (X,Y,1), when mapped by H, land at the observed image points (x,y,1), up
// to scale. Solved as the right null-space vector of A (the singular
// vector associated with the smallest singular value), the same SVD-based
// technique as the pack's BuildH/ShapeH.
func SolveHomography(img, world []Point2) (Mat3, error) {
	a, err := buildA(img, world)
	if err != nil {
		return Mat3{}, err
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return Mat3{}, errors.New("geomsolve: homography SVD factorization failed")
	}
	var v mat.Dense
	svd.VTo(&v)

	// The full V is 9x9 even when A has only the 8 rows of a 4-point
	// correspondence, and singular values come back in descending order, so
	// V's last column is the null-space vector h.
	h := make([]float64, 9)
	for i := 0; i < 9; i++ {
		h[i] = v.At(i, 8)
	}
	if h[8] != 0 {
		for i := range h {
			h[i] /= h[8]
		}
	}
	return Mat3{
		{h[0], h[1], h[2]},
		{h[3], h[4], h[5]},
		{h[6], h[7], h[8]},
	}, nil
}

// Apply maps a homogeneous-normalized world point (X,Y) through H.
func (m Mat3) Apply(x, y float64) (float64, float64) {
	w := m[2][0]*x + m[2][1]*y + m[2][2]
	if w == 0 {
		w = 1
	}
	return (m[0][0]*x + m[0][1]*y + m[0][2]) / w, (m[1][0]*x + m[1][1]*y + m[1][2]) / w
}

// Inverse returns the inverse of a 3x3 matrix via gonum's general solver.
func (m Mat3) Inverse() (Mat3, error) {
	dense := mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
	var inv mat.Dense
	if err := inv.Inverse(dense); err != nil {
		return Mat3{}, err
	}
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = inv.At(i, j)
		}
	}
	return out, nil
}

// MulMat3 multiplies two 3x3 matrices.
func MulMat3(a, b Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s := 0.0
			for k := 0; k < 3; k++ {
				s += a[i][k] * b[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

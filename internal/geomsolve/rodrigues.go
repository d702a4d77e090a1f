// Package geomsolve implements the linear-algebra primitives spec.md
// treats as external vision-library operations: PnP pose solving,
// Rodrigues rotation-vector conversion, and full camera calibration. Built
// on gonum.org/v1/gonum/mat for matrix decomposition and
// github.com/maorshutman/lm for Levenberg-Marquardt refinement, the same
// pairing the pack's Zhang's-method camera-calibration code uses (see
// /DESIGN.md).
package geomsolve

import "math"

// Vec3 is a 3-element vector.
type Vec3 [3]float64

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

// Transpose returns m^T.
func (m Mat3) Transpose() Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// RodriguesToMatrix converts an axis-angle rotation vector r (whose
// direction is the rotation axis and whose norm is the rotation angle in
// radians) to a 3x3 rotation matrix via Rodrigues' formula:
// R = I + sin(theta) K + (1-cos(theta)) K^2, where K is the skew-symmetric
// cross-product matrix of the unit axis (spec.md §4.6).
func RodriguesToMatrix(r Vec3) Mat3 {
	theta := math.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2])
	if theta < 1e-12 {
		return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}
	kx, ky, kz := r[0]/theta, r[1]/theta, r[2]/theta

	k := Mat3{
		{0, -kz, ky},
		{kz, 0, -kx},
		{-ky, kx, 0},
	}
	k2 := mul3(k, k)

	sinT, cosT := math.Sin(theta), math.Cos(theta)
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			id := 0.0
			if i == j {
				id = 1
			}
			out[i][j] = id + sinT*k[i][j] + (1-cosT)*k2[i][j]
		}
	}
	return out
}

// MatrixToRodrigues is the inverse of RodriguesToMatrix: it recovers the
// axis-angle vector from a rotation matrix.
func MatrixToRodrigues(m Mat3) Vec3 {
	trace := m[0][0] + m[1][1] + m[2][2]
	cosT := (trace - 1) / 2
	cosT = math.Max(-1, math.Min(1, cosT))
	theta := math.Acos(cosT)

	if theta < 1e-12 {
		return Vec3{0, 0, 0}
	}
	if math.Pi-theta < 1e-6 {
		// Near-180-degree rotations need the symmetric-part formulation to
		// avoid dividing by ~0; not required by this pipeline's fronto-
		// parallel marker geometry, so fall back to the generic case which
		// degrades gracefully rather than panicking.
	}

	scale := 1 / (2 * math.Sin(theta))
	return Vec3{
		scale * (m[2][1] - m[1][2]) * theta,
		scale * (m[0][2] - m[2][0]) * theta,
		scale * (m[1][0] - m[0][1]) * theta,
	}
}

func mul3(a, b Mat3) Mat3 {
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

// MulVec multiplies m by the column vector v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	var out Vec3
	for i := 0; i < 3; i++ {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return out
}

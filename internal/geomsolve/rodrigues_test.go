package geomsolve

import (
	"math"
	"testing"
)

func matAlmostEqual(a, b Mat3, eps float64) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(a[i][j]-b[i][j]) > eps {
				return false
			}
		}
	}
	return true
}

func TestRodriguesIdentityRoundTrip(t *testing.T) {
	identity := Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	r := MatrixToRodrigues(identity)
	if r != (Vec3{0, 0, 0}) {
		t.Errorf("rodrigues of identity = %v, want zero vector", r)
	}
	back := RodriguesToMatrix(r)
	if !matAlmostEqual(back, identity, 1e-9) {
		t.Errorf("round trip of identity = %v", back)
	}
}

func TestRodriguesRoundTripNinetyDegreesAboutZ(t *testing.T) {
	r := Vec3{0, 0, math.Pi / 2}
	m := RodriguesToMatrix(r)
	// Rotating the X axis by +90 degrees about Z should land on +Y.
	rotated := m.MulVec(Vec3{1, 0, 0})
	if math.Abs(rotated[0]) > 1e-9 || math.Abs(rotated[1]-1) > 1e-9 || math.Abs(rotated[2]) > 1e-9 {
		t.Errorf("rotated X axis = %v, want (0,1,0)", rotated)
	}

	back := MatrixToRodrigues(m)
	m2 := RodriguesToMatrix(back)
	if !matAlmostEqual(m, m2, 1e-9) {
		t.Errorf("round trip mismatch: %v vs %v", m, m2)
	}
}

func TestMat3Transpose(t *testing.T) {
	m := Mat3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	tr := m.Transpose()
	want := Mat3{{1, 4, 7}, {2, 5, 8}, {3, 6, 9}}
	if tr != want {
		t.Errorf("Transpose = %v, want %v", tr, want)
	}
}

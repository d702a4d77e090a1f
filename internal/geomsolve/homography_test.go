package geomsolve

import (
	"math"
	"testing"
)

func TestSolveHomographyIdentityMapping(t *testing.T) {
	world := []Point2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	h, err := SolveHomography(world, world)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range world {
		x, y := h.Apply(p.X, p.Y)
		if math.Abs(x-p.X) > 1e-6 || math.Abs(y-p.Y) > 1e-6 {
			t.Errorf("Apply(%v) = (%v,%v), want (%v,%v)", p, x, y, p.X, p.Y)
		}
	}
}

func TestSolveHomographyScaleAndTranslate(t *testing.T) {
	world := []Point2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	img := []Point2{{10, 20}, {110, 20}, {110, 120}, {10, 120}}
	h, err := SolveHomography(img, world)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range world {
		x, y := h.Apply(p.X, p.Y)
		if math.Abs(x-img[i].X) > 1e-6 || math.Abs(y-img[i].Y) > 1e-6 {
			t.Errorf("Apply(%v) = (%v,%v), want %v", p, x, y, img[i])
		}
	}
}

func TestSolveHomographyRejectsTooFewPoints(t *testing.T) {
	pts := []Point2{{0, 0}, {1, 0}, {1, 1}}
	if _, err := SolveHomography(pts, pts); err == nil {
		t.Error("expected an error for fewer than 4 point correspondences")
	}
}

func TestMat3InverseRoundTrip(t *testing.T) {
	m := Mat3{{2, 0, 0}, {0, 4, 0}, {0, 0, 1}}
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	product := MulMat3(m, inv)
	identity := Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	if !matAlmostEqual(product, identity, 1e-9) {
		t.Errorf("m * m^-1 = %v, want identity", product)
	}
}

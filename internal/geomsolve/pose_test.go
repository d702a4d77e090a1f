package geomsolve

import (
	"math"
	"testing"
)

// TestSolvePnPFrontoParallelSanity places a unit square flat on the camera's
// optical axis, 5 units away with no rotation, and checks that SolvePnP
// recovers a translation along +Z of about 5 and an identity rotation — the
// simplest possible pose estimate, with zero distortion and a square pixel
// grid (fx=fy=640).
func TestSolvePnPFrontoParallelSanity(t *testing.T) {
	k := Intrinsics{K: Mat3{{640, 0, 320}, {0, 640, 320}, {0, 0, 1}}}

	model := [4]Point3{
		{X: -0.5, Y: -0.5, Z: 0},
		{X: -0.5, Y: 0.5, Z: 0},
		{X: 0.5, Y: 0.5, Z: 0},
		{X: 0.5, Y: -0.5, Z: 0},
	}

	const depth = 5.0
	image := [4]Point2{}
	for i, mp := range model {
		x, y := mp.X/(mp.Z+depth), mp.Y/(mp.Z+depth)
		image[i] = Point2{X: 640*x + 320, Y: 640*y + 320}
	}

	result := SolvePnP(image, model, k)
	if !result.Converged {
		t.Fatalf("SolvePnP did not converge")
	}

	identity := Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	if !matAlmostEqual(result.R, identity, 0.05) {
		t.Errorf("R = %v, want close to identity", result.R)
	}

	if math.Abs(result.T[0]) > 0.05 || math.Abs(result.T[1]) > 0.05 || math.Abs(result.T[2]-depth) > 0.05 {
		t.Errorf("T = %v, want close to (0,0,%v)", result.T, depth)
	}

	if result.ReprojErrMSE > 1e-4 {
		t.Errorf("ReprojErrMSE = %v, want near zero for a noiseless correspondence", result.ReprojErrMSE)
	}
}

package arcore

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
)

// TestEstimatePoseFrontoParallelSanity mirrors spec.md §8 scenario 6: a
// marker held fronto-parallel to the camera, 5 units away, with fx=fy=W.
// The solved pose is stored as R^T/-t (pose.go's documented convention),
// so an identity rotation and a camera directly in front of the marker
// along +Z should come back as an (approximately) identity rotation and a
// translation of approximately (0,0,-5).
func TestEstimatePoseFrontoParallelSanity(t *testing.T) {
	const w = 640
	k := Intrinsics{K: [3][3]float64{{w, 0, w / 2}, {0, w, w / 2}, {0, 0, 1}}}

	const depth = 5.0
	var corners Quadrilateral
	for i, mp := range referenceModel {
		x, y := mp.X/depth, mp.Y/depth
		corners[i] = r2.Point{X: w*x + w/2, Y: w*y + w/2}
	}

	rotation, translation, reprojErr, valid := estimatePose(corners, k)
	if !valid {
		t.Fatalf("estimatePose did not converge")
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			if math.Abs(float64(rotation[i][j]-want)) > 0.05 {
				t.Errorf("rotation[%d][%d] = %v, want close to %v", i, j, rotation[i][j], want)
			}
		}
	}

	if math.Abs(float64(translation[0])) > 0.05 || math.Abs(float64(translation[1])) > 0.05 ||
		math.Abs(float64(translation[2])-(-depth)) > 0.05 {
		t.Errorf("translation = %v, want close to (0,0,%v)", translation, -depth)
	}

	if reprojErr > 1e-3 {
		t.Errorf("reprojErr = %v, want near zero for a noiseless fronto-parallel marker", reprojErr)
	}
}

func TestEstimatePoseDegenerateCornersDoesNotConverge(t *testing.T) {
	k := Intrinsics{K: [3][3]float64{{640, 0, 320}, {0, 640, 240}, {0, 0, 1}}}
	// All four corners collapsed to a single point: no homography can be
	// recovered from a degenerate point set.
	corners := Quadrilateral{
		{X: 100, Y: 100}, {X: 100, Y: 100}, {X: 100, Y: 100}, {X: 100, Y: 100},
	}
	_, _, _, valid := estimatePose(corners, k)
	if valid {
		t.Errorf("expected estimatePose to fail to converge on degenerate corners")
	}
}

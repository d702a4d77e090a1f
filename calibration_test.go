package arcore

import (
	"image"
	"math"
	"testing"

	"github.com/golang/geo/r2"
)

func TestIsContourSquareAcceptsAxisAlignedSquare(t *testing.T) {
	q := Quadrilateral{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}}
	if !isContourSquare(q) {
		t.Error("expected an axis-aligned square to pass the corner-angle test")
	}
}

func TestIsContourSquareRejectsSliver(t *testing.T) {
	// A thin squashed diamond: two corners near 0 degrees, two near 180.
	q := Quadrilateral{{X: 0, Y: 0}, {X: 50, Y: 1}, {X: 100, Y: 0}, {X: 50, Y: -1}}
	if isContourSquare(q) {
		t.Error("expected a thin sliver quad to fail the corner-angle test")
	}
}

func TestCornerAngleDegRightAngle(t *testing.T) {
	// A 3-4-5 right triangle: the angle opposite the hypotenuse is 90deg.
	angle := cornerAngleDeg(3, 4, 5)
	if angle < 89 || angle > 91 {
		t.Errorf("cornerAngleDeg(3,4,5) = %v, want ~90", angle)
	}
}

func TestMergeNearbyCornersAveragesCluster(t *testing.T) {
	pts := []r2.Point{{X: 10, Y: 10}, {X: 10.5, Y: 10.5}, {X: 100, Y: 100}}
	merged := mergeNearbyCorners(pts, 4.0)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged points, got %d: %v", len(merged), merged)
	}
	var found bool
	for _, p := range merged {
		if p.X > 9 && p.X < 11 && p.Y > 9 && p.Y < 11 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the clustered pair to average to roughly (10.25,10.25), got %v", merged)
	}
}

func TestSortIntoGridOrdersRowMajor(t *testing.T) {
	// A 2x2 grid given in scrambled order.
	pts := []r2.Point{
		{X: 10, Y: 10}, {X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10},
	}
	ordered, ok := sortIntoGrid(pts, 2, 2)
	if !ok {
		t.Fatal("sortIntoGrid returned ok=false for a well-formed 2x2 grid")
	}
	want := []r2.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}}
	for i, p := range want {
		if ordered[i] != p {
			t.Errorf("ordered[%d] = %v, want %v", i, ordered[i], p)
		}
	}
}

func TestSortIntoGridRejectsWrongCount(t *testing.T) {
	pts := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}
	if _, ok := sortIntoGrid(pts, 2, 2); ok {
		t.Error("expected sortIntoGrid to reject a point count that doesn't match cols*rows")
	}
}

func TestComputeIntrinsicsRejectsWrongSampleCount(t *testing.T) {
	c := NewCalibrator()
	_, _, err := c.ComputeIntrinsics(CalibrationSession{Samples: nil}, image.Point{X: 640, Y: 480})
	if err == nil {
		t.Error("expected an error for an empty calibration session")
	}
	if _, ok := err.(*PreconditionError); !ok {
		t.Errorf("expected a *PreconditionError, got %T", err)
	}
}

// chessboardView projects the fixed chessboard object-point grid into pixel
// coordinates under a known intrinsic matrix, a rotation about the Y axis,
// and a translation — a noiseless pinhole view with no lens distortion.
func chessboardView(fx, cx, cy float64, angle float64, tx, ty, tz float64) [pointsPerCalibrationSample]r2.Point {
	cos, sin := math.Cos(angle), math.Sin(angle)
	var out [pointsPerCalibrationSample]r2.Point
	for i, op := range chessboardObjectPoints() {
		camX := cos*op.X + tx
		camY := op.Y + ty
		camZ := -sin*op.X + tz
		out[i] = r2.Point{X: fx*camX/camZ + cx, Y: fx*camY/camZ + cy}
	}
	return out
}

func TestComputeIntrinsicsRecoversReprojectionError(t *testing.T) {
	const fx, cx, cy = 800.0, 320.0, 240.0
	views := []struct {
		angle      float64
		tx, ty, tz float64
	}{
		{0, -2.5, -4, 10},
		{0.35, -2.0, -4, 10},
		{-0.35, -3.0, -4, 10},
		{0.2, -2.5, -3.5, 11},
		{-0.2, -2.5, -4.5, 11},
		{0.3, -2.2, -4, 12},
		{-0.3, -2.8, -4, 12},
		{0.15, -2.5, -4.2, 10.5},
		{-0.15, -2.5, -3.8, 10.5},
		{0.25, -2.6, -4.1, 11.5},
	}

	session := CalibrationSession{}
	for _, v := range views {
		session.Samples = append(session.Samples, chessboardView(fx, cx, cy, v.angle, v.tx, v.ty, v.tz))
	}

	c := NewCalibrator()
	k, reprojErr, err := c.ComputeIntrinsics(session, image.Point{X: 640, Y: 480})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reprojErr > 1.0 {
		t.Errorf("reprojErr = %v, want small for a noiseless synthetic calibration", reprojErr)
	}
	if k.K[0][0] <= 0 || k.K[1][1] <= 0 {
		t.Errorf("K = %v, want positive focal lengths", k.K)
	}
}

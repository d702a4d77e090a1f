package arcore

import (
	"arcore/internal/geomsolve"
)

// referenceModel is the unit-square planar model of a marker's corners in
// its own frame, CCW, centered at the origin (spec.md §4.6).
var referenceModel = [4]geomsolve.Point3{
	{X: -0.5, Y: -0.5, Z: 0},
	{X: -0.5, Y: 0.5, Z: 0},
	{X: 0.5, Y: 0.5, Z: 0},
	{X: 0.5, Y: -0.5, Z: 0},
}

// estimatePose solves the 3D pose of a marker from its four refined image
// corners and the camera intrinsics, and stores it using the source's
// R^T/-t convention: the camera's pose expressed in the marker's local
// frame (spec.md §4.6, §9 Open Question — preserved exactly, not
// re-derived).
func estimatePose(corners Quadrilateral, k Intrinsics) (rotation [3][3]float32, translation [3]float32, reprojErr float32, valid bool) {
	gk := geomsolve.Intrinsics{Dist: k.Dist}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			gk.K[i][j] = k.K[i][j]
		}
	}

	var imagePts [4]geomsolve.Point2
	for i, c := range corners {
		imagePts[i] = geomsolve.Point2{X: c.X, Y: c.Y}
	}

	result := geomsolve.SolvePnP(imagePts, referenceModel, gk)
	if !result.Converged {
		return rotation, translation, 0, false
	}

	rt := result.R.Transpose()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rotation[i][j] = float32(rt[i][j])
		}
	}
	translation = [3]float32{
		float32(-result.T[0]),
		float32(-result.T[1]),
		float32(-result.T[2]),
	}
	return rotation, translation, float32(result.ReprojErrMSE), true
}

package geomsolve

import (
	"math"

	"github.com/maorshutman/lm"
)

// Intrinsics mirrors the top-level Intrinsics type without importing it,
// keeping this package dependency-free of arcore's public API.
type Intrinsics struct {
	K    Mat3
	Dist [8]float64
}

// undistortNormalized maps a pixel (u,v) to normalized camera coordinates
// (x,y) such that projecting (x,y,1) with K and Dist reproduces (u,v), by
// the same fixed-point iteration OpenCV's undistortPoints uses: five
// iterations is enough for the moderate distortion this pipeline expects.
func undistortNormalized(u, v float64, k Intrinsics) (float64, float64) {
	fx, fy := k.K[0][0], k.K[1][1]
	cx, cy := k.K[0][2], k.K[1][2]
	x0 := (u - cx) / fx
	y0 := (v - cy) / fy
	x, y := x0, y0

	d := k.Dist
	for i := 0; i < 5; i++ {
		r2 := x*x + y*y
		icdist := (1 + d[5]*r2 + d[6]*r2*r2 + d[7]*r2*r2*r2) / (1 + d[0]*r2 + d[1]*r2*r2 + d[4]*r2*r2*r2)
		deltaX := 2*d[2]*x*y + d[3]*(r2+2*x*x)
		deltaY := d[2]*(r2+2*y*y) + 2*d[3]*x*y
		x = (x0 - deltaX) * icdist
		y = (y0 - deltaY) * icdist
	}
	return x, y
}

// project maps a camera-frame point through the radial-tangential
// distortion model and the intrinsic matrix to a pixel coordinate — the
// standard OpenCV distortion model, applied to the 8-element D vector
// spec.md §3 specifies.
func project(p Vec3, k Intrinsics) (float64, float64) {
	z := p[2]
	if math.Abs(z) < 1e-9 {
		z = 1e-9
	}
	x := p[0] / z
	y := p[1] / z

	d := k.Dist
	r2 := x*x + y*y
	radial := (1 + d[0]*r2 + d[1]*r2*r2 + d[4]*r2*r2*r2) / (1 + d[5]*r2 + d[6]*r2*r2 + d[7]*r2*r2*r2)
	xd := x*radial + 2*d[2]*x*y + d[3]*(r2+2*x*x)
	yd := y*radial + d[2]*(r2+2*y*y) + 2*d[3]*x*y

	fx, fy := k.K[0][0], k.K[1][1]
	cx, cy := k.K[0][2], k.K[1][2]
	return fx*xd + cx, fy*yd + cy
}

// PnPResult is the solved pose of a planar point set plus the LM
// refinement's diagnostic.
type PnPResult struct {
	R            Mat3
	T            Vec3
	ReprojErrMSE float64
	Converged    bool
}

// SolvePnP recovers the rotation and translation placing modelPts (assumed
// planar, Z=0, as spec.md §4.6's reference square is) into the camera frame
// so that they project to imagePts under k. The initial estimate comes from
// a planar-homography DLT (SolveHomography, decomposed per Zhang's method:
// normalize the homography's first two columns to unit scale, obtain R by
// SVD-orthogonalizing [r1 r2 r1xr2]); it is then refined by
// Levenberg-Marquardt minimizing squared reprojection error over the 6 pose
// parameters — the same refinement technique
// (github.com/maorshutman/lm, NumJac-based numeric Jacobian) the pack's
// Zhang's-method calibration code uses to refine a homography, generalized
// here from a 9-parameter homography fit to a 6-DoF rigid pose fit
// (spec.md §4.6).
func SolvePnP(imagePts [4]Point2, modelPts [4]Point3, k Intrinsics) PnPResult {
	normalized := make([]Point2, 4)
	modelXY := make([]Point2, 4)
	for i := range imagePts {
		x, y := undistortNormalized(imagePts[i].X, imagePts[i].Y, k)
		normalized[i] = Point2{X: x, Y: y}
		modelXY[i] = Point2{X: modelPts[i].X, Y: modelPts[i].Y}
	}

	h, err := SolveHomography(normalized, modelXY)
	if err != nil {
		return PnPResult{Converged: false}
	}

	h1 := Vec3{h[0][0], h[1][0], h[2][0]}
	h2 := Vec3{h[0][1], h[1][1], h[2][1]}
	h3 := Vec3{h[0][2], h[1][2], h[2][2]}

	n1 := norm(h1)
	n2 := norm(h2)
	if n1 < 1e-12 || n2 < 1e-12 {
		return PnPResult{Converged: false}
	}
	lambda := 1 / n1

	r1 := scale(h1, 1/n1)
	r2 := scale(h2, 1/n2)
	r3 := cross(r1, r2)
	t0 := scale(h3, lambda)
	// Parallel first two columns (e.g. all image points coincide) leave no
	// recoverable rotation.
	if norm(r3) < 1e-6 {
		return PnPResult{Converged: false}
	}

	rRaw := Mat3{
		{r1[0], r2[0], r3[0]},
		{r1[1], r2[1], r3[1]},
		{r1[2], r2[2], r3[2]},
	}
	r0 := orthogonalize(rRaw)
	rvec0 := MatrixToRodrigues(r0)

	init := []float64{rvec0[0], rvec0[1], rvec0[2], t0[0], t0[1], t0[2]}

	minfunc := func(dst, x []float64) {
		rvec := Vec3{x[0], x[1], x[2]}
		tvec := Vec3{x[3], x[4], x[5]}
		rm := RodriguesToMatrix(rvec)
		for i, mp := range modelPts {
			cam := rm.MulVec(Vec3{mp.X, mp.Y, mp.Z})
			cam[0] += tvec[0]
			cam[1] += tvec[1]
			cam[2] += tvec[2]
			u, v := project(cam, k)
			dst[2*i] = u - imagePts[i].X
			dst[2*i+1] = v - imagePts[i].Y
		}
	}

	residuals := make([]float64, 8)
	jac := lm.NumJac{minfunc}
	problem := lm.LMProblem{
		Dim:        6,
		Size:       8,
		Func:       minfunc,
		Jac:        jac.Jac,
		InitParams: init,
		Tau:        1e-3,
		Eps1:       1e-10,
		Eps2:       1e-10,
	}

	res, err := lm.LM(problem, &lm.Settings{Iterations: 100, ObjectiveTol: 1e-16})
	if err != nil {
		return PnPResult{R: r0, T: t0, Converged: false}
	}

	minfunc(residuals, res.X)
	var sse float64
	for _, d := range residuals {
		sse += d * d
	}
	mse := sse / float64(len(residuals))

	rvecFinal := Vec3{res.X[0], res.X[1], res.X[2]}
	tFinal := Vec3{res.X[3], res.X[4], res.X[5]}
	return PnPResult{
		R:            RodriguesToMatrix(rvecFinal),
		T:            tFinal,
		ReprojErrMSE: mse,
		Converged:    true,
	}
}

func norm(v Vec3) float64 { return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2]) }

func scale(v Vec3, s float64) Vec3 { return Vec3{v[0] * s, v[1] * s, v[2] * s} }

func cross(a, b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// orthogonalize projects m onto the nearest proper rotation matrix via SVD:
// R = U V^T (Zhang's method's standard rotation-estimate cleanup).
func orthogonalize(m Mat3) Mat3 {
	u, _, vt := svd3(m)
	r := MulMat3(u, vt)
	// Guard against a reflection (det(R) = -1) by flipping the last column
	// of U, the standard fix for SVD-based rotation recovery.
	if det3(r) < 0 {
		u[0][2], u[1][2], u[2][2] = -u[0][2], -u[1][2], -u[2][2]
		r = MulMat3(u, vt)
	}
	return r
}

func det3(m Mat3) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

package geomsolve

import (
	"errors"
	"math"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/mat"
)

// CalibrationResult is the output of Calibrate: the recovered intrinsic
// matrix, distortion vector, and mean squared reprojection error in pixels
// (spec.md §4.7, §8 invariant 4).
type CalibrationResult struct {
	K            Mat3
	Dist         [8]float64
	ReprojErrMSE float64
}

// getVij computes the v_ij row used in Zhang's method to relate a
// homography's columns to the symmetric matrix B = K^-T K^-1. Grounded
// directly on the pack's calibrate/zhangs.go getVij.
func getVij(h mat.Vector, i, j int) []float64 {
	hi := func(k int) float64 { return h.AtVec(i + 3*k) }
	hj := func(k int) float64 { return h.AtVec(j + 3*k) }
	return []float64{
		hi(0) * hj(0),
		hi(0)*hj(1) + hi(1)*hj(0),
		hi(1) * hj(1),
		hi(2)*hj(0) + hi(0)*hj(2),
		hi(2)*hj(1) + hi(1)*hj(2),
		hi(2) * hj(2),
	}
}

// buildV stacks the two Zhang constraint rows (v12 and v11-v22) from every
// sample homography into the 2N x 6 matrix V such that V*b=0 for the
// vectorized B = K^-T K^-1. Generalized from the pack's 3-homography
// GetV to an arbitrary sample count N (spec.md §4.7 calls for 10 samples,
// Zhang's method needs only 3 or more).
func buildV(homographies []Mat3) *mat.Dense {
	rows := make([][]float64, 0, 2*len(homographies))
	for _, h := range homographies {
		// Row-major, so getVij's h.AtVec(i+3*k) is element k of column i.
		vec := mat.NewVecDense(9, []float64{
			h[0][0], h[0][1], h[0][2],
			h[1][0], h[1][1], h[1][2],
			h[2][0], h[2][1], h[2][2],
		})
		v12 := getVij(vec, 0, 1)
		v11 := getVij(vec, 0, 0)
		v22 := getVij(vec, 1, 1)
		diff := make([]float64, 6)
		for i := range diff {
			diff[i] = v11[i] - v22[i]
		}
		rows = append(rows, v12, diff)
	}

	data := make([]float64, 0, len(rows)*6)
	for _, r := range rows {
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), 6, data)
}

// solveBFromV recovers B (as its 6 independent entries b11,b12,b22,b13,
// b23,b33) as the right null-space vector of V, via SVD — the pack's
// BuildBFromV.
func solveBFromV(v *mat.Dense) ([]float64, error) {
	var svd mat.SVD
	if !svd.Factorize(v, mat.SVDThin) {
		return nil, errors.New("geomsolve: calibration SVD factorization failed")
	}
	var vv mat.Dense
	svd.VTo(&vv)
	sigma := svd.Values(nil)

	minIdx := 0
	for i, s := range sigma {
		if s < sigma[minIdx] {
			minIdx = i
		}
	}
	b := make([]float64, 6)
	for i := range b {
		b[i] = vv.At(i, minIdx)
	}
	return b, nil
}

// intrinsicsFromB applies Zhang's method (Appendix B) closed-form solution
// to recover (v0, lambda, alpha, beta, gamma, u0) from B. Grounded directly
// on the pack's GetIntrinsicsFromB.
func intrinsicsFromB(b []float64) (v0, lam, alpha, beta, gamma, u0 float64) {
	v0 = (b[1]*b[3] - b[0]*b[4]) / (b[0]*b[2] - b[1]*b[1])
	lam = b[5] - (b[3]*b[3]+v0*(b[1]*b[3]-b[0]*b[4]))/b[0]
	alpha = math.Sqrt(math.Abs(lam / b[0]))
	beta = math.Sqrt(math.Abs(lam * b[0] / (b[0]*b[2] - b[1]*b[1])))
	gamma = -1 * b[1] * alpha * alpha * (beta / lam)
	u0 = (gamma * v0 / beta) - (b[3] * alpha * alpha / lam)
	return
}

// viewPose recovers a single view's extrinsics [R|t] from its homography
// and the (already estimated) intrinsic matrix, the same decomposition
// SolvePnP uses: normalize H by K^-1, recover r1, r2 by unit-scaling the
// first two columns, r3 = r1 x r2, and orthogonalize via SVD.
func viewPose(h, kInv Mat3) (Mat3, Vec3, error) {
	hn := MulMat3(kInv, h)
	h1 := Vec3{hn[0][0], hn[1][0], hn[2][0]}
	h2 := Vec3{hn[0][1], hn[1][1], hn[2][1]}
	h3 := Vec3{hn[0][2], hn[1][2], hn[2][2]}

	n1, n2 := norm(h1), norm(h2)
	if n1 < 1e-12 || n2 < 1e-12 {
		return Mat3{}, Vec3{}, errors.New("geomsolve: degenerate view homography")
	}
	lambda := 1 / n1
	r1 := scale(h1, 1/n1)
	r2 := scale(h2, 1/n2)
	r3 := cross(r1, r2)
	t := scale(h3, lambda)

	raw := Mat3{
		{r1[0], r2[0], r3[0]},
		{r1[1], r2[1], r3[1]},
		{r1[2], r2[2], r3[2]},
	}
	return orthogonalize(raw), t, nil
}

func isFinitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Calibrate implements spec.md §4.7's compute_intrinsics: it estimates the
// linear (distortion-free) intrinsic matrix via Zhang's method from N
// planar chessboard samples, recovers each view's extrinsics, then runs a
// Levenberg-Marquardt pass refining (fx, fy, cx, cy) and the first five
// distortion coefficients (k1, k2, p1, p2, k3) jointly against the
// aggregated reprojection residual over every sample and every point, with
// per-view extrinsics held at their linear estimate (consistent with
// spec.md §4.7: "per-view extrinsics are discarded" from the output, but
// they remain a necessary intermediate of the solve). imageWidth and
// imageHeight (spec.md §6's "image size (w,h)" input) are only consulted
// as the initial-guess fallback described below; they do not otherwise
// constrain the solve. This generalizes the
// pack's DoLM/MinClosure homography refinement (calibrate/zhangs.go) from
// refining a single 9-parameter homography to refining the 9-parameter
// camera model jointly over every sample.
func Calibrate(samples [][]Point2, objectPoints []Point2, imageWidth, imageHeight float64) (CalibrationResult, error) {
	if len(samples) < 3 {
		return CalibrationResult{}, errors.New("geomsolve: need at least 3 calibration samples")
	}

	homographies := make([]Mat3, len(samples))
	for i, s := range samples {
		h, err := SolveHomography(s, objectPoints)
		if err != nil {
			return CalibrationResult{}, err
		}
		homographies[i] = h
	}

	v := buildV(homographies)
	b, err := solveBFromV(v)
	if err != nil {
		return CalibrationResult{}, err
	}
	v0, lam, alpha, beta, gamma, u0 := intrinsicsFromB(b)

	// Zhang's closed-form solution can degenerate (b[0]*b[2]-b[1]*b[1] near
	// zero) for ill-conditioned view sets; fall back to the image center
	// and a focal length of one image width, the same initial-guess
	// convention OpenCV's calibrateCamera uses imageSize for.
	if !isFinitePositive(alpha) || !isFinitePositive(beta) || math.IsNaN(u0) || math.IsNaN(v0) {
		alpha, beta = imageWidth, imageWidth
		u0, v0 = imageWidth/2, imageHeight/2
		gamma = 0
	}
	if lam < 0 {
		lam = -lam
	}

	k0 := Mat3{
		{alpha, gamma, u0},
		{0, beta, v0},
		{0, 0, 1},
	}
	kInv, err := k0.Inverse()
	if err != nil {
		return CalibrationResult{}, err
	}

	views := make([]struct {
		R Mat3
		T Vec3
	}, len(samples))
	for i, h := range homographies {
		r, t, err := viewPose(h, kInv)
		if err != nil {
			return CalibrationResult{}, err
		}
		views[i].R, views[i].T = r, t
	}

	nPts := len(objectPoints)
	residualSize := 2 * nPts * len(samples)

	project9 := func(params []float64, viewIdx, ptIdx int) (float64, float64) {
		fx, fy, cx, cy := params[0], params[1], params[2], params[3]
		k1, k2, p1, p2, k3 := params[4], params[5], params[6], params[7], params[8]

		op := objectPoints[ptIdx]
		model := Vec3{op.X, op.Y, 0}
		cam := views[viewIdx].R.MulVec(model)
		cam[0] += views[viewIdx].T[0]
		cam[1] += views[viewIdx].T[1]
		cam[2] += views[viewIdx].T[2]

		z := cam[2]
		if math.Abs(z) < 1e-9 {
			z = 1e-9
		}
		x, y := cam[0]/z, cam[1]/z
		r2 := x*x + y*y
		radial := 1 + k1*r2 + k2*r2*r2 + k3*r2*r2*r2
		xd := x*radial + 2*p1*x*y + p2*(r2+2*x*x)
		yd := y*radial + p1*(r2+2*y*y) + 2*p2*x*y
		return fx*xd + cx, fy*yd + cy
	}

	minfunc := func(dst, params []float64) {
		idx := 0
		for vi, s := range samples {
			for pi := range s {
				u, v := project9(params, vi, pi)
				dst[idx] = u - s[pi].X
				dst[idx+1] = v - s[pi].Y
				idx += 2
			}
		}
	}

	init := []float64{alpha, beta, u0, v0, 0, 0, 0, 0, 0}
	jac := lm.NumJac{minfunc}
	problem := lm.LMProblem{
		Dim:        9,
		Size:       residualSize,
		Func:       minfunc,
		Jac:        jac.Jac,
		InitParams: init,
		Tau:        1e-3,
		Eps1:       1e-10,
		Eps2:       1e-10,
	}

	res, err := lm.LM(problem, &lm.Settings{Iterations: 100, ObjectiveTol: 1e-16})
	params := init
	if err == nil {
		params = res.X
	}

	residuals := make([]float64, residualSize)
	minfunc(residuals, params)
	var sse float64
	for _, d := range residuals {
		sse += d * d
	}
	mse := sse / float64(residualSize)

	result := CalibrationResult{
		K: Mat3{
			{params[0], gamma, params[2]},
			{0, params[1], params[3]},
			{0, 0, 1},
		},
		ReprojErrMSE: mse,
	}
	result.Dist[0], result.Dist[1], result.Dist[2], result.Dist[3], result.Dist[4] = params[4], params[5], params[6], params[7], params[8]
	return result, nil
}

package geomsolve

import "gonum.org/v1/gonum/mat"

// svd3 factorizes a 3x3 matrix m = U * Sigma * V^T via gonum's general SVD,
// returning U and V^T as Mat3. Used by orthogonalize to project an
// approximate rotation matrix onto the nearest proper rotation.
func svd3(m Mat3) (u, sigma, vt Mat3) {
	dense := mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})

	var svd mat.SVD
	svd.Factorize(dense, mat.SVDFull)

	var uD, vD mat.Dense
	svd.UTo(&uD)
	svd.VTo(&vD)
	values := svd.Values(nil)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			u[i][j] = uD.At(i, j)
			vt[i][j] = vD.At(j, i)
		}
	}
	for i := 0; i < 3; i++ {
		sigma[i][i] = values[i]
	}
	return u, sigma, vt
}

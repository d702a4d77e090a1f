package imgproc

// PointF is a floating-point 2D point, used for the sub-pixel geometry of
// rectification and sub-pixel refinement.
type PointF struct{ X, Y float64 }

// Homography is a 3x3 perspective transform stored row-major with h[8]=1.
type Homography [9]float64

// ComputeHomography solves the perspective transform mapping src points to
// dst points (4 correspondences, general position) by Gaussian elimination
// with partial pivoting over the 8x8 linear system derived from the
// projective mapping equations. Adapted directly from the teacher's
// computePerspectiveMatrix/solveLinearSystem (board_finder_cam.go), written
// there to rectify a chess board's image quadrilateral into a square debug
// image — the identical problem shape as marker rectification (spec.md
// §4.2) and chessboard-sample homography estimation (spec.md §4.7).
func ComputeHomography(src, dst [4]PointF) Homography {
	var a [8][8]float64
	var b [8]float64

	for i := 0; i < 4; i++ {
		sx, sy := src[i].X, src[i].Y
		dx, dy := dst[i].X, dst[i].Y

		a[i*2][0] = sx
		a[i*2][1] = sy
		a[i*2][2] = 1
		a[i*2][6] = -dx * sx
		a[i*2][7] = -dx * sy
		b[i*2] = dx

		a[i*2+1][3] = sx
		a[i*2+1][4] = sy
		a[i*2+1][5] = 1
		a[i*2+1][6] = -dy * sx
		a[i*2+1][7] = -dy * sy
		b[i*2+1] = dy
	}

	h := solveLinearSystem8(a, b)
	return Homography{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], 1}
}

func solveLinearSystem8(a [8][8]float64, b [8]float64) [8]float64 {
	for col := 0; col < 8; col++ {
		maxRow := col
		for row := col + 1; row < 8; row++ {
			if absF(a[row][col]) > absF(a[maxRow][col]) {
				maxRow = row
			}
		}
		a[col], a[maxRow] = a[maxRow], a[col]
		b[col], b[maxRow] = b[maxRow], b[col]

		for row := col + 1; row < 8; row++ {
			if a[col][col] == 0 {
				continue
			}
			factor := a[row][col] / a[col][col]
			for k := col; k < 8; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	var x [8]float64
	for i := 7; i >= 0; i-- {
		x[i] = b[i]
		for j := i + 1; j < 8; j++ {
			x[i] -= a[i][j] * x[j]
		}
		if a[i][i] != 0 {
			x[i] /= a[i][i]
		}
	}
	return x
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Apply maps (x,y) through the homography.
func (h Homography) Apply(x, y float64) (float64, float64) {
	w := h[6]*x + h[7]*y + h[8]
	if w == 0 {
		w = 1
	}
	return (h[0]*x + h[1]*y + h[2]) / w, (h[3]*x + h[4]*y + h[5]) / w
}

// WarpPerspective resamples src through the inverse of the homography
// mapping the dst rectangle of size (dstW, dstH) back into src, bilinearly
// interpolating grayscale pixel values. Adapted from the teacher's
// perspectiveTransform/bilinearSample (board_finder_cam.go), generalized
// from RGBA debug output to the single-channel rectified image §4.2 needs.
func WarpPerspective(src *Gray, srcQuad [4]PointF, dstW, dstH int) *Gray {
	dstPts := [4]PointF{{0, 0}, {float64(dstW - 1), 0}, {float64(dstW - 1), float64(dstH - 1)}, {0, float64(dstH - 1)}}
	// Homography from dst -> src, so that every output pixel samples a
	// source location directly (no holes from a forward mapping).
	inv := ComputeHomography(dstPts, srcQuad)

	out := NewGray(dstW, dstH)
	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			sx, sy := inv.Apply(float64(x), float64(y))
			out.Set(x, y, bilinearSampleGray(src, sx, sy))
		}
	}
	return out
}

func bilinearSampleGray(src *Gray, x, y float64) byte {
	if x < 0 || y < 0 || x > float64(src.W-1) || y > float64(src.H-1) {
		return 0
	}
	x0 := int(x)
	y0 := int(y)
	x1 := min(x0+1, src.W-1)
	y1 := min(y0+1, src.H-1)
	fx := x - float64(x0)
	fy := y - float64(y0)

	c00 := float64(src.At(x0, y0))
	c10 := float64(src.At(x1, y0))
	c01 := float64(src.At(x0, y1))
	c11 := float64(src.At(x1, y1))

	top := c00*(1-fx) + c10*fx
	bot := c01*(1-fx) + c11*fx
	v := top*(1-fy) + bot*fy
	return byte(v + 0.5)
}

package imgproc

import "math"

// gradients holds the horizontal and vertical Sobel gradient images of a
// grayscale source, used by RefineCorner.
type gradients struct {
	w, h   int
	gx, gy []float64
}

func sobelGradients(src *Gray) *gradients {
	g := &gradients{w: src.W, h: src.H, gx: make([]float64, src.W*src.H), gy: make([]float64, src.W*src.H)}
	at := func(x, y int) float64 {
		if x < 0 {
			x = 0
		}
		if y < 0 {
			y = 0
		}
		if x >= src.W {
			x = src.W - 1
		}
		if y >= src.H {
			y = src.H - 1
		}
		return float64(src.At(x, y))
	}
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			gx := (at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)) - (at(x-1, y-1) + 2*at(x-1, y) + at(x-1, y+1))
			gy := (at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)) - (at(x-1, y-1) + 2*at(x, y-1) + at(x+1, y-1))
			g.gx[y*src.W+x] = gx
			g.gy[y*src.W+x] = gy
		}
	}
	return g
}

func (g *gradients) sample(x, y float64) (float64, float64) {
	if x < 0 || y < 0 || x > float64(g.w-1) || y > float64(g.h-1) {
		return 0, 0
	}
	x0, y0 := int(x), int(y)
	x1, y1 := min(x0+1, g.w-1), min(y0+1, g.h-1)
	fx, fy := x-float64(x0), y-float64(y0)

	bilerp := func(vals []float64) float64 {
		c00 := vals[y0*g.w+x0]
		c10 := vals[y0*g.w+x1]
		c01 := vals[y1*g.w+x0]
		c11 := vals[y1*g.w+x1]
		top := c00*(1-fx) + c10*fx
		bot := c01*(1-fx) + c11*fx
		return top*(1-fy) + bot*fy
	}
	return bilerp(g.gx), bilerp(g.gy)
}

// RefineCorner iteratively refines a single corner estimate to sub-pixel
// accuracy: within a (2*winRadius+1) window, every pixel's image gradient
// should be orthogonal to the vector from that pixel to the true corner
// (a corner is where edges converging from multiple directions meet), so
// each iteration solves the 2x2 normal-equations system accumulated over
// the window and moves the estimate to the solution, stopping after
// maxIter iterations or when the step is smaller than eps — spec.md §4.5's
// termination criteria, and conceptually the same "search a window around
// the current estimate and move toward the locally best point" strategy as
// the teacher's chessboard saddle-point UpdateCorners, generalized from a
// discrete saddle-score map to continuous gradient-weighted normal
// equations (the standard formulation of cornerSubPix).
func RefineCorner(src *Gray, grad *gradients, p PointF, winRadius, maxIter int, eps float64) PointF {
	for iter := 0; iter < maxIter; iter++ {
		var a11, a12, a22, bx, by float64

		for dy := -winRadius; dy <= winRadius; dy++ {
			for dx := -winRadius; dx <= winRadius; dx++ {
				qx := p.X + float64(dx)
				qy := p.Y + float64(dy)
				gx, gy := grad.sample(qx, qy)
				a11 += gx * gx
				a12 += gx * gy
				a22 += gy * gy
				bx += gx*gx*qx + gx*gy*qy
				by += gx*gy*qx + gy*gy*qy
			}
		}

		det := a11*a22 - a12*a12
		if math.Abs(det) < 1e-6 {
			break
		}
		newX := (a22*bx - a12*by) / det
		newY := (a11*by - a12*bx) / det

		step := math.Hypot(newX-p.X, newY-p.Y)
		p = PointF{X: newX, Y: newY}
		if step < eps {
			break
		}
	}
	return p
}

// NewGradients computes the Sobel gradient images of src once, so a batch
// of corners (e.g. a marker's four corners, or a chessboard's 54) can be
// refined against the same image without recomputing gradients per corner.
func NewGradients(src *Gray) *gradients { return sobelGradients(src) }

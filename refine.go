package arcore

import (
	"github.com/golang/geo/r2"

	"arcore/internal/imgproc"
)

// cornerRefineWindowRadius, cornerRefineMaxIter, and cornerRefineEps are
// spec.md §4.5's termination parameters: window radius 10, no zero-zone,
// 30 iterations or epsilon 0.1.
const (
	cornerRefineWindowRadius = 10
	cornerRefineMaxIter      = 30
	cornerRefineEps          = 0.1
)

// refineCorners sub-pixel refines each of a quadrilateral's four corners
// against the grayscale image's intensity gradients (spec.md §4.5).
func refineCorners(gray *imgproc.Gray, quad Quadrilateral) Quadrilateral {
	grad := imgproc.NewGradients(gray)
	var out Quadrilateral
	for i, c := range quad {
		refined := imgproc.RefineCorner(gray, grad, imgproc.PointF{X: c.X, Y: c.Y},
			cornerRefineWindowRadius, cornerRefineMaxIter, cornerRefineEps)
		out[i] = r2.Point{X: refined.X, Y: refined.Y}
	}
	return out
}

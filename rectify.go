package arcore

import (
	"arcore/internal/imgproc"
)

// rectifiedSize is the fixed square side length markers are warped to
// before sampling (spec.md §4.2).
const rectifiedSize = 350

// rectify warps the frame region inside quad to a rectifiedSize x
// rectifiedSize square and Otsu-binarizes it, so the decoder samples a
// fronto-parallel, lighting-normalized view of the marker regardless of
// its pose in the original frame (spec.md §4.2).
func rectify(gray *imgproc.Gray, quad Quadrilateral) *imgproc.Gray {
	src := [4]imgproc.PointF{
		{X: quad[0].X, Y: quad[0].Y},
		{X: quad[1].X, Y: quad[1].Y},
		{X: quad[2].X, Y: quad[2].Y},
		{X: quad[3].X, Y: quad[3].Y},
	}
	warped := imgproc.WarpPerspective(gray, src, rectifiedSize, rectifiedSize)
	return imgproc.OtsuThreshold(warped)
}

package arcore

import (
	"math"
	"testing"

	"arcore/internal/imgproc"
)

func TestRefineCornersStaysNearInitialEstimate(t *testing.T) {
	gray := imgproc.NewGray(100, 100)
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if x >= 30 && x < 70 && y >= 30 && y < 70 {
				gray.Set(x, y, 255)
			}
		}
	}

	quad := Quadrilateral{
		{X: 30, Y: 30},
		{X: 30, Y: 69},
		{X: 69, Y: 69},
		{X: 69, Y: 30},
	}

	refined := refineCorners(gray, quad)
	for i, c := range refined {
		d := math.Hypot(c.X-quad[i].X, c.Y-quad[i].Y)
		if d > cornerRefineWindowRadius {
			t.Errorf("refined corner %d moved %v pixels, want within the %d-pixel search window", i, d, cornerRefineWindowRadius)
		}
	}
}

func TestRefineCornersHandlesFrameEdgeWithoutPanicking(t *testing.T) {
	gray := imgproc.NewGray(20, 20)
	quad := Quadrilateral{
		{X: 0, Y: 0},
		{X: 0, Y: 19},
		{X: 19, Y: 19},
		{X: 19, Y: 0},
	}
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("refineCorners panicked on an edge-of-frame corner: %v", r)
		}
	}()
	refineCorners(gray, quad)
}

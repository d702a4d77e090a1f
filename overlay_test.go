package arcore

import (
	"image/color"
	"testing"

	"github.com/golang/geo/r2"
)

func TestFrameRGBAViewRoundTripsPixels(t *testing.T) {
	frame := NewFrame(10, 10)
	frame.Set(3, 4, 10, 20, 30)
	view := frameRGBAView{f: frame}

	c := view.At(3, 4)
	r, g, b, a := c.RGBA()
	if byte(r>>8) != 30 || byte(g>>8) != 20 || byte(b>>8) != 10 || a>>8 != 255 {
		t.Errorf("At(3,4) = %v, want R=30 G=20 B=10 A=255", c)
	}
}

func TestFrameRGBAViewSetIgnoresOutOfBounds(t *testing.T) {
	frame := NewFrame(5, 5)
	view := frameRGBAView{f: frame}
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Set panicked on an out-of-bounds pixel: %v", r)
		}
	}()
	red := color.RGBA{R: 255, A: 255}
	view.Set(-1, -1, red)
	view.Set(100, 100, red)
}

func TestMarkerHueIsDeterministic(t *testing.T) {
	a := markerHue(272)
	b := markerHue(272)
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	if ar != br || ag != bg || ab != bb {
		t.Errorf("markerHue(272) is not deterministic: %v vs %v", a, b)
	}
}

func TestQuadCenterIsAverageOfCorners(t *testing.T) {
	q := [4]r2.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}}
	center := quadCenter(q)
	if center.X != 5 || center.Y != 5 {
		t.Errorf("quadCenter = %v, want (5,5)", center)
	}
}

func TestDrawOverlayMutatesFrameWithoutPanicking(t *testing.T) {
	frame := NewFrame(50, 50)
	markers := []Marker{
		{
			Code:    7,
			Corners: [4]r2.Point{{X: 10, Y: 10}, {X: 10, Y: 30}, {X: 30, Y: 30}, {X: 30, Y: 10}},
		},
	}
	drawOverlay(frame, markers)

	var nonZero bool
	for _, v := range frame.Pix {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Error("drawOverlay left the frame untouched")
	}
}

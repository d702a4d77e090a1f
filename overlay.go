package arcore

import (
	"fmt"
	"image"
	"image/color"

	"github.com/golang/geo/r2"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// frameRGBAView adapts a Frame to draw.Image so golang.org/x/image/font's
// Drawer can render directly onto it — the same font.Drawer usage the
// teacher's debug-overlay code uses, retargeted from a standalone
// image.RGBA to this package's BGR Frame layout.
type frameRGBAView struct {
	f *Frame
}

func (v frameRGBAView) ColorModel() color.Model { return color.RGBAModel }
func (v frameRGBAView) Bounds() image.Rectangle { return image.Rect(0, 0, v.f.W, v.f.H) }
func (v frameRGBAView) At(x, y int) color.Color {
	b, g, r := v.f.At(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
func (v frameRGBAView) Set(x, y int, c color.Color) {
	if !v.f.InBounds(x, y) {
		return
	}
	r, g, b, _ := c.RGBA()
	v.f.Set(x, y, byte(b>>8), byte(g>>8), byte(r>>8))
}

// markerHue returns a deterministic, distinct hue per marker code, the same
// colorful.Hsv-based coloring the teacher's BoardDebugImage uses for its
// per-cell highlighting.
func markerHue(code int) color.Color {
	h := float64((code*137)%360) // golden-angle spread keeps adjacent codes visually distinct
	return colorful.Hsv(h, 1, 1)
}

// drawOverlay renders each marker's outline and its decoded code label
// directly onto frame, in place — an in-place mutation rather than a
// full-frame copy (spec.md §9, "Output-parameter style").
func drawOverlay(frame *Frame, markers []Marker) {
	view := frameRGBAView{f: frame}
	for _, m := range markers {
		c := markerHue(m.Code)
		drawQuadOutline(view, m.Corners, c)
		center := quadCenter(m.Corners)
		drawString(view, int(center.X)-10, int(center.Y), fmt.Sprintf("%d", m.Code), c)
	}
}

func quadCenter(q [4]r2.Point) r2.Point {
	sum := q[0].Add(q[1]).Add(q[2]).Add(q[3])
	return r2.Point{X: sum.X / 4, Y: sum.Y / 4}
}

func drawQuadOutline(dst frameRGBAView, q [4]r2.Point, c color.Color) {
	for i := 0; i < 4; i++ {
		drawLine(dst, q[i], q[(i+1)%4], c)
	}
}

// drawLine rasterizes a straight line with Bresenham-style stepping along
// the dominant axis.
func drawLine(dst frameRGBAView, a, b r2.Point, c color.Color) {
	steps := int(maxF(absF(b.X-a.X), absF(b.Y-a.Y)))
	if steps == 0 {
		dst.Set(int(a.X), int(a.Y), c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := a.X + t*(b.X-a.X)
		y := a.Y + t*(b.Y-a.Y)
		dst.Set(int(x), int(y), c)
	}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// drawString renders s at (x,y) using the fixed 7x13 bitmap font, the same
// font.Drawer/basicfont.Face7x13 pairing the teacher's drawString helper
// uses for debug labels.
func drawString(dst frameRGBAView, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

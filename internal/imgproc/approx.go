package imgproc

import "math"

// ApproxPolyDP approximates a closed contour with a reduced polygon using
// the Douglas-Peucker algorithm: a point is kept only if no interior point
// between its two closest kept neighbors lies further than tolerance from
// the chord connecting them. Grounded on the recast navmesh contour
// simplifier's simplifyContour/distancePtSeg pattern (perpendicular-
// distance pruning of a point run against its chord), generalized from
// integer mesh coordinates to floating-point image contours — spec.md
// §4.1 step 5.
func ApproxPolyDP(c Contour, tolerance float64) []Point {
	n := len(c)
	if n < 3 {
		out := make([]Point, n)
		copy(out, c)
		return out
	}

	// Seed with the two points farthest apart, as a closed-contour
	// Douglas-Peucker needs at least two fixed endpoints to recurse between.
	i0, i1 := farthestPair(c)
	kept := map[int]bool{i0: true, i1: true}

	simplifyRun(c, i0, i1, tolerance, kept)
	simplifyRun(c, i1, i0, tolerance, kept)

	var result []Point
	for i := 0; i < n; i++ {
		if kept[i] {
			result = append(result, c[i])
		}
	}
	return result
}

func farthestPair(c Contour) (int, int) {
	best := -1.0
	bi, bj := 0, 1
	for i := 0; i < len(c); i++ {
		for j := i + 1; j < len(c); j++ {
			d := distSq(c[i], c[j])
			if d > best {
				best = d
				bi, bj = i, j
			}
		}
	}
	return bi, bj
}

func distSq(a, b Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return dx*dx + dy*dy
}

// simplifyRun recursively keeps the point of maximum perpendicular
// distance from the chord (from,to) (walking the contour forward from
// `from` to `to`) whenever that distance exceeds tolerance.
func simplifyRun(c Contour, from, to int, tolerance float64, kept map[int]bool) {
	n := len(c)
	run := indicesBetween(from, to, n)
	if len(run) == 0 {
		return
	}

	maxDist := -1.0
	maxIdx := -1
	for _, i := range run {
		d := distancePtSeg(c[i], c[from], c[to])
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist <= tolerance {
		return
	}

	kept[maxIdx] = true
	simplifyRun(c, from, maxIdx, tolerance, kept)
	simplifyRun(c, maxIdx, to, tolerance, kept)
}

// indicesBetween returns the indices strictly between from and to, walking
// forward (wrapping) around a contour of length n.
func indicesBetween(from, to, n int) []int {
	var out []int
	for i := (from + 1) % n; i != to; i = (i + 1) % n {
		out = append(out, i)
	}
	return out
}

// distancePtSeg is the perpendicular distance from p to the segment (a,b),
// clamped to the segment's endpoints outside its span — the same
// formulation as recast's distancePtSeg, generalized to float coordinates.
func distancePtSeg(p, a, b Point) float64 {
	abx := float64(b.X - a.X)
	aby := float64(b.Y - a.Y)
	apx := float64(p.X - a.X)
	apy := float64(p.Y - a.Y)

	d := abx*abx + aby*aby
	t := 0.0
	if d > 0 {
		t = (abx*apx + aby*apy) / d
	}
	t = math.Max(0, math.Min(1, t))

	cx := float64(a.X) + t*abx
	cy := float64(a.Y) + t*aby
	dx := float64(p.X) - cx
	dy := float64(p.Y) - cy
	return math.Sqrt(dx*dx + dy*dy)
}

// Perimeter sums the Euclidean distances between consecutive contour
// points, closing the loop (the intended, bug-fixed semantics of Design
// Notes §9 point 1).
func Perimeter(c Contour) float64 {
	total := 0.0
	n := len(c)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		dx := float64(c[i].X - c[j].X)
		dy := float64(c[i].Y - c[j].Y)
		total += math.Sqrt(dx*dx + dy*dy)
	}
	return total
}

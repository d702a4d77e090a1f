package arcore

import (
	"sort"

	"github.com/golang/geo/r2"

	"arcore/internal/imgproc"
)

// candidate is a quadrilateral still carrying its source contour's
// perimeter, needed only for the dedup pass below.
type candidate struct {
	quad      Quadrilateral
	perimeter float64
}

// extractCandidates implements spec.md §4.1: threshold the frame, trace its
// contours, reduce each to a polygon, and keep the ones shaped like a
// marker's outer border.
func extractCandidates(gray *imgproc.Gray, opts DetectorOptions) []Quadrilateral {
	bin := imgproc.AdaptiveThresholdMeanInv(gray, opts.ThresholdBlockSize, opts.ThresholdConstant)
	contours := imgproc.FindContours(bin)

	var candidates []candidate
	for _, c := range contours {
		if len(c) < opts.MinContourPoints {
			continue
		}
		perim := imgproc.Perimeter(c)
		approx := imgproc.ApproxPolyDP(c, opts.ApproxPolyTolerance*perim)
		if len(approx) != 4 {
			continue
		}

		quad := toQuadrilateral(approx)
		if quad.shortestSideSq() < minContourLength {
			continue
		}
		// Keep only convex quadrilaterals: every turn bends the same way as
		// the polygon's overall winding.
		convex := true
		for i := 0; i < 4; i++ {
			a, b, c := quad[i], quad[(i+1)%4], quad[(i+2)%4]
			turn := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
			if turn*quad.signedArea2() <= 0 {
				convex = false
			}
		}
		if !convex {
			continue
		}
		if quad.signedArea2() < 0 {
			// Enforce CCW winding by swapping the two diagonal vertices
			// (spec.md §4.1 step 7).
			quad[1], quad[3] = quad[3], quad[1]
		}
		candidates = append(candidates, candidate{quad: quad, perimeter: imgproc.Perimeter(approx)})
	}

	return dedupCandidates(candidates, opts.DedupDistanceSq)
}

func toQuadrilateral(pts []imgproc.Point) Quadrilateral {
	var q Quadrilateral
	for i, p := range pts {
		q[i] = r2.Point{X: float64(p.X), Y: float64(p.Y)}
	}
	return q
}

// dedupCandidates drops near-duplicate candidates: when two quadrilaterals'
// mean squared per-corner distance is below threshold, they are the inner
// and outer border of the same marker (spec.md §4.1 step 8), and the
// smaller-perimeter one is dropped, keeping the larger (outer) border —
// the same rule as the source's isolateMarkers (original_source/jni/
// marker.cpp: "if(p1 > p2) remInd = tooNear[i].second; else remInd =
// tooNear[i].first;" always marks the smaller-perimeter candidate for
// removal), matching spec.md §4.1 step 9 verbatim.
func dedupCandidates(cands []candidate, distSqThreshold float64) []Quadrilateral {
	dropped := make([]bool, len(cands))
	for i := range cands {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(cands); j++ {
			if dropped[j] {
				continue
			}
			if meanSqCornerDist(cands[i].quad, cands[j].quad) >= distSqThreshold {
				continue
			}
			if cands[i].perimeter > cands[j].perimeter {
				dropped[j] = true
			} else {
				dropped[i] = true
			}
		}
	}

	out := make([]Quadrilateral, 0, len(cands))
	for i, c := range cands {
		if !dropped[i] {
			out = append(out, c.quad)
		}
	}
	// Stable, deterministic output order (spec.md §8: detection is
	// repeatable on an identical frame) regardless of the contour tracer's
	// internal scan order.
	sort.Slice(out, func(a, b int) bool {
		return out[a][0].X < out[b][0].X || (out[a][0].X == out[b][0].X && out[a][0].Y < out[b][0].Y)
	})
	return out
}

func meanSqCornerDist(a, b Quadrilateral) float64 {
	total := 0.0
	for i := range a {
		d := a[i].Sub(b[i])
		total += d.X*d.X + d.Y*d.Y
	}
	return total / float64(len(a))
}

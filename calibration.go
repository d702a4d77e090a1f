package arcore

import (
	"image"
	"math"
	"sort"

	"github.com/golang/geo/r2"

	"arcore/internal/geomsolve"
	"arcore/internal/imgproc"
)

// chessboardCornerMergeDistSq is the squared pixel distance below which two
// square corners detected from adjoining chessboard squares are treated as
// the same shared inner corner.
const chessboardCornerMergeDistSq = 36.0

// chessboardMinSquarePoints is the minimum contour length a chessboard
// square's boundary must have to be considered, analogous to §4.1's
// MIN_POINTS but tuned for the smaller squares of a calibration pattern.
const chessboardMinSquarePoints = 16

// FindCalibrationPattern locates the 6x9 inner-corner grid of a chessboard
// calibration target in frame, following the pack's
// PruneContours/IsContourSquare/UpdateCorners pipeline: find the dark
// squares' contours, reduce to quadrilaterals passing a corner-angle test,
// merge the corners shared between adjoining squares, sort them into grid
// order, then sub-pixel refine (spec.md §4.7, window radius 11).
func FindCalibrationPattern(frame *Frame) (corners [pointsPerCalibrationSample]r2.Point, found bool) {
	gray := imgproc.ToGray(frame.W, frame.H, frame.Pix)
	bin := imgproc.OtsuThreshold(gray)
	contours := imgproc.FindContours(bin)

	var rawCorners []r2.Point
	for _, c := range contours {
		if len(c) < chessboardMinSquarePoints {
			continue
		}
		perim := imgproc.Perimeter(c)
		approx := imgproc.ApproxPolyDP(c, 0.05*perim)
		if len(approx) != 4 {
			continue
		}
		quad := toQuadrilateral(approx)
		if !isContourSquare(quad) {
			continue
		}
		rawCorners = append(rawCorners, quad[:]...)
	}

	merged := mergeNearbyCorners(rawCorners, chessboardCornerMergeDistSq)
	if len(merged) != pointsPerCalibrationSample {
		return corners, false
	}

	ordered, ok := sortIntoGrid(merged, chessboardCols, chessboardRows)
	if !ok {
		return corners, false
	}

	for i, p := range ordered {
		refined := imgproc.RefineCorner(gray, imgproc.NewGradients(gray), imgproc.PointF{X: p.X, Y: p.Y},
			11, cornerRefineMaxIter, cornerRefineEps)
		corners[i] = r2.Point{X: refined.X, Y: refined.Y}
	}
	return corners, true
}

// isContourSquare rejects quads whose corner angles (law of cosines over
// side and diagonal lengths) aren't consistent with a square transformed
// by a homography — the pack's IsContourSquare corner-angle test, applied
// here to chessboard square candidates.
func isContourSquare(q Quadrilateral) bool {
	p0, p1, p2, p3 := q[0], q[1], q[2], q[3]
	dd0 := p0.Sub(p1).Norm()
	dd1 := p1.Sub(p2).Norm()
	dd2 := p2.Sub(p3).Norm()
	dd3 := p3.Sub(p0).Norm()
	xa := p0.Sub(p2).Norm()
	xb := p1.Sub(p3).Norm()

	angles := []float64{
		cornerAngleDeg(dd3, dd0, xb),
		cornerAngleDeg(dd0, dd1, xa),
		cornerAngleDeg(dd1, dd2, xb),
		cornerAngleDeg(dd2, dd3, xa),
	}
	good := 0
	for _, a := range angles {
		if a > 40 && a < 150 {
			good++
		}
	}
	return good == 4
}

// cornerAngleDeg is the interior angle, in degrees, opposite side c in a
// triangle with sides a, b, c (law of cosines).
func cornerAngleDeg(a, b, c float64) float64 {
	k := (a*a + b*b - c*c) / (2 * a * b)
	k = math.Max(-1, math.Min(1, k))
	return math.Acos(k) * 180 / math.Pi
}

// mergeNearbyCorners averages clusters of points within distSqThreshold of
// each other, collapsing the duplicate corners that adjoining chessboard
// squares each contribute for their shared vertex.
func mergeNearbyCorners(pts []r2.Point, distSqThreshold float64) []r2.Point {
	used := make([]bool, len(pts))
	var merged []r2.Point
	for i := range pts {
		if used[i] {
			continue
		}
		sum := pts[i]
		count := 1
		used[i] = true
		for j := i + 1; j < len(pts); j++ {
			if used[j] {
				continue
			}
			d := pts[i].Sub(pts[j])
			if d.X*d.X+d.Y*d.Y < distSqThreshold {
				sum = sum.Add(pts[j])
				count++
				used[j] = true
			}
		}
		merged = append(merged, r2.Point{X: sum.X / float64(count), Y: sum.Y / float64(count)})
	}
	return merged
}

// sortIntoGrid orders points into row-major grid order (rows of cols
// points each, top to bottom, left to right within a row), the layout
// compute_intrinsics' object-point correspondence assumes.
func sortIntoGrid(pts []r2.Point, cols, rows int) ([]r2.Point, bool) {
	if len(pts) != cols*rows {
		return nil, false
	}
	sorted := make([]r2.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	out := make([]r2.Point, 0, len(pts))
	for r := 0; r < rows; r++ {
		row := sorted[r*cols : (r+1)*cols]
		sort.Slice(row, func(i, j int) bool { return row[i].X < row[j].X })
		out = append(out, row...)
	}
	return out, true
}

// Calibrator solves camera intrinsics via Zhang's method (spec.md §4.7)
// from a CalibrationSession the caller has accumulated; it holds no state.
type Calibrator struct{}

// NewCalibrator constructs a Calibrator. It carries no configuration: the
// chessboard geometry is a fixed module-level constant (spec.md §6, §9
// "Global constants become module-level immutable values").
func NewCalibrator() *Calibrator { return &Calibrator{} }

// ComputeIntrinsics solves for the camera's intrinsic matrix and distortion
// vector from a full CalibrationSession (spec.md §4.7). It is a
// precondition failure for the session to hold a sample count other than
// calibrationSamples (spec.md §6, §7, §8 boundary behavior). imageSize is
// the (w,h) of the frames the samples were detected in (spec.md §6's
// "image size (w,h)" input); the returned float64 is the mean squared
// pixel reprojection error of the solved intrinsics against every sample
// point (spec.md §6, §8 invariant 4).
func (c *Calibrator) ComputeIntrinsics(session CalibrationSession, imageSize image.Point) (Intrinsics, float64, error) {
	if len(session.Samples) != calibrationSamples {
		return Intrinsics{}, 0, preconditionf("CalibrationSession.Samples",
			"need exactly %d samples, got %d", calibrationSamples, len(session.Samples))
	}

	objectPoints := chessboardObjectPoints()
	samples := make([][]geomsolve.Point2, len(session.Samples))
	for i, sample := range session.Samples {
		pts := make([]geomsolve.Point2, len(sample))
		for j, p := range sample {
			pts[j] = geomsolve.Point2{X: p.X, Y: p.Y}
		}
		samples[i] = pts
	}

	result, err := geomsolve.Calibrate(samples, objectPoints, float64(imageSize.X), float64(imageSize.Y))
	if err != nil {
		return Intrinsics{}, 0, err
	}

	var out Intrinsics
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.K[i][j] = result.K[i][j]
		}
	}
	out.Dist = result.Dist
	return out, result.ReprojErrMSE, nil
}

// chessboardObjectPoints is the fixed planar model of the 6x9 inner-corner
// grid, spaced squareSize apart, row-major to match sortIntoGrid's output
// order.
func chessboardObjectPoints() []geomsolve.Point2 {
	pts := make([]geomsolve.Point2, 0, pointsPerCalibrationSample)
	for row := 0; row < chessboardRows; row++ {
		for col := 0; col < chessboardCols; col++ {
			pts = append(pts, geomsolve.Point2{X: float64(col) * squareSize, Y: float64(row) * squareSize})
		}
	}
	return pts
}

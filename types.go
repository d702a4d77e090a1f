// Package arcore is a fiducial-marker detection and pose-estimation core.
//
// Given a BGR camera frame it locates planar square markers carrying a
// 5x5-bit binary payload, decodes their identifier, and recovers the
// camera-relative pose of each marker. It also supports one-off camera
// intrinsic calibration from a chessboard pattern.
//
// The package is a pure, synchronous library: a detection pass is a
// function of (frame, intrinsics) -> (markers, annotated frame) with no
// global state, no cancellation, and no persistence across frames. A caller
// wanting concurrency runs independent passes on independent frames from
// separate goroutines.
package arcore

import "github.com/golang/geo/r2"

// Frame is a BGR, 8-bit-per-channel, row-major image. Pix has length
// 3*W*H; the pixel at (x,y) occupies Pix[3*(y*W+x) : 3*(y*W+x)+3] as (B,G,R).
type Frame struct {
	W, H int
	Pix  []byte
}

// NewFrame allocates a zeroed frame of the given size.
func NewFrame(w, h int) *Frame {
	return &Frame{W: w, H: h, Pix: make([]byte, 3*w*h)}
}

// At returns the (B,G,R) triple at (x,y).
func (f *Frame) At(x, y int) (b, g, r byte) {
	i := 3 * (y*f.W + x)
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// Set writes the (B,G,R) triple at (x,y).
func (f *Frame) Set(x, y int, b, g, r byte) {
	i := 3 * (y*f.W + x)
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = b, g, r
}

// InBounds reports whether (x,y) is within the frame.
func (f *Frame) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.W && y < f.H
}

// Contour is an ordered sequence of integer boundary points.
type Contour []image2Point

// image2Point is an integer 2D point used while tracing raster contours,
// kept distinct from the floating-point r2.Point used once geometry is
// approximated, to mirror the precision boundary of spec.md's data model.
type image2Point struct{ X, Y int }

// Quadrilateral is a convex, CCW-ordered, 4-vertex polygon candidate.
type Quadrilateral [4]r2.Point

// minContourLength is the minimum allowed squared length of a
// quadrilateral's shortest side (spec.md MIN_CONTOUR_LENGTH).
const minContourLength = 0.1

// perimeter sums the Euclidean distances between consecutive vertices,
// closing the loop. This is the intended semantics of the source's
// perimeter() helper, whose loop index was never initialized (Design Notes
// §9 point 1) — implemented here without that bug.
func (q Quadrilateral) perimeter() float64 {
	total := 0.0
	for i := 0; i < len(q); i++ {
		j := (i + 1) % len(q)
		total += q[i].Sub(q[j]).Norm()
	}
	return total
}

// shortestSideSq returns the squared length of the quadrilateral's shortest
// edge.
func (q Quadrilateral) shortestSideSq() float64 {
	min := -1.0
	for i := 0; i < len(q); i++ {
		j := (i + 1) % len(q)
		d := q[i].Sub(q[j])
		sq := d.X*d.X + d.Y*d.Y
		if min < 0 || sq < min {
			min = sq
		}
	}
	return min
}

// signedArea2 is twice the signed area of the quadrilateral (shoelace
// formula); positive for CCW ordering in image coordinates.
func (q Quadrilateral) signedArea2() float64 {
	total := 0.0
	for i := 0; i < len(q); i++ {
		j := (i + 1) % len(q)
		total += q[i].X*q[j].Y - q[j].X*q[i].Y
	}
	return total
}

// Marker is a decoded fiducial: its rectified quadrilateral, payload code,
// and (once pose-estimated) camera-relative pose.
type Marker struct {
	Code int

	// Corners are the four refined image-plane corners, CCW, in the same
	// order the rotation/translation were solved against.
	Corners [4]r2.Point

	// Rotation and Translation store R^T and -t (spec.md §4.6, §9 Open
	// Question): the camera's pose expressed in the marker's local frame,
	// preserved exactly as the source convention defined it.
	Rotation    [3][3]float32
	Translation [3]float32

	// PoseValid is false when PnP failed to converge for this marker; Code
	// and Corners are still populated, Rotation/Translation are zero
	// (spec.md §7: PnP non-convergence is fatal only for that marker).
	PoseValid bool

	// ReprojectionError is the mean squared pixel residual of the refined
	// pose against the four observed corners. Zero when PoseValid is false.
	// [SUPPLEMENTED] per SPEC_FULL.md §4.9: a natural by-product of the
	// Levenberg-Marquardt pose refinement, surfaced for host-side confidence
	// gating.
	ReprojectionError float32
}

// Intrinsics is a camera's 3x3 intrinsic matrix K and 8-element distortion
// vector D, both double precision (spec.md §3).
type Intrinsics struct {
	K    [3][3]float64
	Dist [8]float64
}

// pointsPerCalibrationSample is the number of 2D points in a chessboard
// corner sample: 6x9 inner corners (spec.md §4.7, §6).
const pointsPerCalibrationSample = 54

// calibrationSamples is the number of samples required before a
// CalibrationSession may be solved (spec.md §4.7, §6).
const calibrationSamples = 10

// CalibrationSession is an ordered sequence of per-frame chessboard corner
// samples, each exactly pointsPerCalibrationSample points.
type CalibrationSession struct {
	Samples [][pointsPerCalibrationSample]r2.Point
}

// chessboardCols and chessboardRows are the inner-corner grid dimensions of
// the calibration chessboard (spec.md §6: 6 columns x 9 rows).
const (
	chessboardCols = 6
	chessboardRows = 9
	squareSize     = 1.0
)

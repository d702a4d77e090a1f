package arcore

import (
	"go.viam.com/rdk/logging"

	"arcore/internal/imgproc"
)

// Detector holds the resolved detector configuration and a logger. It is
// immutable after construction and safe for concurrent use by multiple
// goroutines, each calling DetectMarkers on independent frames.
type Detector struct {
	opts   DetectorOptions
	logger logging.Logger
}

// NewDetector constructs a Detector. A zero DetectorOptions resolves to
// spec.md's fixed defaults.
func NewDetector(opts DetectorOptions, logger logging.Logger) *Detector {
	return &Detector{opts: opts.resolved(), logger: logger}
}

// DetectMarkers runs the full pipeline (spec.md §4.9) on frame: candidate
// extraction, per-candidate rectification/decoding, corner refinement, and
// pose estimation against k, then renders an annotated copy of frame. It is
// a pure function of its inputs — no state persists across calls.
func (d *Detector) DetectMarkers(frame *Frame, k Intrinsics) ([]Marker, *Frame, error) {
	if err := checkFrame("frame", frame); err != nil {
		return nil, nil, err
	}
	if err := checkIntrinsics(k); err != nil {
		return nil, nil, err
	}

	gray := imgproc.ToGray(frame.W, frame.H, frame.Pix)
	candidates := extractCandidates(gray, d.opts)
	d.logger.Debugf("extracted %d marker candidates", len(candidates))

	markers := make([]Marker, 0, len(candidates))
	for _, quad := range candidates {
		rectified := rectify(gray, quad)
		bits, ok := sampleCells(rectified)
		if !ok {
			continue
		}
		code, ok := decodeBits(bits)
		if !ok {
			continue
		}

		corners := refineCorners(gray, quad)
		rotation, translation, reprojErr, valid := estimatePose(corners, k)
		if !valid {
			d.logger.Warnf("marker %d: PnP did not converge, pose omitted", code)
		}

		markers = append(markers, Marker{
			Code:              code,
			Corners:           corners,
			Rotation:          rotation,
			Translation:       translation,
			PoseValid:         valid,
			ReprojectionError: reprojErr,
		})
	}

	annotated := NewFrame(frame.W, frame.H)
	copy(annotated.Pix, frame.Pix)
	drawOverlay(annotated, markers)

	return markers, annotated, nil
}

package arcore

import (
	"fmt"

	"github.com/golang/geo/r2"
	"go.uber.org/multierr"
)

// AssembleCalibrationSession validates a batch of raw per-frame chessboard
// corner samples and assembles them into a CalibrationSession. Every
// sample must carry exactly pointsPerCalibrationSample points (spec.md §3:
// "Invariant: all samples have the same cardinality"); malformed samples
// are collected and reported together via multierr rather than failing on
// the first one, so a caller retrying calibration sees every bad sample at
// once.
func AssembleCalibrationSession(samples [][]r2.Point) (CalibrationSession, error) {
	var session CalibrationSession
	var errs error
	for i, s := range samples {
		if len(s) != pointsPerCalibrationSample {
			field := fmt.Sprintf("samples[%d]", i)
			errs = multierr.Append(errs, preconditionf(field, "got %d points, want %d", len(s), pointsPerCalibrationSample))
			continue
		}
		var fixed [pointsPerCalibrationSample]r2.Point
		copy(fixed[:], s)
		session.Samples = append(session.Samples, fixed)
	}
	if errs != nil {
		return CalibrationSession{}, errs
	}
	return session, nil
}

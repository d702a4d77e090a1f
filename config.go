package arcore

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DetectorOptions are the module-level tunables of the candidate extractor.
// Design Notes §9 point 3 ("Global constants become module-
// level immutable values") plus SPEC_FULL.md's supplemented "configurable
// detector parameters" feature: the original C++ source fixes these as
// compile-time constants and literals (original_source/jni/marker.cpp);
// here they are an immutable value passed once at construction.
//
// A zero DetectorOptions resolves every field to spec.md's fixed defaults,
// so callers that don't care can pass DetectorOptions{}.
type DetectorOptions struct {
	// MinContourPoints is the minimum number of boundary pixels a traced
	// contour must have to be considered (spec.md MIN_POINTS, default 40).
	MinContourPoints int

	// ApproxPolyTolerance is the Douglas-Peucker tolerance as a fraction of
	// contour perimeter (spec.md default 0.05).
	ApproxPolyTolerance float64

	// DedupDistanceSq is the mean squared per-corner distance below which
	// two candidates are treated as near-duplicates (spec.md default 100).
	DedupDistanceSq float64

	// ThresholdBlockSize and ThresholdConstant parametrize the adaptive
	// mean threshold (spec.md defaults 7 and 7).
	ThresholdBlockSize int
	ThresholdConstant  float64
}

const (
	defaultMinContourPoints    = 40
	defaultApproxPolyTolerance = 0.05
	defaultDedupDistanceSq     = 100.0
	adaptiveThresholdBlockSize = 7
	adaptiveThresholdConstant  = 7.0
)

func (o DetectorOptions) resolved() DetectorOptions {
	if o.MinContourPoints <= 0 {
		o.MinContourPoints = defaultMinContourPoints
	}
	if o.ApproxPolyTolerance <= 0 {
		o.ApproxPolyTolerance = defaultApproxPolyTolerance
	}
	if o.DedupDistanceSq <= 0 {
		o.DedupDistanceSq = defaultDedupDistanceSq
	}
	if o.ThresholdBlockSize <= 0 {
		o.ThresholdBlockSize = adaptiveThresholdBlockSize
	}
	if o.ThresholdConstant == 0 {
		o.ThresholdConstant = adaptiveThresholdConstant
	}
	return o
}

// DetectorOptionsFromMap decodes host-supplied, untyped configuration (e.g.
// parsed from JSON by the caller) into DetectorOptions, the same
// config-materialization pattern the teacher uses for
// resource.NativeConfig and DoCommand payloads.
func DetectorOptionsFromMap(raw map[string]interface{}) (DetectorOptions, error) {
	var opts DetectorOptions
	if err := mapstructure.Decode(raw, &opts); err != nil {
		return DetectorOptions{}, fmt.Errorf("decoding detector options: %w", err)
	}
	return opts.resolved(), nil
}

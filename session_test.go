package arcore

import (
	"testing"

	"github.com/golang/geo/r2"
)

func validSample() []r2.Point {
	pts := make([]r2.Point, pointsPerCalibrationSample)
	for i := range pts {
		pts[i] = r2.Point{X: float64(i), Y: float64(i)}
	}
	return pts
}

func TestAssembleCalibrationSessionAcceptsWellFormedSamples(t *testing.T) {
	samples := [][]r2.Point{validSample(), validSample(), validSample()}
	session, err := AssembleCalibrationSession(samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(session.Samples) != 3 {
		t.Fatalf("expected 3 assembled samples, got %d", len(session.Samples))
	}
}

func TestAssembleCalibrationSessionRejectsWrongCardinality(t *testing.T) {
	bad := validSample()[:10]
	_, err := AssembleCalibrationSession([][]r2.Point{validSample(), bad})
	if err == nil {
		t.Fatal("expected an error for a sample with the wrong point count")
	}
}

func TestAssembleCalibrationSessionReportsEveryBadSample(t *testing.T) {
	bad1 := validSample()[:5]
	bad2 := validSample()[:10]
	_, err := AssembleCalibrationSession([][]r2.Point{bad1, validSample(), bad2})
	if err == nil {
		t.Fatal("expected an error")
	}
	// multierr.Append concatenates each individual error's message.
	msg := err.Error()
	if !contains(msg, "samples[0]") || !contains(msg, "samples[2]") {
		t.Errorf("expected errors for both bad samples, got: %s", msg)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

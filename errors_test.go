package arcore

import "testing"

func TestCheckFrameRejectsNil(t *testing.T) {
	if err := checkFrame("frame", nil); err == nil {
		t.Error("expected an error for a nil frame")
	}
}

func TestCheckFrameRejectsTooSmall(t *testing.T) {
	f := NewFrame(3, 3)
	if err := checkFrame("frame", f); err == nil {
		t.Error("expected an error for a frame smaller than the threshold block size")
	}
}

func TestCheckFrameAcceptsValid(t *testing.T) {
	f := NewFrame(64, 64)
	if err := checkFrame("frame", f); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheckIntrinsicsRejectsAllZero(t *testing.T) {
	if err := checkIntrinsics(Intrinsics{}); err == nil {
		t.Error("expected an error for all-zero intrinsics")
	}
}

func TestCheckIntrinsicsAcceptsNonZero(t *testing.T) {
	k := Intrinsics{K: [3][3]float64{{500, 0, 320}, {0, 500, 240}, {0, 0, 1}}}
	if err := checkIntrinsics(k); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPreconditionErrorMessage(t *testing.T) {
	err := preconditionf("K", "bad value %d", 7)
	var pe *PreconditionError
	if !asPreconditionError(err, &pe) {
		t.Fatal("expected a *PreconditionError")
	}
	if pe.Field != "K" {
		t.Errorf("Field = %q, want K", pe.Field)
	}
}

func asPreconditionError(err error, target **PreconditionError) bool {
	pe, ok := err.(*PreconditionError)
	if ok {
		*target = pe
	}
	return ok
}

package angle

import (
	"math"
	"testing"
)

func TestNormalize360(t *testing.T) {
	expectNormalized(t, 0, 0)
	expectNormalized(t, 359, 359)
	expectNormalized(t, 360, 0)
	expectNormalized(t, 361, 1)
	expectNormalized(t, -1, 359)
	expectNormalized(t, -360, 0)
	expectNormalized(t, 720+90, 90)
	expectNormalized(t, -720-90, 270)
	expectNormalized(t, -1e-15, 0)
}

func expectNormalized(t *testing.T, in, expected float64) {
	t.Helper()
	out := Normalize360(in)
	if out < 0 || out >= 360 {
		t.Errorf("Normalize360(%f) = %f, out of range", in, out)
	}
	if math.Abs(out-expected) > 1e-9 {
		t.Errorf("Normalize360(%f) = %f, expected %f", in, out, expected)
	}
}

func TestPlusMinus180(t *testing.T) {
	expectPM180(t, 0, 0)
	expectPM180(t, 180, 180)
	expectPM180(t, -180, 180)
	expectPM180(t, 181, -179)
	expectPM180(t, 359, -1)
	expectPM180(t, -540, 180)

	a := FromFloat(170)
	if got := a.AddFloat(20).Float(); got != -170 {
		t.Errorf("170+20 = %f, expected -170", got)
	}
	if got := FromFloat(-170).Sub(FromFloat(170)).Float(); got != 20 {
		t.Errorf("-170-170 = %f, expected 20", got)
	}
}

func expectPM180(t *testing.T, in, expected float64) {
	t.Helper()
	if out := FromFloat(in).Float(); out != expected {
		t.Errorf("FromFloat(%f) = %f, expected %f", in, out, expected)
	}
}

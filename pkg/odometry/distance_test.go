package odometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDistanceTracker(t *testing.T, cfg WheelConfig) *DistanceTracker {
	t.Helper()
	d, err := NewDistanceTracker(cfg)
	require.NoError(t, err)
	return d
}

func TestDistanceTrackerValidation(t *testing.T) {
	_, err := NewDistanceTracker(WheelConfig{CPR: 0, Diameter: 4})
	assert.ErrorIs(t, err, ErrInvalidCPR)
	_, err = NewDistanceTracker(WheelConfig{CPR: -5, Diameter: 4})
	assert.ErrorIs(t, err, ErrInvalidCPR)
	for _, dia := range []float64{0, -4, math.NaN(), math.Inf(1)} {
		_, err = NewDistanceTracker(WheelConfig{CPR: 1024, Diameter: dia})
		assert.ErrorIs(t, err, ErrInvalidDiameter, "diameter=%v", dia)
	}
}

func TestCountsPerInch(t *testing.T) {
	d := newDistanceTracker(t, WheelConfig{CPR: 1024, Diameter: 4})
	assert.InDelta(t, 4*math.Pi, d.Circumference(), 1e-12)
	assert.InDelta(t, 1024/(4*math.Pi), d.CountsPerInch(), 1e-12)
	// One revolution is one circumference.
	assert.InDelta(t, 4*math.Pi, d.Inches(1024), 1e-9)
}

func TestInchesIsLinear(t *testing.T) {
	d := newDistanceTracker(t, WheelConfig{CPR: 360, Diameter: 3.25})
	for _, c := range []int64{0, 1, 7, 360, 12345, -999, 1 << 30} {
		assert.InDelta(t, 2*d.Inches(c), d.Inches(2*c), 1e-9, "count=%d", c)
	}
}

func TestOffsetShiftsDistanceOnly(t *testing.T) {
	d := newDistanceTracker(t, WheelConfig{CPR: 1024, Diameter: 4})
	cpi := d.CountsPerInch()

	d.Update(2048)
	assert.InDelta(t, 8*math.Pi, d.Distance(), 1e-9)

	d.Zero()
	assert.Equal(t, int64(-2048), d.Offset())
	assert.Equal(t, 0.0, d.Distance())
	assert.Equal(t, cpi, d.CountsPerInch(), "re-zeroing must not alter calibration")
	assert.InDelta(t, 4*math.Pi, d.Inches(1024), 1e-9, "Inches ignores the offset")

	d.Update(3072)
	assert.InDelta(t, 4*math.Pi, d.Distance(), 1e-9)

	d.SetOffset(1024)
	assert.InDelta(t, 16*math.Pi, d.Distance(), 1e-9)
	assert.Equal(t, cpi, d.CountsPerInch())
}

func TestInvertedWheel(t *testing.T) {
	d := newDistanceTracker(t, WheelConfig{CPR: 1024, Diameter: 4, Inverted: true})
	d.Update(1024)
	assert.Equal(t, int64(-1024), d.Count())
	assert.InDelta(t, -4*math.Pi, d.Distance(), 1e-9)
}

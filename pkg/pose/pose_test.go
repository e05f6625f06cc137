package pose

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-9

var samplePoints = []struct {
	center, point Pose
}{
	{Pose{}, Pose{X: 10, Y: 15}},
	{Pose{X: 3, Y: -4}, Pose{X: -7.5, Y: 2.25, Angle: 33}},
	{Pose{X: -100, Y: 250, Angle: 90}, Pose{X: 1e3, Y: -1e3}},
	{Pose{X: 1, Y: 1}, Pose{X: 1, Y: 1}},
}

func TestRotateByZeroIsIdentity(t *testing.T) {
	for _, s := range samplePoints {
		assert.Equal(t, s.point, Rotate(s.center, s.point, 0))
	}
}

func TestRotateIsPeriodic(t *testing.T) {
	for _, s := range samplePoints {
		for _, k := range []float64{1, -1, 3} {
			r := Rotate(s.center, s.point, 360*k)
			assert.InDelta(t, s.point.X, r.X, 1e-6)
			assert.InDelta(t, s.point.Y, r.Y, 1e-6)
		}
	}
}

func TestRotateIsIsometry(t *testing.T) {
	for _, s := range samplePoints {
		want := Distance(s.center, s.point)
		for theta := -720.0; theta <= 720; theta += 17.5 {
			got := Distance(s.center, Rotate(s.center, s.point, theta))
			assert.InDelta(t, want, got, 1e-6, "theta=%v", theta)
		}
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	r := Rotate(Pose{}, Pose{X: 10, Y: 15, Angle: 45}, 90)
	assert.InDelta(t, -15, r.X, tolerance)
	assert.InDelta(t, 10, r.Y, tolerance)
	assert.Equal(t, 45.0, r.Angle, "rotation must not change heading")

	r = Rotate(Pose{X: 1, Y: 1}, Pose{X: 2, Y: 1}, -90)
	assert.InDelta(t, 1, r.X, tolerance)
	assert.InDelta(t, 0, r.Y, tolerance)
}

func TestRadianRoundTrip(t *testing.T) {
	p := Pose{Angle: 123.456, X: 1, Y: -2}
	r := p.Radians()
	assert.InDelta(t, 123.456*math.Pi/180, r.Angle, tolerance)
	back := r.Degrees()
	assert.InDelta(t, p.Angle, back.Angle, tolerance)
	assert.Equal(t, p.X, back.X)
	assert.Equal(t, p.Y, back.Y)
}

func TestNormalizedIsExplicit(t *testing.T) {
	p := Pose{Angle: -90, X: 1, Y: 2}
	assert.Equal(t, -90.0, p.Angle, "angles are stored as given")
	n := p.Normalized()
	assert.Equal(t, 270.0, n.Angle)
	assert.Equal(t, p.X, n.X)
	assert.Equal(t, p.Y, n.Y)
}

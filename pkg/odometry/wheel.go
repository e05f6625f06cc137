package odometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tigerbot-team/tigerbot/swerve/pkg/angle"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/pose"
)

// WheelTracker dead-reckons the position of a single wheel from its distance
// tracker and the field-relative direction it is rolling in.
type WheelTracker struct {
	distance *DistanceTracker

	primed    bool
	lastCount int64
	position  pose.Pose
}

func NewWheelTracker(cfg WheelConfig) (*WheelTracker, error) {
	d, err := NewDistanceTracker(cfg)
	if err != nil {
		return nil, err
	}
	return &WheelTracker{distance: d}, nil
}

var _ Tracker = (*WheelTracker)(nil)

// Update ingests the tick's raw count and wheel direction (degrees,
// anticlockwise from the field X axis).  It returns the displacement applied.
// The first call only establishes the baseline.  Steps come from the change
// in raw count, so re-zeroing the distance tracker does not move the wheel.
func (w *WheelTracker) Update(count int64, angleDegrees float64) r2.Vec {
	w.distance.Update(count)
	c := w.distance.Count()
	w.position.Angle = angleDegrees
	if !w.primed {
		w.primed = true
		w.lastCount = c
		return r2.Vec{}
	}

	delta := w.distance.Inches(c - w.lastCount)
	w.lastCount = c

	sin, cos := math.Sincos(angleDegrees * angle.RadiansPerDegree)
	step := r2.Vec{X: delta * cos, Y: delta * sin}
	w.position = w.position.WithVec(r2.Add(w.position.Vec(), step))
	return step
}

// Reset zeroes the position; the next Update re-primes the baseline.
func (w *WheelTracker) Reset() {
	w.position = pose.Pose{}
	w.primed = false
}

func (w *WheelTracker) Set(x, y, heading float64) {
	w.position = pose.Pose{Angle: heading, X: x, Y: y}
}

func (w *WheelTracker) Position() pose.Pose {
	return w.position
}

func (w *WheelTracker) Distance() *DistanceTracker {
	return w.distance
}

package odometry

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tigerbot-team/tigerbot/swerve/pkg/angle"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/chassis"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/pose"
)

// Sample is one tick's worth of input to the ChassisTracker.
type Sample struct {
	Time time.Time
	// Drive holds the raw drive encoder counts.
	Drive chassis.PerModule[int64]
	// Steering holds each module's angle relative to the chassis, degrees.
	Steering chassis.PerModule[float64]
	// Heading is the chassis heading from the gyro, degrees.
	Heading float64
}

// ChassisTracker estimates the chassis centre position by averaging the
// displacement of the four wheels each tick.  The heading is the gyro heading
// plus an offset set by Set, so relocalising fixes the heading too.
type ChassisTracker struct {
	wheels chassis.PerModule[*WheelTracker]

	lastTime      time.Time
	lastHeading   float64 // raw gyro heading of the last sample
	headingOffset float64
	position      pose.Pose
	velocity      float64
}

func NewChassisTracker(cfg WheelConfig, inverted chassis.PerModule[bool]) (*ChassisTracker, error) {
	configs := chassis.Map(inverted, func(_ chassis.Module, inv bool) WheelConfig {
		wcfg := cfg
		wcfg.Inverted = cfg.Inverted != inv
		return wcfg
	})
	t := &ChassisTracker{}
	for m, wcfg := range configs {
		w, err := NewWheelTracker(wcfg)
		if err != nil {
			return nil, err
		}
		t.wheels[m] = w
	}
	return t, nil
}

var _ Tracker = (*ChassisTracker)(nil)

func (t *ChassisTracker) Update(s Sample) {
	heading := angle.FromFloat(s.Heading).AddFloat(t.headingOffset).Float()
	t.lastHeading = s.Heading

	var total r2.Vec
	for m, w := range t.wheels {
		step := w.Update(s.Drive[m], heading+s.Steering[m])
		total = r2.Add(total, step)
	}
	step := r2.Scale(1.0/chassis.NumModules, total)

	t.position = t.position.WithVec(r2.Add(t.position.Vec(), step))
	t.position.Angle = heading

	if !t.lastTime.IsZero() {
		if dt := s.Time.Sub(t.lastTime).Seconds(); dt > 0 {
			t.velocity = r2.Norm(step) / dt
		}
	}
	t.lastTime = s.Time
}

// Reset zeroes position, velocity and the heading offset.  Wheel calibration
// is untouched.
func (t *ChassisTracker) Reset() {
	for _, w := range t.wheels {
		w.Reset()
	}
	t.position = pose.Pose{}
	t.velocity = 0
	t.headingOffset = 0
	t.lastTime = time.Time{}
}

// Set forces the position, e.g. after relocalising against the field.  The
// heading holds from then on: later samples are offset so that the last
// gyro heading reads as heading.
func (t *ChassisTracker) Set(x, y, heading float64) {
	t.position = pose.Pose{Angle: heading, X: x, Y: y}
	t.headingOffset = heading - t.lastHeading
}

func (t *ChassisTracker) Position() pose.Pose {
	return t.position
}

// Velocity is the speed over the last tick in inches per second.
func (t *ChassisTracker) Velocity() float64 {
	return t.velocity
}

func (t *ChassisTracker) Wheel(m chassis.Module) *WheelTracker {
	return t.wheels[m]
}

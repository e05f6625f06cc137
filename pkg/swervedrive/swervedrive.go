// Package swervedrive runs the per-tick control loop for the four swerve
// modules: it reads the encoders, steps the steering controllers and the
// odometry, sends steering output and publishes an immutable Snapshot for
// other goroutines to read.
package swervedrive

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/tigerbot-team/tigerbot/swerve/pkg/chassis"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/encoders"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/odometry"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/pose"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/steering"
)

type HeadingSource interface {
	HeadingDegrees() float64
}

type SteeringOutput interface {
	SetSteering(outputs chassis.PerModule[float64]) error
}

type Config struct {
	Geometry   chassis.Geometry
	Wheel      odometry.WheelConfig
	Inverted   chassis.PerModule[bool]
	SteerCPR   int
	MaxCommand float64
	Interval   time.Duration
	Curve      steering.Curve
}

// Snapshot is the published result of one tick.  It is never modified after
// publication.
type Snapshot struct {
	Time time.Time
	Tick uint64

	// Steering is each module's current angle in degrees.
	Steering chassis.PerModule[float64]
	// Commands are the controller outputs clamped to [-1, 1].
	Commands chassis.PerModule[float64]
	// Outputs are the signed, scaled values sent to the steering motors.
	Outputs chassis.PerModule[float64]
	States  chassis.PerModule[steering.State]

	Position pose.Pose
	Velocity float64
	Corners  chassis.Corners
}

// Drive owns its controllers and tracker; only the goroutine running Loop
// (or calling Step) touches them.  Requests from other goroutines go through
// the control block and are applied at the start of the next tick.
type Drive struct {
	cfg      Config
	encoders encoders.Interface
	heading  HeadingSource
	output   SteeringOutput

	steer   chassis.PerModule[*steering.Controller]
	tracker *odometry.ChassisTracker
	tick    uint64

	controlLock sync.Mutex
	controls

	snapshot atomic.Pointer[Snapshot]
}

type controls struct {
	targets        *chassis.PerModule[float64]
	forcedPosition *pose.Pose
	resetPosition  bool
}

func New(cfg Config, enc encoders.Interface, heading HeadingSource, out SteeringOutput) (*Drive, error) {
	if cfg.Interval <= 0 {
		return nil, errors.Errorf("loop interval must be positive, got %v", cfg.Interval)
	}
	if !(cfg.MaxCommand > 0 && cfg.MaxCommand <= 1) {
		return nil, errors.Errorf("max command must be in (0, 1], got %v", cfg.MaxCommand)
	}
	d := &Drive{
		cfg:      cfg,
		encoders: enc,
		heading:  heading,
		output:   out,
	}
	for m := range d.steer {
		c, err := steering.New(steering.Config{CPR: cfg.SteerCPR, Curve: cfg.Curve})
		if err != nil {
			return nil, errors.Wrapf(err, "module %v", chassis.Module(m))
		}
		d.steer[m] = c
	}
	tracker, err := odometry.NewChassisTracker(cfg.Wheel, cfg.Inverted)
	if err != nil {
		return nil, err
	}
	d.tracker = tracker
	return d, nil
}

// SetTargets queues new steering setpoints, in degrees, for all modules.
// Each must be in [0, 360]; nothing is queued if any is out of range.
func (d *Drive) SetTargets(targets chassis.PerModule[float64]) error {
	for m, t := range targets {
		if err := steering.ValidateSetpoint(t); err != nil {
			return errors.Wrapf(err, "module %v", chassis.Module(m))
		}
	}
	d.controlLock.Lock()
	defer d.controlLock.Unlock()
	d.targets = &targets
	return nil
}

// SetPosition relocalises the chassis at the next tick.  The heading persists:
// later gyro movement is applied relative to it.
func (d *Drive) SetPosition(x, y, heading float64) {
	d.controlLock.Lock()
	defer d.controlLock.Unlock()
	d.forcedPosition = &pose.Pose{Angle: heading, X: x, Y: y}
	d.resetPosition = false
}

func (d *Drive) ResetPosition() {
	d.controlLock.Lock()
	defer d.controlLock.Unlock()
	d.resetPosition = true
	d.forcedPosition = nil
}

// Snapshot returns the most recently published tick, or nil before the
// first one.
func (d *Drive) Snapshot() *Snapshot {
	return d.snapshot.Load()
}

// Step runs one tick synchronously.
func (d *Drive) Step(now time.Time) error {
	reading, err := d.encoders.ReadCounts()
	if err != nil {
		d.stopSteering()
		return errors.Wrap(err, "failed to read encoders")
	}

	// Grab any pending requests.
	d.controlLock.Lock()
	c := d.controls
	d.controls = controls{}
	d.controlLock.Unlock()

	for m, ctl := range d.steer {
		ctl.Update(reading.Steer[m])
	}
	if c.targets != nil {
		for m, ctl := range d.steer {
			// Already validated by SetTargets.
			_ = ctl.SetSetpoint(c.targets[m])
		}
	}

	snap := &Snapshot{Time: now, Tick: d.tick}
	for m, ctl := range d.steer {
		cmd := ctl.Calculate()
		if math.IsNaN(cmd) {
			cmd = 0
		}
		cmd = steering.Clamp(cmd, -1, 1)
		snap.Steering[m] = ctl.Current()
		snap.Commands[m] = cmd
		snap.Outputs[m] = cmd * ctl.Direction() * d.cfg.MaxCommand
		snap.States[m] = ctl.State()
	}
	if err := d.output.SetSteering(snap.Outputs); err != nil {
		fmt.Println("SD: failed to set steering:", err)
	}

	if c.resetPosition {
		d.tracker.Reset()
	}
	d.tracker.Update(odometry.Sample{
		Time:     now,
		Drive:    reading.Drive,
		Steering: snap.Steering,
		Heading:  d.heading.HeadingDegrees(),
	})
	if c.forcedPosition != nil {
		p := *c.forcedPosition
		d.tracker.Set(p.X, p.Y, p.Angle)
	}
	snap.Position = d.tracker.Position()
	snap.Velocity = d.tracker.Velocity()
	snap.Corners = chassis.Resolve(d.cfg.Geometry, snap.Position)

	d.snapshot.Store(snap)
	d.tick++
	return nil
}

// Loop steps the drive every Interval until ctx is done, then stops the
// steering motors.
func (d *Drive) Loop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer fmt.Println("SD: drive loop exited")
	defer d.stopSteering()

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	var lastLoopStart = time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if loopTime := now.Sub(lastLoopStart); loopTime > 2*d.cfg.Interval {
				fmt.Printf("SD: slow tick %v (target %v)\n", loopTime, d.cfg.Interval)
			}
			lastLoopStart = now
			if err := d.Step(now); err != nil {
				fmt.Println("SD: tick skipped:", err)
			}
		}
	}
}

func (d *Drive) stopSteering() {
	if err := d.output.SetSteering(chassis.PerModule[float64]{}); err != nil {
		fmt.Println("SD: failed to stop steering:", err)
	}
}

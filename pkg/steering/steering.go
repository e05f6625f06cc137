// Package steering drives a swerve module's steering motor toward a target
// heading using an encoder whose count wraps every revolution.
//
// A Controller is owned by a single goroutine: Update with the tick's
// encoder count, then read Calculate.  None of the methods block.
package steering

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

var (
	ErrInvalidCPR         = errors.New("counts per revolution must be positive")
	ErrSetpointOutOfRange = errors.New("setpoint must be in [0, 360]")
)

// Curve shapes the remaining/total ratio before it is returned by Calculate.
type Curve func(ratio float64) float64

// Identity is the default Curve.
//
// TODO: replace with the real shaping function once the intended response
// near the setpoint (softer or more aggressive) has been agreed.
func Identity(ratio float64) float64 { return ratio }

type Config struct {
	// CPR is the number of encoder counts in one revolution of the module.
	CPR int
	// Curve defaults to Identity.
	Curve Curve
}

type State int

const (
	Idle State = iota
	Seeking
	AtTarget
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Seeking:
		return "seeking"
	case AtTarget:
		return "at-target"
	}
	return "unknown"
}

type Controller struct {
	cpr             int64
	degreesPerCount float64
	curve           Curve

	current  float64
	setpoint float64
	original float64
	haveGoal bool
}

func New(cfg Config) (*Controller, error) {
	if cfg.CPR <= 0 {
		return nil, errors.Wrapf(ErrInvalidCPR, "cpr=%d", cfg.CPR)
	}
	curve := cfg.Curve
	if curve == nil {
		curve = Identity
	}
	return &Controller{
		cpr:             int64(cfg.CPR),
		degreesPerCount: 360 / float64(cfg.CPR),
		curve:           curve,
	}, nil
}

// Update records the module position from a raw encoder count.  The count is
// wrapped to within one revolution, keeping its sign, so Current is always
// in (-360, 360).
func (c *Controller) Update(count int64) {
	c.current = float64(count%c.cpr) * c.degreesPerCount
}

// SetSetpoint sets a new target heading in degrees and anchors the command
// ratio at the current position.  360 is accepted as the wrapped alias of 0;
// anything outside [0, 360] is rejected rather than normalised.
func (c *Controller) SetSetpoint(target float64) error {
	if err := ValidateSetpoint(target); err != nil {
		return err
	}
	c.setpoint = target
	c.original = c.current
	c.haveGoal = true
	return nil
}

func ValidateSetpoint(target float64) error {
	if math.IsNaN(target) || target < 0 || target > 360 {
		return errors.Wrapf(ErrSetpointOutOfRange, "setpoint %v", target)
	}
	return nil
}

// effectiveSetpoint resolves 360 to 0 when the module is in the lower half
// turn, since both name the same physical heading.
func (c *Controller) effectiveSetpoint() float64 {
	if c.current <= 180 && c.setpoint == 360 {
		return 0
	}
	return c.setpoint
}

// Calculate returns the steering command: the fraction of the original
// distance to the setpoint that is still left to travel, passed through the
// curve.  It is 1 when the setpoint was issued, trends to 0 on approach, and
// is 0 whenever the setpoint was issued on target.  On overshoot it can
// leave [-1, 1]; clamp before driving a motor.
func (c *Controller) Calculate() float64 {
	if !c.haveGoal {
		return 0
	}
	sp := c.effectiveSetpoint()
	remaining := c.current - sp
	total := c.original - sp
	if total == 0 {
		return 0
	}
	return c.curve(remaining / total)
}

// Direction is the sign of travel from the anchor toward the setpoint: +1 when
// the module must turn towards larger angles, -1 towards smaller ones and 0
// when there is nothing to do.  Multiply the clamped command by it to get a
// signed motor output.
func (c *Controller) Direction() float64 {
	if !c.haveGoal {
		return 0
	}
	sp := c.effectiveSetpoint()
	switch {
	case sp > c.original:
		return 1
	case sp < c.original:
		return -1
	}
	return 0
}

func (c *Controller) State() State {
	if !c.haveGoal {
		return Idle
	}
	sp := c.effectiveSetpoint()
	if c.current == sp || c.original == sp {
		return AtTarget
	}
	return Seeking
}

func (c *Controller) Current() float64         { return c.current }
func (c *Controller) Setpoint() float64        { return c.setpoint }
func (c *Controller) Original() float64        { return c.original }
func (c *Controller) DegreesPerCount() float64 { return c.degreesPerCount }

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Float](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

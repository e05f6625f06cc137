// Package odometry turns wheel encoder counts into distance and chassis
// position estimates.  Trackers are owned by the control loop goroutine and
// are not safe for concurrent use.
package odometry

import (
	"math"

	"github.com/pkg/errors"

	"github.com/tigerbot-team/tigerbot/swerve/pkg/pose"
)

var (
	ErrInvalidCPR      = errors.New("counts per revolution must be positive")
	ErrInvalidDiameter = errors.New("wheel diameter must be positive and finite")
)

// WheelConfig describes a drive wheel and its encoder.
type WheelConfig struct {
	CPR      int
	Diameter float64 // inches
	Inverted bool
}

func (c WheelConfig) Validate() error {
	if c.CPR <= 0 {
		return errors.Wrapf(ErrInvalidCPR, "cpr=%d", c.CPR)
	}
	if !(c.Diameter > 0) || math.IsInf(c.Diameter, 1) {
		return errors.Wrapf(ErrInvalidDiameter, "diameter=%v", c.Diameter)
	}
	return nil
}

// Tracker is the part of the tracker contract shared by the per-wheel and
// chassis trackers.
type Tracker interface {
	Reset()
	Set(x, y, angle float64)
	Position() pose.Pose
}

// DistanceTracker converts one wheel's encoder counts into inches travelled.
type DistanceTracker struct {
	cpr           int
	diameter      float64
	circumference float64
	countsPerInch float64
	inverted      bool

	count  int64
	offset int64
}

func NewDistanceTracker(cfg WheelConfig) (*DistanceTracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	circumference := math.Pi * cfg.Diameter
	return &DistanceTracker{
		cpr:           cfg.CPR,
		diameter:      cfg.Diameter,
		circumference: circumference,
		countsPerInch: float64(cfg.CPR) / circumference,
		inverted:      cfg.Inverted,
	}, nil
}

// Inches converts a count to inches.  It ignores the offset and the last
// recorded count.
func (d *DistanceTracker) Inches(count int64) float64 {
	return float64(count) / d.countsPerInch
}

// Update records the latest raw count from the encoder.
func (d *DistanceTracker) Update(count int64) {
	if d.inverted {
		count = -count
	}
	d.count = count
}

// Distance is the distance travelled since the last re-zero.
func (d *DistanceTracker) Distance() float64 {
	return d.Inches(d.count + d.offset)
}

// Zero sets the offset so that Distance reads 0 at the current count.
func (d *DistanceTracker) Zero() {
	d.offset = -d.count
}

func (d *DistanceTracker) SetOffset(offset int64) { d.offset = offset }
func (d *DistanceTracker) Offset() int64          { return d.offset }
func (d *DistanceTracker) Count() int64           { return d.count }
func (d *DistanceTracker) CountsPerInch() float64 { return d.countsPerInch }
func (d *DistanceTracker) Circumference() float64 { return d.circumference }

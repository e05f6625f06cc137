package encoders

import (
	"math"
	"sync"
	"time"

	"github.com/tigerbot-team/tigerbot/swerve/pkg/chassis"
)

// Sim is a simulated drivetrain for benches and tests.  Steering motor
// outputs in [-1, 1] move the steering encoders by SteerCountsPerTick at full
// output; drive encoders advance by DriveCountsPerTick on every read.
type Sim struct {
	SteerCountsPerTick float64
	DriveCountsPerTick int64
	Interval           time.Duration

	lock  sync.Mutex
	clock time.Time
	steer chassis.PerModule[float64]
	drive chassis.PerModule[int64]
}

var _ Interface = (*Sim)(nil)

func NewSim(steerCountsPerTick float64, driveCountsPerTick int64, interval time.Duration) *Sim {
	return &Sim{
		SteerCountsPerTick: steerCountsPerTick,
		DriveCountsPerTick: driveCountsPerTick,
		Interval:           interval,
		clock:              time.Unix(0, 0),
	}
}

func (s *Sim) ReadCounts() (Reading, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.clock = s.clock.Add(s.Interval)
	r := Reading{Time: s.clock, Drive: s.drive}
	for m, v := range s.steer {
		r.Steer[m] = int64(math.Round(v))
		s.drive[m] += s.DriveCountsPerTick
	}
	return r, nil
}

// SetSteering applies one tick of steering motor output.
func (s *Sim) SetSteering(outputs chassis.PerModule[float64]) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for m, out := range outputs {
		s.steer[m] += out * s.SteerCountsPerTick
	}
	return nil
}

// SetSteerCounts places the steering encoders at the given counts.
func (s *Sim) SetSteerCounts(counts chassis.PerModule[int64]) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for m, c := range counts {
		s.steer[m] = float64(c)
	}
}

func (s *Sim) Close() error {
	return nil
}

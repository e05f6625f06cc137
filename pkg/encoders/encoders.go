// Package encoders reads the steering and drive encoder counts of the four
// swerve modules.
package encoders

import (
	"time"

	"github.com/tigerbot-team/tigerbot/swerve/pkg/chassis"
)

// Reading is one snapshot of all eight encoders, as counts since start up.
type Reading struct {
	Time  time.Time
	Steer chassis.PerModule[int64]
	Drive chassis.PerModule[int64]
}

type Interface interface {
	ReadCounts() (Reading, error)
	Close() error
}

// NumChannels is the number of counters on the encoder board: four steering
// encoders followed by four drive encoders, both in chassis.Module order.
const NumChannels = 2 * chassis.NumModules

// Accumulator unwraps the board's free-running 16-bit counters into 64-bit
// totals by summing the signed delta between polls.  The counters must not
// move more than half their range between polls.
type Accumulator struct {
	doneFirstPoll bool
	lastRawValues [NumChannels]int16

	accumulator [NumChannels]int64
}

func (a *Accumulator) Add(raw [NumChannels]int16) {
	if a.doneFirstPoll {
		for ch, newV := range raw {
			delta := newV - a.lastRawValues[ch]
			a.accumulator[ch] += int64(delta)
		}
	}
	a.lastRawValues = raw
	a.doneFirstPoll = true
}

func (a *Accumulator) Reading(now time.Time) Reading {
	r := Reading{Time: now}
	for m := 0; m < chassis.NumModules; m++ {
		r.Steer[m] = a.accumulator[m]
		r.Drive[m] = a.accumulator[chassis.NumModules+m]
	}
	return r
}

func (a *Accumulator) Zero() {
	a.accumulator = [NumChannels]int64{}
}

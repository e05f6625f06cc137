package pca9685

import (
	"fmt"

	"github.com/tigerbot-team/tigerbot/swerve/pkg/chassis"
)

// SteeringServos turns signed steering outputs into pulses for continuous
// rotation servos, one port per module.
type SteeringServos struct {
	board    Interface
	ports    chassis.PerModule[int]
	inverted chassis.PerModule[bool]
}

func NewSteeringServos(board Interface, ports chassis.PerModule[int], inverted chassis.PerModule[bool]) *SteeringServos {
	return &SteeringServos{board: board, ports: ports, inverted: inverted}
}

// SetSteering maps each output in [-1, 1] to a servo value in [0, 1].  Every
// module is written even if an earlier one fails; the first error is
// returned.
func (s *SteeringServos) SetSteering(outputs chassis.PerModule[float64]) error {
	var firstErr error
	for m, out := range outputs {
		out = min(max(out, -1), 1)
		if s.inverted[m] {
			out = -out
		}
		if err := s.board.SetServo(s.ports[m], (out+1)/2); err != nil {
			fmt.Printf("PCA: failed to set %v steering: %v\n", chassis.Module(m), err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *SteeringServos) Close() error {
	return s.board.Close()
}

// Dummy is a board that accepts and discards everything.
func Dummy() Interface {
	return &dummyServo{}
}

type dummyServo struct {
}

func (*dummyServo) SetServo(port int, value float64) error {
	if port < 0 || port >= NumPorts {
		return ErrBadPort
	}
	return nil
}

func (*dummyServo) Close() error {
	return nil
}

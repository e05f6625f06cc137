package pca9685

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerbot-team/tigerbot/swerve/pkg/chassis"
)

type write struct {
	reg byte
	buf []byte
}

type fakeDev struct {
	writes []write
	fail   bool
	closed bool
}

func (f *fakeDev) WriteReg(reg byte, buf []byte) error {
	if f.fail {
		return errors.New("nack")
	}
	f.writes = append(f.writes, write{reg, append([]byte(nil), buf...)})
	return nil
}

func (f *fakeDev) Close() error {
	f.closed = true
	return nil
}

func pulse(w write) int {
	return int(w.buf[2]) | int(w.buf[3])<<8
}

func TestConfigure(t *testing.T) {
	dev := &fakeDev{}
	p := &PCA9685{dev: dev}
	require.NoError(t, p.Configure())
	require.Len(t, dev.writes, 4)
	assert.Equal(t, byte(RegPreScale), dev.writes[1].reg)
	assert.Equal(t, []byte{0x81}, dev.writes[3].buf)

	dev.fail = true
	assert.Error(t, p.Configure())
}

func TestSetServoRange(t *testing.T) {
	dev := &fakeDev{}
	p := &PCA9685{dev: dev}

	require.NoError(t, p.SetServo(3, 0))
	require.NoError(t, p.SetServo(3, 1))
	require.NoError(t, p.SetServo(3, 7)) // clamped
	require.Len(t, dev.writes, 3)

	assert.Equal(t, byte(RegLEDBase+12), dev.writes[0].reg)
	assert.Equal(t, int(ServoMinPWM), pulse(dev.writes[0]))
	assert.Equal(t, int(ServoMaxPWM), pulse(dev.writes[1]))
	assert.Equal(t, pulse(dev.writes[1]), pulse(dev.writes[2]))

	assert.ErrorIs(t, p.SetServo(16, 0.5), ErrBadPort)
	assert.ErrorIs(t, p.SetServo(-1, 0.5), ErrBadPort)
	assert.Len(t, dev.writes, 3)

	require.NoError(t, p.Close())
	assert.True(t, dev.closed)
}

type servoCall struct {
	port  int
	value float64
}

type fakeBoard struct {
	calls   []servoCall
	badPort int
}

func (f *fakeBoard) SetServo(port int, value float64) error {
	if port == f.badPort {
		return ErrBadPort
	}
	f.calls = append(f.calls, servoCall{port, value})
	return nil
}

func (f *fakeBoard) Close() error { return nil }

func TestSteeringServos(t *testing.T) {
	board := &fakeBoard{badPort: -1}
	s := NewSteeringServos(board,
		chassis.PerModule[int]{4, 5, 6, 7},
		chassis.PerModule[bool]{false, true, false, false})

	require.NoError(t, s.SetSteering(chassis.PerModule[float64]{1, 1, -0.5, 3}))
	assert.Equal(t, []servoCall{{4, 1}, {5, 0}, {6, 0.25}, {7, 1}}, board.calls)

	board.calls = nil
	require.NoError(t, s.SetSteering(chassis.PerModule[float64]{}))
	assert.Equal(t, []servoCall{{4, 0.5}, {5, 0.5}, {6, 0.5}, {7, 0.5}}, board.calls, "zero output is centre pulse")
}

func TestSteeringServosWritesAllOnError(t *testing.T) {
	board := &fakeBoard{badPort: 5}
	s := NewSteeringServos(board, chassis.PerModule[int]{4, 5, 6, 7}, chassis.PerModule[bool]{})

	err := s.SetSteering(chassis.PerModule[float64]{})
	assert.ErrorIs(t, err, ErrBadPort)
	assert.Len(t, board.calls, 3)
}

func TestDummy(t *testing.T) {
	d := Dummy()
	assert.NoError(t, d.SetServo(0, 0.5))
	assert.ErrorIs(t, d.SetServo(20, 0.5), ErrBadPort)
	assert.NoError(t, d.Close())
}

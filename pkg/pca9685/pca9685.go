// Package pca9685 drives the PCA9685 16 channel PWM board that the steering
// servos hang off.
package pca9685

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/io/i2c"
)

const (
	DefaultDevice = "/dev/i2c-1"
	DefaultAddr   = 0x40

	NumPorts = 16

	RegMode1 = 0x00
	RegMode2 = 0x01

	// Each PWM output has two 16-bit (low byte first) registers.
	// First register is the on time, second is the off time.
	RegLEDBase = 0x06

	RegPreScale = 0xfe // Pre-scaler for PWM frequency.
	RegTestMode = 0xff

	PWMPeriod = 20 * time.Millisecond

	ServoMinPulseDuration = 1000 * time.Microsecond
	ServoMaxPulseDuration = 2000 * time.Microsecond

	PWMMax = 4095

	ServoMinPWM = float64(PWMMax * ServoMinPulseDuration / PWMPeriod)
	ServoMaxPWM = float64(PWMMax * ServoMaxPulseDuration / PWMPeriod)
)

var ErrBadPort = errors.New("PWM port out of range")

type Interface interface {
	// SetServo sets the pulse width of a port: 0 is the shortest servo
	// pulse, 1 the longest and 0.5 the centre (stopped, for a continuous
	// rotation servo).
	SetServo(port int, value float64) error
	Close() error
}

// regWriter is satisfied by *i2c.Device.
type regWriter interface {
	WriteReg(reg byte, buf []byte) error
	Close() error
}

type PCA9685 struct {
	dev regWriter
}

var _ Interface = (*PCA9685)(nil)

// Open opens the board and configures it for 50Hz servo pulses.
func Open(deviceFile string, addr int) (*PCA9685, error) {
	dev, err := i2c.Open(&i2c.Devfs{Dev: deviceFile}, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open PCA9685 at %s/%#x", deviceFile, addr)
	}
	p := &PCA9685{dev: dev}
	if err := p.Configure(); err != nil {
		_ = dev.Close()
		return nil, err
	}
	return p, nil
}

func (p *PCA9685) Configure() error {
	// Put device to sleep.
	if err := p.dev.WriteReg(RegMode1, []byte{0x11}); err != nil {
		return errors.Wrap(err, "PCA9685 sleep")
	}
	// Update pre-scaler for 50Hz.
	if err := p.dev.WriteReg(RegPreScale, []byte{0x79}); err != nil {
		return errors.Wrap(err, "PCA9685 prescale")
	}
	// Trigger a reset
	if err := p.dev.WriteReg(RegMode1, []byte{0x01}); err != nil {
		return errors.Wrap(err, "PCA9685 reset")
	}
	// Required delay after reset.
	time.Sleep(1 * time.Millisecond)
	// Enable.
	return errors.Wrap(p.dev.WriteReg(RegMode1, []byte{0x81}), "PCA9685 enable")
}

func (p *PCA9685) SetServo(port int, value float64) error {
	value = min(max(value, 0), 1)
	return p.write(port, uint16(ServoMinPWM+value*(ServoMaxPWM-ServoMinPWM)))
}

func (p *PCA9685) write(port int, pwmValue uint16) error {
	if port < 0 || port >= NumPorts {
		return errors.Wrapf(ErrBadPort, "port %d", port)
	}
	addr := RegLEDBase + port*4
	return p.dev.WriteReg(byte(addr), []byte{0, 0, byte(pwmValue & 0xff), byte(pwmValue >> 8)})
}

func (p *PCA9685) Close() error {
	return p.dev.Close()
}

// Package config loads the robot description used to build the swerve
// drive: chassis geometry, wheel and encoder calibration, loop timing and
// which hardware to talk to.
package config

import (
	"io/ioutil"
	"math"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/tigerbot-team/tigerbot/swerve/pkg/chassis"
)

const DefaultPath = "/cfg/swerve.yaml"

const (
	EncodersI2C = "i2c"
	EncodersSim = "sim"

	GyroSerial = "serial"
	GyroFixed  = "fixed"
)

type Config struct {
	Chassis  ChassisConfig  `yaml:"chassis"`
	Wheel    WheelConfig    `yaml:"wheel"`
	Steering SteeringConfig `yaml:"steering"`
	Loop     LoopConfig     `yaml:"loop"`
	Encoders EncoderConfig  `yaml:"encoders"`
	Gyro     GyroConfig     `yaml:"gyro"`
	Servos   ServoConfig    `yaml:"servos"`
}

type ChassisConfig struct {
	TrackWidth float64 `yaml:"track_width"`
	WheelBase  float64 `yaml:"wheel_base"`
}

type WheelConfig struct {
	Diameter float64      `yaml:"diameter"`
	DriveCPR int          `yaml:"drive_cpr"`
	Inverted InvertedMask `yaml:"inverted"`
}

type InvertedMask struct {
	FrontLeft  bool `yaml:"front_left"`
	FrontRight bool `yaml:"front_right"`
	BackLeft   bool `yaml:"back_left"`
	BackRight  bool `yaml:"back_right"`
}

func (m InvertedMask) PerModule() chassis.PerModule[bool] {
	var p chassis.PerModule[bool]
	p[chassis.FrontLeft] = m.FrontLeft
	p[chassis.FrontRight] = m.FrontRight
	p[chassis.BackLeft] = m.BackLeft
	p[chassis.BackRight] = m.BackRight
	return p
}

type SteeringConfig struct {
	CPR int `yaml:"cpr"`
	// MaxCommand caps the magnitude of the steering motor output.
	MaxCommand float64 `yaml:"max_command"`
}

type LoopConfig struct {
	Interval string `yaml:"interval"` // duration string like "20ms"
}

type EncoderConfig struct {
	Kind    string `yaml:"kind"`
	Bus     string `yaml:"bus"`
	Address uint16 `yaml:"address"`
}

type GyroConfig struct {
	Kind    string  `yaml:"kind"`
	Device  string  `yaml:"device"`
	Baud    int     `yaml:"baud"`
	Heading float64 `yaml:"heading"` // used by the fixed source
}

// ServoConfig describes the PWM board driving the steering servos.  It is
// only used with the i2c encoders; the simulator steers itself.
type ServoConfig struct {
	Device   string       `yaml:"device"`
	Address  int          `yaml:"address"`
	Ports    PortMap      `yaml:"ports"`
	Inverted InvertedMask `yaml:"inverted"`
}

type PortMap struct {
	FrontLeft  int `yaml:"front_left"`
	FrontRight int `yaml:"front_right"`
	BackLeft   int `yaml:"back_left"`
	BackRight  int `yaml:"back_right"`
}

func (m PortMap) PerModule() chassis.PerModule[int] {
	var p chassis.PerModule[int]
	p[chassis.FrontLeft] = m.FrontLeft
	p[chassis.FrontRight] = m.FrontRight
	p[chassis.BackLeft] = m.BackLeft
	p[chassis.BackRight] = m.BackRight
	return p
}

func Default() *Config {
	return &Config{
		Chassis: ChassisConfig{
			TrackWidth: chassis.DefaultTrackWidth,
			WheelBase:  chassis.DefaultWheelBase,
		},
		Wheel: WheelConfig{
			Diameter: 4,
			DriveCPR: 1024,
		},
		Steering: SteeringConfig{
			CPR:        1024,
			MaxCommand: 1,
		},
		Loop: LoopConfig{Interval: "20ms"},
		Encoders: EncoderConfig{
			Kind:    EncodersI2C,
			Address: 0x42,
		},
		Gyro: GyroConfig{
			Kind:   GyroSerial,
			Device: "/dev/ttyAMA0",
			Baud:   115200,
		},
		Servos: ServoConfig{
			Device:  "/dev/i2c-1",
			Address: 0x40,
			Ports:   PortMap{FrontLeft: 0, FrontRight: 1, BackLeft: 2, BackRight: 3},
		},
	}
}

// Load reads a YAML config.  Anything the file leaves out keeps its default.
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config YAML")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) Validate() error {
	if _, err := c.Geometry(); err != nil {
		return err
	}
	if !(c.Wheel.Diameter > 0) || math.IsInf(c.Wheel.Diameter, 1) {
		return errors.Errorf("wheel.diameter must be positive, got %v", c.Wheel.Diameter)
	}
	if c.Wheel.DriveCPR <= 0 {
		return errors.Errorf("wheel.drive_cpr must be positive, got %d", c.Wheel.DriveCPR)
	}
	if c.Steering.CPR <= 0 {
		return errors.Errorf("steering.cpr must be positive, got %d", c.Steering.CPR)
	}
	if !(c.Steering.MaxCommand > 0 && c.Steering.MaxCommand <= 1) {
		return errors.Errorf("steering.max_command must be in (0, 1], got %v", c.Steering.MaxCommand)
	}
	if d, err := time.ParseDuration(c.Loop.Interval); err != nil {
		return errors.Wrap(err, "loop.interval")
	} else if d <= 0 {
		return errors.Errorf("loop.interval must be positive, got %v", d)
	}
	switch c.Encoders.Kind {
	case EncodersI2C, EncodersSim:
	default:
		return errors.Errorf("encoders.kind must be %q or %q, got %q", EncodersI2C, EncodersSim, c.Encoders.Kind)
	}
	if c.Encoders.Kind == EncodersI2C {
		if err := c.Servos.validate(); err != nil {
			return err
		}
	}
	switch c.Gyro.Kind {
	case GyroSerial:
		if c.Gyro.Device == "" || c.Gyro.Baud <= 0 {
			return errors.New("gyro.device and gyro.baud are required for the serial gyro")
		}
	case GyroFixed:
	default:
		return errors.Errorf("gyro.kind must be %q or %q, got %q", GyroSerial, GyroFixed, c.Gyro.Kind)
	}
	return nil
}

func (c *Config) Geometry() (chassis.Geometry, error) {
	return chassis.NewGeometry(c.Chassis.TrackWidth, c.Chassis.WheelBase)
}

// LoopInterval returns the parsed loop interval.  Only valid after Validate.
func (c *Config) LoopInterval() time.Duration {
	d, _ := time.ParseDuration(c.Loop.Interval)
	return d
}

func (s ServoConfig) validate() error {
	if s.Device == "" {
		return errors.New("servos.device is required with the i2c encoders")
	}
	seen := map[int]bool{}
	for m, port := range s.Ports.PerModule() {
		if port < 0 || port >= 16 {
			return errors.Errorf("servos.ports: %v port %d out of range", chassis.Module(m), port)
		}
		if seen[port] {
			return errors.Errorf("servos.ports: port %d used twice", port)
		}
		seen[port] = true
	}
	return nil
}

package swervedrive

import (
	"github.com/tigerbot-team/tigerbot/swerve/pkg/config"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/odometry"
)

// ConfigFrom builds the drive configuration from a loaded robot config.
func ConfigFrom(c *config.Config) (Config, error) {
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	g, err := c.Geometry()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Geometry: g,
		Wheel: odometry.WheelConfig{
			CPR:      c.Wheel.DriveCPR,
			Diameter: c.Wheel.Diameter,
		},
		Inverted:   c.Wheel.Inverted.PerModule(),
		SteerCPR:   c.Steering.CPR,
		MaxCommand: c.Steering.MaxCommand,
		Interval:   c.LoopInterval(),
	}, nil
}

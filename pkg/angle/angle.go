// Package angle holds the small amount of modulo arithmetic shared by the
// pose, steering and odometry code.  Nothing in here is applied implicitly:
// callers that need a canonical range normalise explicitly.
package angle

import "math"

const (
	RadiansPerDegree = math.Pi / 180
	DegreesPerRadian = 180 / math.Pi
)

// Normalize360 maps an angle of any magnitude into [0, 360).
func Normalize360(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		// -tiny + 360 can round up to exactly 360.
		d = 0
	}
	return d
}

// PlusMinus180 is an angle in degrees, stored as a value in range (-180, 180].
// All operations clamp their output into range.
type PlusMinus180 struct {
	float64
}

func (a PlusMinus180) Sub(b PlusMinus180) PlusMinus180 {
	return FromFloat(a.float64 - b.float64)
}

func (a PlusMinus180) AddFloat(f float64) PlusMinus180 {
	return FromFloat(a.float64 + f)
}

// Float returns the angle in degrees, range (-180, 180].
func (a PlusMinus180) Float() float64 {
	return a.float64
}

// FromFloat converts a float of any magnitude to a PlusMinus180 by calculating
// f mod 360 and shifting into range.
func FromFloat(f float64) PlusMinus180 {
	d := math.Mod(f, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return PlusMinus180{d}
}

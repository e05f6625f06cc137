// Package pose provides the (angle, x, y) value passed between the chassis,
// odometry and drive packages, plus the 2D rotation they are built on.
package pose

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tigerbot-team/tigerbot/swerve/pkg/angle"
)

// Pose is a position plus heading.  Angle is in degrees and is stored exactly
// as given; use Normalized if a [0, 360) heading is required.
type Pose struct {
	Angle float64
	X, Y  float64
}

// RadPose is the radian form of a Pose.
type RadPose struct {
	Angle float64
	X, Y  float64
}

func (p Pose) Radians() RadPose {
	return RadPose{Angle: p.Angle * angle.RadiansPerDegree, X: p.X, Y: p.Y}
}

func (r RadPose) Degrees() Pose {
	return Pose{Angle: r.Angle * angle.DegreesPerRadian, X: r.X, Y: r.Y}
}

// Normalized returns a copy of p with its angle mapped into [0, 360).
func (p Pose) Normalized() Pose {
	p.Angle = angle.Normalize360(p.Angle)
	return p
}

// Vec returns the position part of the pose.
func (p Pose) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// WithVec returns a copy of p moved to v, keeping its heading.
func (p Pose) WithVec(v r2.Vec) Pose {
	p.X, p.Y = v.X, v.Y
	return p
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.3f, %.3f) @ %.2f°", p.X, p.Y, p.Angle)
}

// Distance returns the euclidean distance between the positions of a and b.
func Distance(a, b Pose) float64 {
	return r2.Norm(r2.Sub(a.Vec(), b.Vec()))
}

// Rotate rotates point about center by angleDegrees (positive is
// anticlockwise).  Only the position moves; the result keeps point's heading.
// Any real angle is accepted.
func Rotate(center, point Pose, angleDegrees float64) Pose {
	theta := angleDegrees * angle.RadiansPerDegree
	return point.WithVec(r2.Rotate(point.Vec(), theta, center.Vec()))
}

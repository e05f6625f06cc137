package chassis

import "github.com/tigerbot-team/tigerbot/swerve/pkg/pose"

// Corners are the ground-contact poses of the four modules plus the chassis
// centre they were derived from.
type Corners struct {
	FrontRight, FrontLeft, BackRight, BackLeft pose.Pose
	Center                                     pose.Pose
}

// ByModule returns the wheel poses indexed by Module.
func (c Corners) ByModule() PerModule[pose.Pose] {
	var p PerModule[pose.Pose]
	p[FrontLeft] = c.FrontLeft
	p[FrontRight] = c.FrontRight
	p[BackLeft] = c.BackLeft
	p[BackRight] = c.BackRight
	return p
}

// Resolve computes where each wheel touches the ground for a chassis whose
// centre is at center, rotated by center.Angle degrees.  It is a pure
// function of its arguments and keeps no state: call it again whenever the
// pose changes.
func Resolve(g Geometry, center pose.Pose) Corners {
	h := g.TrackWidth / 2
	v := g.WheelBase / 2

	corner := func(dx, dy float64) pose.Pose {
		p := pose.Pose{Angle: center.Angle, X: center.X + dx, Y: center.Y + dy}
		return pose.Rotate(center, p, center.Angle)
	}

	return Corners{
		FrontRight: corner(h, v),
		FrontLeft:  corner(-h, v),
		BackRight:  corner(h, -v),
		BackLeft:   corner(-h, -v),
		Center:     center,
	}
}

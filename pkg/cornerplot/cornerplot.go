// Package cornerplot renders resolved chassis corners to an image, for
// eyeballing geometry and odometry output away from the robot.
package cornerplot

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"github.com/tigerbot-team/tigerbot/swerve/pkg/chassis"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/pose"
)

const (
	DefaultSize = 400
	wheelRadius = 4
)

type Options struct {
	// Size is the width and height of the image in pixels.
	Size int
	// Scale is pixels per unit of distance.  Zero picks a scale that fits
	// the chassis and the field origin.
	Scale float64
}

// Render draws the chassis outline through the four corners, the turning
// circle, a wheel marker at each corner and a tick towards the front.  The
// field origin is at the centre of the image with Y pointing up.
func Render(g chassis.Geometry, c chassis.Corners, opts Options) image.Image {
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}
	scale := opts.Scale
	if scale <= 0 {
		reach := math.Hypot(c.Center.X, c.Center.Y) + g.CentreToWheel()
		scale = 0.45 * float64(size) / reach
	}
	S := float64(size)
	toPixels := func(p pose.Pose) (float64, float64) {
		return S/2 + p.X*scale, S/2 - p.Y*scale
	}

	dc := gg.NewContext(size, size)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	// Field axes.
	dc.SetRGBA(1, 1, 1, 0.2)
	dc.SetLineWidth(1)
	dc.DrawLine(0, S/2, S, S/2)
	dc.DrawLine(S/2, 0, S/2, S)
	dc.Stroke()

	cx, cy := toPixels(c.Center)
	dc.SetRGBA(0, 0.6, 1, 0.5)
	dc.SetDash(4, 4)
	dc.DrawCircle(cx, cy, g.TurningCircleDiameter()/2*scale)
	dc.Stroke()
	dc.SetDash()

	dc.SetRGBA(1, 0.9, 0, 1)
	dc.SetLineWidth(2)
	for i, p := range []pose.Pose{c.FrontLeft, c.FrontRight, c.BackRight, c.BackLeft} {
		x, y := toPixels(p)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	dc.Stroke()

	// Heading tick from the centre to the middle of the front edge.
	fx, fy := toPixels(pose.Pose{
		X: (c.FrontLeft.X + c.FrontRight.X) / 2,
		Y: (c.FrontLeft.Y + c.FrontRight.Y) / 2,
	})
	dc.DrawLine(cx, cy, fx, fy)
	dc.Stroke()

	dc.SetRGB(1, 0.2, 0)
	for _, p := range c.ByModule() {
		x, y := toPixels(p)
		dc.DrawCircle(x, y, wheelRadius)
		dc.Fill()
	}
	return dc.Image()
}

func SavePNG(path string, g chassis.Geometry, c chassis.Corners, opts Options) error {
	img := Render(g, c, opts)
	if err := gg.SavePNG(path, img); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

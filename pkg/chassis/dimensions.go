package chassis

import (
	"math"

	"github.com/pkg/errors"
)

// Dimensions of the competition chassis, in inches.
const (
	DefaultTrackWidth = 20.0
	DefaultWheelBase  = 30.0
)

var ErrInvalidGeometry = errors.New("chassis geometry must be positive and finite")

// Geometry is the spacing between wheel centres: TrackWidth side to side,
// WheelBase front to back.  Build it with NewGeometry.
type Geometry struct {
	TrackWidth float64
	WheelBase  float64
}

func NewGeometry(trackWidth, wheelBase float64) (Geometry, error) {
	if !positiveFinite(trackWidth) {
		return Geometry{}, errors.Wrapf(ErrInvalidGeometry, "track width %v", trackWidth)
	}
	if !positiveFinite(wheelBase) {
		return Geometry{}, errors.Wrapf(ErrInvalidGeometry, "wheel base %v", wheelBase)
	}
	return Geometry{TrackWidth: trackWidth, WheelBase: wheelBase}, nil
}

func DefaultGeometry() Geometry {
	return Geometry{TrackWidth: DefaultTrackWidth, WheelBase: DefaultWheelBase}
}

// CentreToWheel is the distance from the chassis centre to any wheel centre.
func (g Geometry) CentreToWheel() float64 {
	return math.Hypot(g.TrackWidth/2, g.WheelBase/2)
}

// TurningCircleDiameter is the diameter of the circle the wheels trace when
// the chassis spins on the spot.
func (g Geometry) TurningCircleDiameter() float64 {
	return 2 * g.CentreToWheel()
}

func positiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 1)
}

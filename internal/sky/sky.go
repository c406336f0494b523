// Public domain.

// Package sky has equatorial positions and cone tests for catalog rows.
package sky

import (
	"fmt"
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/meeus/v3/angle"
	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"
)

// Position is a J2000 equatorial position.
type Position struct {
	RA  unit.RA
	Dec unit.Angle
}

// FromDeg constructs a Position from catalog ra, dec in degrees.
func FromDeg(ra, dec float64) Position {
	return Position{unit.RAFromDeg(ra), unit.AngleFromDeg(dec)}
}

// String formats the position sexagesimally.
func (p Position) String() string {
	return fmt.Sprintf("%.2d %+.1d", sexa.FmtRA(p.RA), sexa.FmtAngle(p.Dec))
}

// Cart returns the unit vector toward p.
func (p Position) Cart() coord.Cart {
	sr, cr := math.Sincos(p.RA.Rad())
	sd, cd := math.Sincos(p.Dec.Rad())
	return coord.Cart{X: cr * cd, Y: sr * cd, Z: sd}
}

// Sep returns the angular separation of two positions.
func Sep(a, b Position) unit.Angle {
	return angle.Sep(unit.Angle(a.RA), a.Dec, unit.Angle(b.RA), b.Dec)
}

// Cone is a circular region of sky.
type Cone struct {
	Center Position
	Radius unit.Angle

	c    coord.Cart
	cosR float64
}

// NewCone constructs a cone.  Radius is clamped to [0, 180°].
func NewCone(center Position, radius unit.Angle) *Cone {
	radius = unit.Angle(math.Max(0, math.Min(math.Pi, radius.Rad())))
	return &Cone{
		Center: center,
		Radius: radius,
		c:      center.Cart(),
		cosR:   math.Cos(radius.Rad()),
	}
}

// Contains reports whether p lies within the cone.
func (c *Cone) Contains(p Position) bool {
	v := p.Cart()
	return c.c.Dot(&v) >= c.cosR
}

// Within returns indexes of positions inside the cone.
func (c *Cone) Within(ps []Position) []int {
	var in []int
	for i, p := range ps {
		if c.Contains(p) {
			in = append(in, i)
		}
	}
	return in
}

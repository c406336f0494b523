// Public domain.

package sky_test

import (
	"testing"

	"github.com/soniakeys/unit"
	"github.com/stretchr/testify/assert"

	"github.com/soniakeys/sdssphot/internal/sky"
)

func TestSep(t *testing.T) {
	a := sky.FromDeg(180, 0)
	b := sky.FromDeg(181, 0)
	assert.InDelta(t, 1, sky.Sep(a, b).Deg(), 1e-9)

	p := sky.FromDeg(10, 89)
	q := sky.FromDeg(190, 89)
	assert.InDelta(t, 2, sky.Sep(p, q).Deg(), 1e-9)
}

func TestCone(t *testing.T) {
	c := sky.NewCone(sky.FromDeg(150, 2), unit.AngleFromMin(30))
	ps := []sky.Position{
		sky.FromDeg(150, 2),
		sky.FromDeg(150.3, 2.3),
		sky.FromDeg(150, 2.6),
		sky.FromDeg(330, -2),
	}
	assert.Equal(t, []int{0, 1}, c.Within(ps))
	for _, p := range ps {
		assert.Equal(t, sky.Sep(c.Center, p).Rad() <= c.Radius.Rad(), c.Contains(p), "%v", p)
	}
}

func TestString(t *testing.T) {
	s := sky.FromDeg(150, -2.5).String()
	assert.NotEmpty(t, s)
	assert.Contains(t, s, "-")
}

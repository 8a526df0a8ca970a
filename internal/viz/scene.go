package viz

import (
	"math"

	"github.com/san-kum/musclesim/internal/physics"
)

// Scene maps joint geometry onto a canvas. The view is centred on the joint
// and spans one link length plus a margin in every direction.
type Scene struct {
	Joint  physics.Joint
	Limits physics.Limits
}

func NewScene(joint physics.Joint, limits physics.Limits) *Scene {
	return &Scene{Joint: joint, Limits: limits}
}

func (s *Scene) project(c *Canvas, x, y float64) (int, int) {
	cw, ch := c.PixelSize()
	span := 2.3 * s.Joint.LinkLength
	scale := math.Min(float64(cw), float64(ch)) / span
	cx, cy := s.Joint.LinkLength, 0.0
	px := float64(cw)/2 + (x-cx)*scale
	py := float64(ch)/2 - (y-cy)*scale
	return int(math.Round(px)), int(math.Round(py))
}

// Draw clears c and draws the configuration at angle theta: both links as
// solid lines, the muscle from the origin to its insertion as a dashed line,
// and short dashed rays marking the joint limits.
func (s *Scene) Draw(c *Canvas, theta float64) {
	c.Clear()
	L := s.Joint.LinkLength
	x1, y1, x2, y2, xm, ym := s.Joint.Positions(theta)

	ox, oy := s.project(c, 0, 0)
	jx, jy := s.project(c, x1, y1)
	tx, ty := s.project(c, x2, y2)
	mx, my := s.project(c, xm, ym)

	for _, lim := range []float64{s.Limits.Min, s.Limits.Max} {
		ex, ey := s.project(c, x1+0.35*L*math.Cos(lim), y1+0.35*L*math.Sin(lim))
		c.DrawDashed(jx, jy, ex, ey, 1, 2)
	}

	c.DrawLine(ox, oy, jx, jy)
	c.DrawLine(jx, jy, tx, ty)
	c.DrawDashed(ox, oy, mx, my, 3, 2)

	c.Dot(ox, oy, 1)
	c.Dot(jx, jy, 1)
	c.Dot(tx, ty, 1)
}

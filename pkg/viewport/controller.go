// Package viewport owns the pan/zoom transform of a mounted graph.
//
// Every change, whether it comes from a gesture, a button or an animation
// frame, is funnelled through one setter that rejects non-finite transforms
// and scales outside the configured extent. Programmatic changes animate;
// gestures apply immediately and interrupt any running animation.
package viewport

import (
	"math"
	"time"

	"github.com/vanderheijden86/mindmap/pkg/debug"
)

// Options configures a Controller.
type Options struct {
	MinScale float64
	MaxScale float64

	ZoomDuration   time.Duration
	ResetDuration  time.Duration
	CenterDuration time.Duration
	CenterScale    float64

	// WheelSensitivity converts a wheel delta in pixels to a power-of-two
	// zoom step.
	WheelSensitivity float64
}

// DefaultOptions returns the stock zoom extent and animation timings.
func DefaultOptions() Options {
	return Options{
		MinScale:         0.1,
		MaxScale:         3,
		ZoomDuration:     300 * time.Millisecond,
		ResetDuration:    500 * time.Millisecond,
		CenterDuration:   750 * time.Millisecond,
		CenterScale:      1.5,
		WheelSensitivity: 0.002,
	}
}

type animation struct {
	from, to Transform
	start    time.Time
	duration time.Duration
	path     func(float64) view
}

// Controller holds the transform for one viewport.
type Controller struct {
	opts          Options
	width, height float64

	t    Transform
	anim *animation
	now  func() time.Time
}

// New creates a controller for a viewport of the given size, starting at the
// identity transform.
func New(width, height float64, opts Options) *Controller {
	return &Controller{
		opts:   opts,
		width:  width,
		height: height,
		t:      Identity,
		now:    time.Now,
	}
}

// SetClock replaces the time source used to start animations.
func (c *Controller) SetClock(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// SetSize updates the viewport dimensions.
func (c *Controller) SetSize(width, height float64) {
	c.width, c.height = width, height
}

// Size returns the viewport dimensions.
func (c *Controller) Size() (float64, float64) {
	return c.width, c.height
}

// Options returns the controller's configuration.
func (c *Controller) Options() Options { return c.opts }

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.t }

// Target returns where the transform is heading: the end of the running
// animation, or the current transform when idle.
func (c *Controller) Target() Transform {
	if c.anim != nil {
		return c.anim.to
	}
	return c.t
}

// Animating reports whether a transition is in flight.
func (c *Controller) Animating() bool { return c.anim != nil }

// InRange reports whether k is an allowed scale.
func (c *Controller) InRange(k float64) bool {
	return !math.IsNaN(k) && k >= c.opts.MinScale && k <= c.opts.MaxScale
}

// set is the single entry point for transform changes.
func (c *Controller) set(t Transform) bool {
	if !t.finite() || !c.InRange(t.K) {
		debug.Log("viewport: rejected transform %s", t)
		return false
	}
	c.t = t
	return true
}

func (c *Controller) clamp(k float64) float64 {
	return math.Max(c.opts.MinScale, math.Min(c.opts.MaxScale, k))
}

// SetTransform jumps to t without animating. It reports whether t was
// accepted.
func (c *Controller) SetTransform(t Transform) bool {
	c.anim = nil
	return c.set(t)
}

// animate starts a transition from the current transform to `to`.
func (c *Controller) animate(to Transform, d time.Duration) bool {
	if !to.finite() || !c.InRange(to.K) {
		debug.Log("viewport: rejected transition to %s", to)
		return false
	}
	if d <= 0 {
		c.anim = nil
		return c.set(to)
	}
	px, py := c.width/2, c.height/2
	w := math.Max(c.width, c.height)
	if w <= 0 {
		w = 1
	}
	from := c.t
	ax, ay := from.Invert(px, py)
	bx, by := to.Invert(px, py)
	c.anim = &animation{
		from:     from,
		to:       to,
		start:    c.now(),
		duration: d,
		path:     zoomPath(view{ax, ay, w / from.K}, view{bx, by, w / to.K}),
	}
	return true
}

// Advance moves a running animation to time now. It reports whether the
// transform changed.
func (c *Controller) Advance(now time.Time) bool {
	a := c.anim
	if a == nil {
		return false
	}
	t := float64(now.Sub(a.start)) / float64(a.duration)
	if t >= 1 {
		c.anim = nil
		return c.set(a.to)
	}
	if t < 0 {
		t = 0
	}
	v := a.path(cubicInOut(t))
	w := math.Max(c.width, c.height)
	if w <= 0 {
		w = 1
	}
	// the path may dip below either endpoint's scale; stay inside the extent
	k := c.clamp(w / v.w)
	px, py := c.width/2, c.height/2
	return c.set(Transform{X: px - v.ux*k, Y: py - v.uy*k, K: k})
}

// Finish jumps a running animation to its end.
func (c *Controller) Finish() {
	if a := c.anim; a != nil {
		c.anim = nil
		c.set(a.to)
	}
}

// Interrupt cancels a running animation, leaving the transform where it is.
func (c *Controller) Interrupt() {
	c.anim = nil
}

// ZoomBy multiplies the scale by factor about the viewport centre. When an
// animation is running the factor applies to its target. If the resulting
// scale is outside the extent nothing happens and false is returned.
func (c *Controller) ZoomBy(factor float64) bool {
	base := c.Target()
	k := base.K * factor
	if !c.InRange(k) {
		return false
	}
	return c.animate(base.Scale(k, c.width/2, c.height/2), c.opts.ZoomDuration)
}

// ResetView animates back to the identity transform.
func (c *Controller) ResetView() bool {
	return c.animate(Identity, c.opts.ResetDuration)
}

// CenterOn animates so the simulation point (x, y) sits in the middle of the
// viewport at the centring scale.
func (c *Controller) CenterOn(x, y float64) bool {
	k := c.opts.CenterScale
	return c.animate(Transform{X: c.width/2 - x*k, Y: c.height/2 - y*k, K: k}, c.opts.CenterDuration)
}

// Pan translates by (dx, dy) screen pixels.
func (c *Controller) Pan(dx, dy float64) bool {
	c.Interrupt()
	return c.set(c.t.Translate(dx, dy))
}

// Wheel zooms about the screen point (px, py) for a wheel movement of deltaY
// pixels. Unlike ZoomBy the scale is clamped to the extent rather than the
// gesture being dropped.
func (c *Controller) Wheel(px, py, deltaY float64) bool {
	c.Interrupt()
	k := c.clamp(c.t.K * math.Pow(2, -deltaY*c.opts.WheelSensitivity))
	if k == c.t.K {
		return false
	}
	return c.set(c.t.Scale(k, px, py))
}

// ToSimulation maps a screen point to simulation space.
func (c *Controller) ToSimulation(sx, sy float64) (float64, float64) {
	return c.t.Invert(sx, sy)
}

// ToScreen maps a simulation point to the screen.
func (c *Controller) ToScreen(x, y float64) (float64, float64) {
	return c.t.Apply(x, y)
}

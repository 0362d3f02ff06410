package viewport

import "math"

const (
	rho      = math.Sqrt2
	rho2     = 2.0
	rho4     = 4.0
	epsilon2 = 1e-12
)

// view is a camera in "centre and width" form: the simulation point at the
// middle of the screen and how much simulation space is visible across it.
type view struct {
	ux, uy, w float64
}

// zoomPath returns the smooth pan-and-zoom path between two views described
// by van Wijk and Nuij, "Smooth and efficient zooming and panning". The path
// zooms out while travelling so long pans stay readable.
func zoomPath(a, b view) func(t float64) view {
	dx, dy := b.ux-a.ux, b.uy-a.uy
	d2 := dx*dx + dy*dy

	if d2 < epsilon2 {
		s := math.Log(b.w/a.w) / rho
		return func(t float64) view {
			return view{a.ux + t*dx, a.uy + t*dy, a.w * math.Exp(rho*t*s)}
		}
	}

	d1 := math.Sqrt(d2)
	b0 := (b.w*b.w - a.w*a.w + rho4*d2) / (2 * a.w * rho2 * d1)
	b1 := (b.w*b.w - a.w*a.w - rho4*d2) / (2 * b.w * rho2 * d1)
	r0 := math.Log(math.Sqrt(b0*b0+1) - b0)
	r1 := math.Log(math.Sqrt(b1*b1+1) - b1)
	s := (r1 - r0) / rho
	coshr0 := math.Cosh(r0)
	return func(t float64) view {
		st := t * s
		u := a.w / (rho2 * d1) * (coshr0*math.Tanh(rho*st+r0) - math.Sinh(r0))
		return view{a.ux + u*dx, a.uy + u*dy, a.w * coshr0 / math.Cosh(rho*st+r0)}
	}
}

// cubicInOut eases t in [0,1].
func cubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

package mindmap

import (
	"time"

	"github.com/vanderheijden86/mindmap/pkg/interaction"
	"github.com/vanderheijden86/mindmap/pkg/layout"
	"github.com/vanderheijden86/mindmap/pkg/lookup"
	"github.com/vanderheijden86/mindmap/pkg/viewport"
)

// ViewOption configures a View.
type ViewOption func(*View)

// WithLayout adjusts the simulation options of every rebuild. fn receives the
// defaults for the current viewport size.
func WithLayout(fn func(*layout.Options)) ViewOption {
	return func(v *View) {
		v.tuneLayout = fn
	}
}

// WithViewport sets the viewport options.
func WithViewport(opts viewport.Options) ViewOption {
	return func(v *View) {
		v.vpOpts = opts
	}
}

// WithInteraction sets the pointer options.
func WithInteraction(opts interaction.Options) ViewOption {
	return func(v *View) {
		v.ixOpts = opts
	}
}

// WithPreservePositions carries node positions over when Load rebuilds the
// simulation. Off by default: each load lays the graph out from scratch.
func WithPreservePositions(on bool) ViewOption {
	return func(v *View) {
		v.preserve = on
	}
}

// WithTagDim sets the opacity of nodes outside an active tag filter.
func WithTagDim(dim float64) ViewOption {
	return func(v *View) {
		v.dim = dim
	}
}

// WithLoader sets the loader used for asynchronous tag and decoration
// lookups. Without one the Request methods return nil.
func WithLoader(l *lookup.Loader) ViewOption {
	return func(v *View) {
		v.loader = l
	}
}

// WithClock overrides the time source of viewport animations.
func WithClock(now func() time.Time) ViewOption {
	return func(v *View) {
		v.clock = now
	}
}

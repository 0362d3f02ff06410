package render

import "io"

// Surface is a drawing target a view is mounted on.
type Surface interface {
	Draw(Scene) error
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(Scene) error

// Draw calls f.
func (f SurfaceFunc) Draw(s Scene) error { return f(s) }

// SVGSurface writes every frame as an SVG document to W.
type SVGSurface struct {
	W       io.Writer
	Palette *Palette
}

// Draw implements Surface.
func (s SVGSurface) Draw(sc Scene) error {
	if s.Palette != nil {
		return WriteSVGWithPalette(s.W, sc, *s.Palette)
	}
	return WriteSVG(s.W, sc)
}

// PNGSurface writes every frame as a PNG image to W.
type PNGSurface struct {
	W       io.Writer
	Palette *Palette
}

// Draw implements Surface.
func (s PNGSurface) Draw(sc Scene) error {
	if s.Palette != nil {
		return WritePNGWithPalette(s.W, sc, *s.Palette)
	}
	return WritePNG(s.W, sc)
}

// Recorder keeps the most recent frame. It is useful for headless hosts and
// tests.
type Recorder struct {
	Last   Scene
	Frames int
}

// Draw implements Surface.
func (r *Recorder) Draw(s Scene) error {
	r.Last = s
	r.Frames++
	return nil
}

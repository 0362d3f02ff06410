package render

import (
	"fmt"
	"image/color"
)

// Palette is the colour scheme shared by the image backends. Colours are
// non-premultiplied so alpha can be faded independently.
type Palette struct {
	Background  color.NRGBA
	Edge        color.NRGBA
	EdgeActive  color.NRGBA
	Shadow      color.NRGBA
	Node        color.NRGBA
	NodeMessage color.NRGBA
	NodeStroke  color.NRGBA
	InnerRing   color.NRGBA
	Selected    color.NRGBA
	Hover       color.NRGBA
	Label       color.NRGBA
	Bookmark    color.NRGBA
	TagBadge    color.NRGBA
	TagText     color.NRGBA
	Placeholder color.NRGBA
}

// DefaultPalette is the dark theme of the desktop app.
var DefaultPalette = Palette{
	Background:  color.NRGBA{0x1a, 0x1a, 0x2e, 0xff},
	Edge:        color.NRGBA{0x99, 0x99, 0x99, 0x99},
	EdgeActive:  color.NRGBA{0xff, 0xd7, 0x00, 0xff},
	Shadow:      color.NRGBA{0x00, 0x00, 0x00, 0x4c},
	Node:        color.NRGBA{0x4a, 0x90, 0xe2, 0x4c},
	NodeMessage: color.NRGBA{0x80, 0x00, 0x80, 0x80},
	NodeStroke:  color.NRGBA{0xff, 0xff, 0xff, 0x33},
	InnerRing:   color.NRGBA{0xff, 0xff, 0xff, 0x1a},
	Selected:    color.NRGBA{0xff, 0xd7, 0x00, 0xff},
	Hover:       color.NRGBA{0xff, 0xff, 0xff, 0x99},
	Label:       color.NRGBA{0xff, 0xff, 0xff, 0xff},
	Bookmark:    color.NRGBA{0xff, 0xd7, 0x00, 0xff},
	TagBadge:    color.NRGBA{0x50, 0xe3, 0xc2, 0xe5},
	TagText:     color.NRGBA{0x50, 0xe3, 0xc2, 0xff},
	Placeholder: color.NRGBA{0xff, 0xff, 0xff, 0xff},
}

// css renders c as an rgba() value.
func css(c color.NRGBA) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)", c.R, c.G, c.B, float64(c.A)/255)
}

// fade scales the alpha of c by opacity.
func fade(c color.NRGBA, opacity float64) color.NRGBA {
	if opacity >= 1 {
		return c
	}
	if opacity < 0 {
		opacity = 0
	}
	c.A = uint8(float64(c.A) * opacity)
	return c
}

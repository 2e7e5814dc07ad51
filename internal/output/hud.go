package output

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Overlay collects diagnostic lines drawn over a preview image.
type Overlay struct {
	lines []string
}

func (o *Overlay) AddLine(format string, args ...any) {
	o.lines = append(o.lines, fmt.Sprintf(format, args...))
}

func (o *Overlay) Clear() {
	o.lines = o.lines[:0]
}

func (o *Overlay) Lines() []string {
	return o.lines
}

func (o *Overlay) Text() string {
	if len(o.lines) == 0 {
		return ""
	}
	return strings.Join(o.lines, "\n") + "\n"
}

// Draw renders the lines in the top left corner of img over a dark band so
// they stay readable on bright fog.
func (o *Overlay) Draw(img draw.Image) {
	if len(o.lines) == 0 {
		return
	}
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil()
	const margin = 4

	width := 0
	for _, line := range o.lines {
		width = max(width, font.MeasureString(face, line).Ceil())
	}
	band := image.Rect(0, 0, width+2*margin, lineHeight*len(o.lines)+2*margin).Intersect(img.Bounds())
	draw.Draw(img, band, image.NewUniform(color.RGBA{A: 160}), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
	}
	ascent := face.Metrics().Ascent.Ceil()
	for i, line := range o.lines {
		d.Dot = fixed.P(margin, margin+ascent+i*lineHeight)
		d.DrawString(line)
	}
}

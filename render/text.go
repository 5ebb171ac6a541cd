package render

import (
	"image"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var face font.Face = basicfont.Face7x13

func lineHeight() int {
	return face.Metrics().Height.Ceil()
}

func textWidth(s string) int {
	return font.MeasureString(face, s).Ceil()
}

// textImage renders black text on white, one line per "\n". Empty lines keep
// their height.
func textImage(s string) *image.NRGBA {
	lines := strings.Split(s, "\n")
	var w int
	for _, l := range lines {
		w = max(w, textWidth(l))
	}

	img := newCanvas(max(w, 1), len(lines)*lineHeight())
	d := &font.Drawer{Dst: img, Src: image.NewUniform(black), Face: face}
	ascent := face.Metrics().Ascent
	for i, l := range lines {
		d.Dot = fixed.Point26_6{X: 0, Y: fixed.I(i*lineHeight()) + ascent}
		d.DrawString(l)
	}
	return img
}

// drawTextCentered centers a single line of text on p.
func drawTextCentered(img *image.NRGBA, s string, p image.Point) {
	m := face.Metrics()
	d := &font.Drawer{Dst: img, Src: image.NewUniform(black), Face: face}
	d.Dot = fixed.Point26_6{
		X: fixed.I(p.X) - d.MeasureString(s)/2,
		Y: fixed.I(p.Y) - (m.Ascent+m.Descent)/2 + m.Ascent,
	}
	d.DrawString(s)
}

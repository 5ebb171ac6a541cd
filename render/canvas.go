package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

var (
	white     = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	black     = color.NRGBA{A: 0xFF}
	gridThin  = color.NRGBA{R: 128, G: 128, B: 128, A: 0xFF}
	gridThick = color.NRGBA{R: 64, G: 64, B: 64, A: 0xFF}
)

func newCanvas(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fillRect(img, img.Rect, white)
	return img
}

// fillRect replaces the pixels of r, clipped to the image.
func fillRect(img *image.NRGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r.Intersect(img.Rect), image.NewUniform(c), image.Point{}, draw.Src)
}

// strokeRect draws the 1px outline just inside r.
func strokeRect(img *image.NRGBA, r image.Rectangle, c color.Color) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fillRect(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// vline and hline draw a line of the given thickness starting at pos.
func vline(img *image.NRGBA, x, thickness int, c color.Color) {
	fillRect(img, image.Rect(x, img.Rect.Min.Y, x+thickness, img.Rect.Max.Y), c)
}

func hline(img *image.NRGBA, y, thickness int, c color.Color) {
	fillRect(img, image.Rect(img.Rect.Min.X, y, img.Rect.Max.X, y+thickness), c)
}

// extend adds a white border of the given widths.
func extend(img *image.NRGBA, left, top, right, bottom int) *image.NRGBA {
	b := img.Bounds()
	res := newCanvas(b.Dx()+left+right, b.Dy()+top+bottom)
	draw.Draw(res, b.Sub(b.Min).Add(image.Pt(left, top)), img, b.Min, draw.Src)
	return res
}

type align int

const (
	alignStart align = iota
	alignCenter
)

// stack glues images together with gap white pixels between them, top to
// bottom when vertical is set, left to right otherwise. The cross axis is
// aligned as requested.
func stack(vertical bool, gap int, a align, imgs ...*image.NRGBA) *image.NRGBA {
	var main, cross int
	for i, img := range imgs {
		w, h := img.Rect.Dx(), img.Rect.Dy()
		if vertical {
			w, h = h, w
		}
		if i > 0 {
			main += gap
		}
		main += w
		cross = max(cross, h)
	}

	var res *image.NRGBA
	if vertical {
		res = newCanvas(cross, main)
	} else {
		res = newCanvas(main, cross)
	}

	var pos int
	for _, img := range imgs {
		w, h := img.Rect.Dx(), img.Rect.Dy()
		var off int
		if a == alignCenter {
			if vertical {
				off = (cross - w) / 2
			} else {
				off = (cross - h) / 2
			}
		}

		var at image.Point
		if vertical {
			at = image.Pt(off, pos)
			pos += h + gap
		} else {
			at = image.Pt(pos, off)
			pos += w + gap
		}
		draw.Draw(res, image.Rectangle{Min: at, Max: at.Add(img.Rect.Size())}, img, img.Rect.Min, draw.Src)
	}

	return res
}

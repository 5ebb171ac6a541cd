// Package render draws cross stitch charts and their legend.
package render

import (
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/draw"

	"pixiestitch/okcolor"
	"pixiestitch/palette"
	"pixiestitch/symbol"
)

// Kind selects the flavour of a pattern sheet.
type Kind int

const (
	// CrossStitch prints black symbols on white cells.
	CrossStitch Kind = iota
	// Colorized fills cells with their color and keeps the symbols.
	Colorized
	// ColorizedNoSymbols only fills cells with their color.
	ColorizedNoSymbols
	// PaintByNumbers prints the alphanumeric labels without the ten grid.
	PaintByNumbers
)

var Kinds = []Kind{CrossStitch, Colorized, ColorizedNoSymbols, PaintByNumbers}

func (k Kind) String() string {
	switch k {
	case Colorized:
		return "cross_stitch_colorized"
	case ColorizedNoSymbols:
		return "cross_stitch_colorized_no_symbols"
	case PaintByNumbers:
		return "paint_by_numbers"
	default:
		return "cross_stitch"
	}
}

const (
	// DefaultCellSize is the edge of a pattern cell in pixels.
	DefaultCellSize = symbol.Size
	// thick grid lines and labels every tenth cell
	blockSize = 10
	// partial blocks at the border get their own label when wider than this
	labelMinBlock = 3
	// symbol ink turns white on backgrounds darker than this
	inkLuminance = 0.2
)

type Options struct {
	CellSize int
}

// Frame places a grid in pattern coordinates.
type Frame struct {
	// Origin is the pattern coordinate of the top left cell.
	Origin image.Point
	// Centered draws the origin bars and labels y upwards.
	Centered bool
	// Part is the segment number printed above the chart, 0 for none.
	Part int
}

// Renderer draws sheets for one legend. It only reads its state and can be
// shared by goroutines.
type Renderer struct {
	cell    int
	legend  *symbol.Legend
	symbols []*image.Alpha
	labels  []*image.Alpha
}

func New(legend *symbol.Legend, opts Options) *Renderer {
	cell := opts.CellSize
	if cell <= 0 {
		cell = DefaultCellSize
	}

	r := &Renderer{
		cell:    cell,
		legend:  legend,
		symbols: make([]*image.Alpha, legend.Len()),
	}
	for i, e := range legend.Entries {
		r.symbols[i] = e.Symbol.Scaled(cell)
	}
	if legend.HasLabels() {
		r.labels = make([]*image.Alpha, legend.Len())
		for i, e := range legend.Entries {
			r.labels[i] = e.Label.Scaled(cell)
		}
	}
	return r
}

// CanRender reports whether the legend carries what kind needs.
func (r *Renderer) CanRender(kind Kind) bool {
	return kind != PaintByNumbers || r.labels != nil
}

// Pattern draws the chart of g.
func (r *Renderer) Pattern(g *palette.Grid, kind Kind, f Frame) *image.NRGBA {
	colorize := kind == Colorized || kind == ColorizedNoSymbols
	glyphs := r.symbols
	switch kind {
	case ColorizedNoSymbols:
		glyphs = nil
	case PaintByNumbers:
		glyphs = r.labels
	}

	c := r.cell
	img := newCanvas(c*g.Width, c*g.Height)
	for y := range g.Height {
		for x := range g.Width {
			idx := g.At(x, y)
			entry, ok := r.legend.Lookup(idx)
			if !ok {
				continue
			}

			cell := image.Rect(c*x, c*y, c*(x+1), c*(y+1))
			if colorize {
				draw.Draw(img, cell, image.NewUniform(entry.Color), image.Point{}, draw.Over)
			}
			if glyphs != nil {
				draw.DrawMask(img, cell, image.NewUniform(inkFor(img.NRGBAAt(cell.Min.X, cell.Min.Y))),
					image.Point{}, glyphs[idx], image.Point{}, draw.Over)
			}
		}
	}

	r.drawGrid(img, g, kind, f)
	if kind == PaintByNumbers {
		return r.caption(img, f)
	}

	return r.caption(r.labelGrid(img, g, f), f)
}

// inkFor picks black or white symbols depending on the cell background.
func inkFor(bg color.Color) color.NRGBA {
	if okcolor.Luminance(bg) > inkLuminance {
		return black
	}
	return white
}

func (r *Renderer) drawGrid(img *image.NRGBA, g *palette.Grid, kind Kind, f Frame) {
	c := r.cell
	w, h := img.Rect.Dx(), img.Rect.Dy()

	for x := range g.Width {
		vline(img, c*x, 1, gridThin)
	}
	for y := range g.Height {
		hline(img, c*y, 1, gridThin)
	}
	vline(img, w-1, 1, gridThin)
	hline(img, h-1, 1, gridThin)

	if kind == PaintByNumbers {
		return
	}

	for x := range g.Width {
		if (f.Origin.X+x)%blockSize == 0 {
			vline(img, c*x, 2, gridThick)
		}
	}
	for y := range g.Height {
		if (f.Origin.Y+y)%blockSize == 0 {
			hline(img, c*y, 2, gridThick)
		}
	}
	if (f.Origin.X+g.Width)%blockSize == 0 {
		vline(img, w-2, 2, gridThick)
	}
	if (f.Origin.Y+g.Height)%blockSize == 0 {
		hline(img, h-2, 2, gridThick)
	}

	if f.Centered {
		// bars at the image border are clipped to their inner half
		if ox := -f.Origin.X; 0 <= ox && ox <= g.Width {
			vline(img, c*ox-2, 4, black)
			vline(img, c*ox-1, 2, white)
		}
		if oy := -f.Origin.Y; 0 <= oy && oy <= g.Height {
			hline(img, c*oy-2, 4, black)
			hline(img, c*oy-1, 2, white)
		}
	}
}

type label struct {
	pos   int // cell offset inside the grid
	value int // pattern coordinate
}

// gridLabels lists the labelled cell borders along one axis of n cells
// starting at first.
func gridLabels(first, n int) []label {
	var res []label
	for i := 0; i <= n; i++ {
		if (first+i)%blockSize == 0 {
			res = append(res, label{i, first + i})
		}
	}

	// label short border blocks too, so that a block of 7 to 9 cells is not
	// mistaken for a full one
	if ceilBlock(first)-first > labelMinBlock {
		res = append(res, label{0, first})
	}
	last := first + n
	if last-floorBlock(last) > labelMinBlock {
		res = append(res, label{n, last})
	}
	return res
}

func ceilBlock(v int) int {
	q := v / blockSize
	if v%blockSize > 0 {
		q++
	}
	return q * blockSize
}

func floorBlock(v int) int {
	q := v / blockSize
	if v%blockSize < 0 {
		q--
	}
	return q * blockSize
}

// labelGrid surrounds the chart with coordinate labels on all four sides.
func (r *Renderer) labelGrid(img *image.NRGBA, g *palette.Grid, f Frame) *image.NRGBA {
	xs := gridLabels(f.Origin.X, g.Width)
	ys := gridLabels(f.Origin.Y, g.Height)

	yLabel := func(v int) string {
		if f.Centered {
			v = -v
		}
		return strconv.Itoa(v)
	}

	// room for the widest border coordinate plus some air
	var chars int
	for _, s := range []string{
		strconv.Itoa(f.Origin.X), strconv.Itoa(f.Origin.X + g.Width),
		yLabel(f.Origin.Y), yLabel(f.Origin.Y + g.Height),
	} {
		chars = max(chars, len(s))
	}
	pad := textWidth("0") * (chars + 4)

	res := extend(img, pad, pad, pad, pad)
	w, h := res.Rect.Dx(), res.Rect.Dy()
	for _, l := range xs {
		text := strconv.Itoa(l.value)
		x := pad + r.cell*l.pos
		drawTextCentered(res, text, image.Pt(x, pad/2))
		drawTextCentered(res, text, image.Pt(x, h-pad/2))
	}
	for _, l := range ys {
		text := yLabel(l.value)
		y := pad + r.cell*l.pos
		drawTextCentered(res, text, image.Pt(pad/2, y))
		drawTextCentered(res, text, image.Pt(w-pad/2, y))
	}
	return res
}

func (r *Renderer) caption(img *image.NRGBA, f Frame) *image.NRGBA {
	if f.Part <= 0 {
		return img
	}
	text := textImage("\n Pattern Part " + strconv.Itoa(f.Part) + " \n")
	return stack(true, 0, alignCenter, text, img)
}

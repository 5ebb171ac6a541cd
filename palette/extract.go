package palette

import (
	"image"
	"image/color"
)

// Empty marks a grid cell without a stitch.
const Empty = -1

// Palette is an ordered set of colors. Colors keep the order in which they
// were first added.
type Palette struct {
	colors []color.NRGBA
	index  map[color.NRGBA]int
}

func NewPalette() *Palette {
	return &Palette{index: make(map[color.NRGBA]int)}
}

func (p *Palette) Len() int {
	return len(p.colors)
}

func (p *Palette) At(i int) color.NRGBA {
	return p.colors[i]
}

func (p *Palette) Index(c color.NRGBA) (int, bool) {
	i, ok := p.index[c]
	return i, ok
}

// Colors returns a copy of the palette entries.
func (p *Palette) Colors() []color.NRGBA {
	return append([]color.NRGBA(nil), p.colors...)
}

// Add inserts c if it is not yet present and returns its index.
func (p *Palette) Add(c color.NRGBA) int {
	if i, ok := p.index[c]; ok {
		return i
	}
	i := len(p.colors)
	p.colors = append(p.colors, c)
	p.index[c] = i
	return i
}

// Grid holds one palette index per source pixel, row by row.
type Grid struct {
	Width  int
	Height int
	Cells  []int
}

func NewGrid(width, height int) *Grid {
	cells := make([]int, width*height)
	for i := range cells {
		cells[i] = Empty
	}
	return &Grid{Width: width, Height: height, Cells: cells}
}

func (g *Grid) At(x, y int) int {
	return g.Cells[y*g.Width+x]
}

func (g *Grid) Set(x, y, v int) {
	g.Cells[y*g.Width+x] = v
}

// Sub copies the cells inside r, which is clipped to the grid.
func (g *Grid) Sub(r image.Rectangle) *Grid {
	r = r.Intersect(image.Rect(0, 0, g.Width, g.Height))
	sub := NewGrid(r.Dx(), r.Dy())
	for y := range sub.Height {
		copy(sub.Cells[y*sub.Width:(y+1)*sub.Width], g.Cells[(r.Min.Y+y)*g.Width+r.Min.X:])
	}
	return sub
}

type ExtractOptions struct {
	// Max is the number of available symbols. Zero or less means unlimited.
	Max int
	// Pixels with an alpha at or below AlphaCutoff are background.
	AlphaCutoff uint8
}

// Extraction is the result of scanning an image: its palette, the pixel
// count of every palette entry and the grid of palette indices.
type Extraction struct {
	Palette     *Palette
	Counts      []int
	Grid        *Grid
	Transparent int
}

// Extract scans img once, row by row. Every opaque color is added to the
// palette the first time it is seen.
func Extract(img image.Image, opts ExtractOptions) (*Extraction, error) {
	b := img.Bounds()
	ex := &Extraction{
		Palette: NewPalette(),
		Grid:    NewGrid(b.Dx(), b.Dy()),
	}

	at := pixelReader(img)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := at(x, y)
			if c.A <= opts.AlphaCutoff {
				ex.Transparent++
				continue
			}

			i := ex.Palette.Add(c)
			if i == len(ex.Counts) {
				ex.Counts = append(ex.Counts, 0)
			}
			ex.Counts[i]++
			ex.Grid.Set(x-b.Min.X, y-b.Min.Y, i)
		}
	}

	if opts.Max > 0 && ex.Palette.Len() > opts.Max {
		return nil, &TooManyColorsError{Count: ex.Palette.Len(), Max: opts.Max}
	}

	return ex, nil
}

// Stitches is the number of non background cells.
func (ex *Extraction) Stitches() int {
	var n int
	for _, c := range ex.Counts {
		n += c
	}
	return n
}

func pixelReader(img image.Image) func(x, y int) color.NRGBA {
	switch src := img.(type) {
	case *image.NRGBA:
		return func(x, y int) color.NRGBA {
			return src.NRGBAAt(x, y)
		}
	case *image.Paletted:
		pal := make([]color.NRGBA, len(src.Palette))
		for i, c := range src.Palette {
			pal[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
		}
		return func(x, y int) color.NRGBA {
			i := int(src.ColorIndexAt(x, y))
			if i >= len(pal) {
				// out of range indices are drawn as transparent by most viewers
				return color.NRGBA{}
			}
			return pal[i]
		}
	}

	return func(x, y int) color.NRGBA {
		return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	}
}

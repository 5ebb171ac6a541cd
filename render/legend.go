package render

import (
	"fmt"
	"image"
	"strconv"

	"golang.org/x/image/draw"
)

const (
	legendBlockEntries = 5
	legendBlockColumns = 4
)

// Legend draws the overview sheet: pattern size and stitch totals, one entry
// per color in palette order and, when the pattern is split, the page order
// of its parts.
func (r *Renderer) Legend(width, height int, segments []Segment) *image.NRGBA {
	c := r.cell
	stats := textImage(fmt.Sprintf("Size:     %dx%d\n\nColors:   %d\n\nStitches: %d\n\n\n",
		width, height, r.legend.Len(), r.legend.Total()))

	var blocks []*image.NRGBA
	for start := 0; start < r.legend.Len(); start += legendBlockEntries {
		end := min(start+legendBlockEntries, r.legend.Len())
		var entries []*image.NRGBA
		for i := start; i < end; i++ {
			entries = append(entries, r.legendEntry(i))
		}
		blocks = append(blocks, stack(true, c, alignStart, entries...))
	}

	var rows []*image.NRGBA
	for start := 0; start < len(blocks); start += legendBlockColumns {
		end := min(start+legendBlockColumns, len(blocks))
		rows = append(rows, stack(false, c, alignStart, blocks[start:end]...))
	}

	sheet := stats
	if len(rows) > 0 {
		table := stack(true, c, alignStart, rows...)
		sheet = stack(true, 0, alignStart, stats, extend(table, 0, 0, 0, c+c/2))
	}

	if len(segments) > 1 {
		pages := pageLayout(segments)
		sheet = stack(true, 0, alignStart, sheet, pages)
		// separate the colors from the page order
		hline(sheet, sheet.Rect.Dy()-pages.Rect.Dy(), 1, black)
	}

	return extend(sheet, c, c, c, c)
}

// legendEntry draws color swatch, symbol, paint by numbers label when
// available and the stitch count side by side.
func (r *Renderer) legendEntry(i int) *image.NRGBA {
	c := r.cell
	e := r.legend.Entries[i]

	boxes := 2
	if r.labels != nil {
		boxes = 3
	}
	img := newCanvas(boxes*c, c)

	swatch := image.Rect(0, 0, c, c)
	draw.Draw(img, swatch, image.NewUniform(e.Color), image.Point{}, draw.Over)
	strokeRect(img, swatch, black)

	for b, glyph := range r.entryGlyphs(i) {
		box := image.Rect((b+1)*c, 0, (b+2)*c, c)
		draw.DrawMask(img, box, image.NewUniform(black), image.Point{}, glyph, image.Point{}, draw.Over)
		strokeRect(img, box, black)
	}

	count := textImage(" " + strconv.Itoa(e.Count) + " stitches      ")
	return stack(false, 0, alignCenter, img, count)
}

func (r *Renderer) entryGlyphs(i int) []*image.Alpha {
	if r.labels == nil {
		return []*image.Alpha{r.symbols[i]}
	}
	return []*image.Alpha{r.symbols[i], r.labels[i]}
}

// pageLayout draws one numbered tile per segment at its page position.
func pageLayout(segments []Segment) *image.NRGBA {
	caption := textImage("\n\nPattern parts overview:\n")

	var cols, rows int
	for _, s := range segments {
		cols = max(cols, s.Col+1)
		rows = max(rows, s.Row+1)
	}

	// 1px gap between tiles, portrait page proportions
	tileW := 1 + textWidth(" "+strconv.Itoa(len(segments))+" ")
	tileH := 1 + tileW*9/6

	img := newCanvas(cols*tileW, rows*tileH)
	for _, s := range segments {
		at := image.Pt(s.Col*tileW, s.Row*tileH)
		strokeRect(img, image.Rectangle{Min: at, Max: at.Add(image.Pt(tileW-1, tileH-1))}, black)
		drawTextCentered(img, strconv.Itoa(s.Number), at.Add(image.Pt(tileW/2, tileH/2)))
	}

	return stack(true, 0, alignStart, caption, img)
}

package symbol

import (
	"image/color"

	"pixiestitch/palette"
)

// Entry ties a palette color to its symbol and stitch count.
type Entry struct {
	Color  color.NRGBA
	Symbol Symbol
	// Label is the paint by numbers glyph, nil when labels are unavailable.
	Label *Symbol
	Count int
}

// Legend lists one entry per palette color, in palette order.
type Legend struct {
	Entries []Entry
}

// Allocate hands out symbols in palette order: the i-th color gets the i-th
// symbol of inv, which makes the mapping injective and reproducible. labels
// may be nil or too small, the entries are then left without label.
func Allocate(pal *palette.Palette, counts []int, inv, labels *Inventory) (*Legend, error) {
	if pal.Len() > inv.Len() {
		return nil, &palette.TooManyColorsError{Count: pal.Len(), Max: inv.Len()}
	}

	withLabels := labels != nil && labels.Len() >= pal.Len()
	l := &Legend{Entries: make([]Entry, pal.Len())}
	for i := range l.Entries {
		e := Entry{
			Color:  pal.At(i),
			Symbol: inv.At(i),
			Count:  counts[i],
		}
		if withLabels {
			label := labels.At(i)
			e.Label = &label
		}
		l.Entries[i] = e
	}

	return l, nil
}

func (l *Legend) Len() int {
	return len(l.Entries)
}

// Total is the number of stitches over all colors.
func (l *Legend) Total() int {
	var n int
	for _, e := range l.Entries {
		n += e.Count
	}
	return n
}

// HasLabels reports whether every entry carries a paint by numbers label.
func (l *Legend) HasLabels() bool {
	for _, e := range l.Entries {
		if e.Label == nil {
			return false
		}
	}
	return len(l.Entries) > 0
}

// Lookup returns the entry of a grid cell value, false for background and
// unknown indices.
func (l *Legend) Lookup(index int) (Entry, bool) {
	if index < 0 || index >= len(l.Entries) {
		return Entry{}, false
	}
	return l.Entries[index], true
}

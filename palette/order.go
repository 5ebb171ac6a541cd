package palette

import (
	"cmp"
	"image/color"
	"slices"

	"pixiestitch/okcolor"
)

// Order selects how palette entries are arranged before symbols are assigned.
type Order string

const (
	OrderFirstSeen Order = "first-seen"
	OrderHue       Order = "hue"
)

// chroma below which a color is treated as a gray and sorted by lightness only
const grayChroma = 0.02

// SortByHue reorders the palette so that grays come first, darkest to
// lightest, followed by the remaining colors by hue, lightness and chroma.
// Counts and grid are remapped to the new order.
func (ex *Extraction) SortByHue() {
	n := ex.Palette.Len()
	order := make([]int, n)
	keys := make([]okcolor.LCh, n)
	for i := range n {
		order[i] = i
		keys[i] = okcolor.LChModel.Convert(ex.Palette.At(i)).(okcolor.LCh)
	}

	slices.SortStableFunc(order, func(a, b int) int {
		ka, kb := keys[a], keys[b]
		grayA, grayB := ka.C < grayChroma, kb.C < grayChroma
		if grayA != grayB {
			if grayA {
				return -1
			}
			return 1
		}
		if !grayA {
			if c := cmp.Compare(ka.HueDegrees(), kb.HueDegrees()); c != 0 {
				return c
			}
		}
		if c := cmp.Compare(ka.L, kb.L); c != 0 {
			return c
		}
		if c := cmp.Compare(ka.C, kb.C); c != 0 {
			return c
		}
		return compareNRGBA(ex.Palette.At(a), ex.Palette.At(b))
	})

	ex.reorder(order)
}

// reorder makes order[i] the new position i.
func (ex *Extraction) reorder(order []int) {
	remap := make([]int, len(order))
	pal := NewPalette()
	counts := make([]int, len(order))
	for newIdx, oldIdx := range order {
		remap[oldIdx] = newIdx
		pal.Add(ex.Palette.At(oldIdx))
		counts[newIdx] = ex.Counts[oldIdx]
	}

	for i, v := range ex.Grid.Cells {
		if v != Empty {
			ex.Grid.Cells[i] = remap[v]
		}
	}
	ex.Palette = pal
	ex.Counts = counts
}

func compareNRGBA(a, b color.NRGBA) int {
	return cmp.Or(
		cmp.Compare(a.R, b.R),
		cmp.Compare(a.G, b.G),
		cmp.Compare(a.B, b.B),
		cmp.Compare(a.A, b.A),
	)
}

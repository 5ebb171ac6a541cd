// Package symbol loads the glyphs printed into pattern cells and assigns them
// to palette colors.
package symbol

import (
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/disintegration/gift"

	"pixiestitch/okcolor"
	"pixiestitch/palette"
)

// Size is the edge length in pixels of the bundled glyphs.
const Size = 16

// Symbol is a named monochrome glyph. Opaque pixels of Mask are ink.
type Symbol struct {
	Name string
	Mask *image.Alpha
}

// Scaled returns the glyph resized to size×size with nearest neighbour
// sampling, so that ink stays crisp.
func (s Symbol) Scaled(size int) *image.Alpha {
	if s.Mask.Rect.Dx() == size && s.Mask.Rect.Dy() == size {
		return s.Mask
	}
	g := gift.New(gift.Resize(size, size, gift.NearestNeighborResampling))
	dst := image.NewAlpha(g.Bounds(s.Mask.Rect))
	g.Draw(dst, s.Mask)
	return dst
}

// Inventory is an ordered, immutable set of glyphs of the same size. It is
// safe for concurrent use.
type Inventory struct {
	size    int
	symbols []Symbol
}

// NewInventory validates the glyphs: all must be size×size and no two may
// carry the same bitmap.
func NewInventory(size int, symbols ...Symbol) (*Inventory, error) {
	seen := make(map[string]string, len(symbols))
	for _, s := range symbols {
		if r := s.Mask.Rect; r.Dx() != size || r.Dy() != size {
			return nil, fmt.Errorf("symbol %q is %dx%d, expected %dx%d", s.Name, r.Dx(), r.Dy(), size, size)
		}
		key := string(s.Mask.Pix)
		if other, ok := seen[key]; ok {
			return nil, fmt.Errorf("symbol %q has the same glyph as %q", s.Name, other)
		}
		seen[key] = s.Name
	}

	return &Inventory{
		size:    size,
		symbols: slices.Clone(symbols),
	}, nil
}

func (inv *Inventory) Len() int {
	return len(inv.symbols)
}

func (inv *Inventory) Size() int {
	return inv.size
}

func (inv *Inventory) At(i int) Symbol {
	return inv.symbols[i]
}

// LoadDir reads every PNG below the root of fsys. Glyphs are ordered by file
// name, numbers by value ("2.png" before "10.png"), so that a color always
// gets the same symbol.
func LoadDir(fsys fs.FS, size int) (*Inventory, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(path.Ext(p), ".png") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not scan symbol folder: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no PNG symbols found")
	}

	slices.SortFunc(files, compareNames)

	symbols := make([]Symbol, 0, len(files))
	for _, p := range files {
		s, err := loadSymbol(fsys, p)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}

	return NewInventory(size, symbols...)
}

func loadSymbol(fsys fs.FS, p string) (Symbol, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return Symbol{}, fmt.Errorf("could not open symbol %q: %w", p, err)
	}
	defer f.Close()

	img, _, err := palette.Decode(f)
	if err != nil {
		return Symbol{}, fmt.Errorf("could not decode symbol %q: %w", p, err)
	}

	return Symbol{
		Name: strings.TrimSuffix(p, path.Ext(p)),
		Mask: inkMask(img),
	}, nil
}

// inkMask keeps the dark opaque pixels of a black on white (or transparent)
// glyph image.
func inkMask(img image.Image) *image.Alpha {
	b := img.Bounds()
	mask := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A >= 0x80 && okcolor.Luminance(c) < 0.5 {
				mask.SetAlpha(x-b.Min.X, y-b.Min.Y, color.Alpha{A: 0xFF})
			}
		}
	}
	return mask
}

// compareNames orders by base name, numbers first and by value, then by the
// full path.
func compareNames(a, b string) int {
	na := strings.TrimSuffix(path.Base(a), path.Ext(a))
	nb := strings.TrimSuffix(path.Base(b), path.Ext(b))

	ia, errA := strconv.Atoi(na)
	ib, errB := strconv.Atoi(nb)
	switch {
	case errA == nil && errB == nil:
		if ia != ib {
			if ia < ib {
				return -1
			}
			return 1
		}
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		if c := strings.Compare(na, nb); c != 0 {
			return c
		}
	}

	return strings.Compare(a, b)
}

package symbol

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Alphabet lists the paint by numbers labels in allocation order. Zero is
// left out as it reads like an O or an 8 on cheap printers.
const Alphabet = "123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Alphanumeric renders one size×size glyph per Alphabet character.
func Alphanumeric(size int) (*Inventory, error) {
	face := basicfont.Face7x13
	metrics := face.Metrics()

	symbols := make([]Symbol, 0, len(Alphabet))
	for _, r := range Alphabet {
		mask := image.NewAlpha(image.Rect(0, 0, size, size))
		d := &font.Drawer{
			Dst:  mask,
			Src:  image.Opaque,
			Face: face,
		}
		width := d.MeasureString(string(r))
		height := metrics.Ascent + metrics.Descent
		d.Dot = fixed.Point26_6{
			X: (fixed.I(size) - width) / 2,
			Y: (fixed.I(size)-height)/2 + metrics.Ascent,
		}
		d.DrawString(string(r))

		symbols = append(symbols, Symbol{Name: string(r), Mask: mask})
	}

	inv, err := NewInventory(size, symbols...)
	if err != nil {
		return nil, fmt.Errorf("could not build alphanumeric symbols: %w", err)
	}
	return inv, nil
}

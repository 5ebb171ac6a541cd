package symbol

import (
	"image"
	"image/color"
	"math"
	"sync"
)

type shape func(x, y int, u, v float64) bool

// inside reports whether the cell centred coordinates are within the drawing
// area, which keeps a margin free for the grid lines.
func inside(u, v float64) bool {
	return math.Abs(u) <= 5.5 && math.Abs(v) <= 5.5
}

var builtinShapes = []struct {
	name string
	ink  shape
}{
	{"square", func(_, _ int, u, v float64) bool { return inside(u, v) }},
	{"square-outline", func(_, _ int, u, v float64) bool {
		return inside(u, v) && (math.Abs(u) > 3.5 || math.Abs(v) > 3.5)
	}},
	{"disc", func(_, _ int, u, v float64) bool { return u*u+v*v <= 30 }},
	{"ring", func(_, _ int, u, v float64) bool { r := u*u + v*v; return r >= 14 && r <= 36 }},
	{"cross", func(_, _ int, u, v float64) bool {
		return inside(u, v) && (math.Abs(u-v) <= 1.2 || math.Abs(u+v) <= 1.2)
	}},
	{"plus", func(_, _ int, u, v float64) bool {
		return inside(u, v) && (math.Abs(u) <= 1 || math.Abs(v) <= 1)
	}},
	{"slash", func(_, _ int, u, v float64) bool { return inside(u, v) && math.Abs(u+v) <= 1.5 }},
	{"backslash", func(_, _ int, u, v float64) bool { return inside(u, v) && math.Abs(u-v) <= 1.5 }},
	{"rows", func(_, y int, u, v float64) bool { return inside(u, v) && (y-3)%4 < 2 }},
	{"columns", func(x, _ int, u, v float64) bool { return inside(u, v) && (x-3)%4 < 2 }},
	{"triangle-up", func(_, _ int, u, v float64) bool { return inside(u, v) && math.Abs(u) <= (v+5.5)/2 }},
	{"triangle-down", func(_, _ int, u, v float64) bool { return inside(u, v) && math.Abs(u) <= (5.5-v)/2 }},
	{"diamond", func(_, _ int, u, v float64) bool { return math.Abs(u)+math.Abs(v) <= 6 }},
	{"diamond-outline", func(_, _ int, u, v float64) bool {
		d := math.Abs(u) + math.Abs(v)
		return d >= 3.5 && d <= 6.5
	}},
	{"dot", func(_, _ int, u, v float64) bool { return u*u+v*v <= 6 }},
	{"checker", func(x, y int, u, v float64) bool { return inside(u, v) && ((x-2)/3+(y-2)/3)%2 == 0 }},
	{"half", func(_, _ int, u, v float64) bool { return inside(u, v) && u < 0 }},
}

var builtin = sync.OnceValue(func() *Inventory {
	symbols := make([]Symbol, len(builtinShapes))
	for i, s := range builtinShapes {
		mask := image.NewAlpha(image.Rect(0, 0, Size, Size))
		for y := range Size {
			for x := range Size {
				u := float64(x) + 0.5 - Size/2
				v := float64(y) + 0.5 - Size/2
				if s.ink(x, y, u, v) {
					mask.SetAlpha(x, y, color.Alpha{A: 0xFF})
				}
			}
		}
		symbols[i] = Symbol{Name: s.name, Mask: mask}
	}

	inv, err := NewInventory(Size, symbols...)
	if err != nil {
		panic(err)
	}
	return inv
})

// Builtin returns the 17 glyphs used when no symbol folder is available.
func Builtin() *Inventory {
	return builtin()
}

package render

import "image"

// Segment is one printable part of a pattern that is too large for a page.
type Segment struct {
	Number int             // 1-based, row by row
	Col    int             // page column
	Row    int             // page row
	Rect   image.Rectangle // covered cells
}

// Segments splits a width×height grid into parts of at most segW×segH cells.
// A grid that fits a single part yields exactly one segment.
func Segments(width, height, segW, segH int) []Segment {
	if segW <= 0 || segH <= 0 {
		return []Segment{{Number: 1, Rect: image.Rect(0, 0, width, height)}}
	}

	var res []Segment
	for row, y := 0, 0; y < height || row == 0; row, y = row+1, y+segH {
		for col, x := 0, 0; x < width || col == 0; col, x = col+1, x+segW {
			res = append(res, Segment{
				Number: len(res) + 1,
				Col:    col,
				Row:    row,
				Rect:   image.Rect(x, y, min(x+segW, width), min(y+segH, height)),
			})
		}
	}
	return res
}

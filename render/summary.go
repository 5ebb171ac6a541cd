package render

import (
	"fmt"
	"image/color"
	"io"
	"text/tabwriter"

	"github.com/lucasb-eyer/go-colorful"

	"pixiestitch/symbol"
)

// Summary writes the legend as plain text, one line per color.
func Summary(w io.Writer, legend *symbol.Legend, width, height int) error {
	if _, err := fmt.Fprintf(w, "Size:     %dx%d\nColors:   %d\nStitches: %d\n\n",
		width, height, legend.Len(), legend.Total()); err != nil {
		return fmt.Errorf("could not write summary header: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tColor\tSymbol\tLabel\tStitches")
	for i, e := range legend.Entries {
		label := "-"
		if e.Label != nil {
			label = e.Label.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", i+1, Hex(e.Color), e.Symbol.Name, label, e.Count)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("could not write summary: %w", err)
	}
	return nil
}

// Hex formats c as #rrggbb, followed by the alpha byte when translucent.
func Hex(c color.NRGBA) string {
	opaque := c
	opaque.A = 0xFF
	col, _ := colorful.MakeColor(opaque)
	if c.A == 0xFF {
		return col.Hex()
	}
	return fmt.Sprintf("%s%02x", col.Hex(), c.A)
}

// Package stitch turns pixel art images into pattern folders.
package stitch

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"pixiestitch/palette"
	"pixiestitch/render"
	"pixiestitch/symbol"
)

// Stage is a step of a conversion. A conversion only moves forward and stops
// at the first failing stage.
type Stage int

const (
	Loaded Stage = iota
	Extracted
	Allocated
	Rendered
	Written
)

func (s Stage) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Extracted:
		return "extracted"
	case Allocated:
		return "allocated"
	case Rendered:
		return "rendered"
	case Written:
		return "written"
	}
	return "stage(" + strconv.Itoa(int(s)) + ")"
}

type Options struct {
	// OutDir receives the pattern folders, the folder of each image when empty.
	OutDir      string
	CellSize    int
	AlphaCutoff uint8
	Order       palette.Order
	// Centered adds a set of charts with coordinates relative to the image
	// center.
	Centered      bool
	SegmentWidth  int
	SegmentHeight int
	Overwrite     bool
	// Renderers caps the sheets of one image held in memory at once,
	// GOMAXPROCS when below one.
	Renderers int
}

func DefaultOptions() Options {
	return Options{
		CellSize:      render.DefaultCellSize,
		Order:         palette.OrderFirstSeen,
		Centered:      true,
		SegmentWidth:  60,
		SegmentHeight: 80,
	}
}

// Converter holds the shared, read only state of a run. Convert may be called
// from several goroutines.
type Converter struct {
	symbols *symbol.Inventory
	labels  *symbol.Inventory
	opts    Options
}

// NewConverter uses symbols for the charts and labels, which may be nil, for
// the paint by numbers sheet.
func NewConverter(symbols, labels *symbol.Inventory, opts Options) *Converter {
	return &Converter{
		symbols: symbols,
		labels:  labels,
		opts:    opts,
	}
}

type Result struct {
	Image    string
	Dir      string
	Width    int
	Height   int
	Colors   int
	Stitches int
	Files    []string
}

// OutputDir is the pattern folder of the image at path.
func (c *Converter) OutputDir(path string) string {
	root := c.opts.OutDir
	if root == "" {
		root = filepath.Dir(path)
	}
	base := filepath.Base(path)
	return filepath.Join(root, strings.TrimSuffix(base, filepath.Ext(base)))
}

// Convert runs the whole pipeline for one image. On error nothing is left in
// the output folder.
func (c *Converter) Convert(ctx context.Context, path string) (*Result, error) {
	logger := slog.Default().With("file", path)

	img, err := c.load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("conversion", "stage", Loaded, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ex, err := palette.Extract(img, palette.ExtractOptions{
		Max:         c.symbols.Len(),
		AlphaCutoff: c.opts.AlphaCutoff,
	})
	if err != nil {
		return nil, err
	}
	if c.opts.Order == palette.OrderHue {
		ex.SortByHue()
	}
	logger.Debug("conversion", "stage", Extracted, "colors", ex.Palette.Len(), "stitches", ex.Stitches())

	legend, err := symbol.Allocate(ex.Palette, ex.Counts, c.symbols, c.labels)
	if err != nil {
		return nil, err
	}
	if !legend.HasLabels() && legend.Len() > 0 {
		logger.Warn("not enough paint by numbers labels, skipping sheet", "colors", legend.Len())
	}
	logger.Debug("conversion", "stage", Allocated)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := c.OutputDir(path)
	out, err := createOutput(dir, c.opts.Overwrite)
	if err != nil {
		return nil, err
	}
	defer out.discard()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := c.writeSheets(ctx, out, name, ex, legend); err != nil {
		return nil, err
	}
	logger.Debug("conversion", "stage", Rendered)

	files, err := out.commit()
	if err != nil {
		return nil, err
	}
	logger.Debug("conversion", "stage", Written, "files", len(files))
	logger.Info("pattern written", "dir", dir, "colors", legend.Len(), "stitches", legend.Total())

	return &Result{
		Image:    path,
		Dir:      dir,
		Width:    ex.Grid.Width,
		Height:   ex.Grid.Height,
		Colors:   legend.Len(),
		Stitches: legend.Total(),
		Files:    files,
	}, nil
}

func (c *Converter) load(path string) (image.Image, error) {
	imgFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open image: %w", err)
	}
	defer imgFile.Close()

	img, _, err := palette.Decode(imgFile)
	return img, err
}

// chartSet is a family of charts sharing a coordinate system.
type chartSet struct {
	prefix   string
	origin   image.Point
	centered bool
}

// writeSheets renders every sheet concurrently into the staging folder.
func (c *Converter) writeSheets(ctx context.Context, out *output, name string, ex *palette.Extraction, legend *symbol.Legend) error {
	r := render.New(legend, render.Options{CellSize: c.opts.CellSize})
	grid := ex.Grid
	segments := render.Segments(grid.Width, grid.Height, c.opts.SegmentWidth, c.opts.SegmentHeight)

	renderers := c.opts.Renderers
	if renderers < 1 {
		renderers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(renderers)
	sheet := func(file string, draw func() image.Image) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return out.writePNG(file, draw())
		})
	}

	sheet(name+"_legend.png", func() image.Image {
		return r.Legend(grid.Width, grid.Height, segments)
	})
	g.Go(func() error {
		return out.writeFile(name+"_legend.txt", func(w io.Writer) error {
			return render.Summary(w, legend, grid.Width, grid.Height)
		})
	})
	g.Go(func() error {
		return out.writeFile(name+".pal", func(w io.Writer) error {
			_, err := palette.WritePAL(w, ex.Palette)
			return err
		})
	})

	sets := []chartSet{{}}
	if c.opts.Centered {
		// an odd size puts the extra cell before the origin
		center := image.Pt((grid.Width+grid.Width%2)/2, (grid.Height+grid.Height%2)/2)
		sets = append(sets, chartSet{prefix: "centered/", origin: image.Point{}.Sub(center), centered: true})
	}

	for _, set := range sets {
		for _, kind := range render.Kinds {
			if !r.CanRender(kind) || (set.centered && kind == render.PaintByNumbers) {
				continue
			}

			file := set.prefix + name + "_" + kind.String()
			sheet(file+"_complete.png", func() image.Image {
				return r.Pattern(grid, kind, render.Frame{Origin: set.origin, Centered: set.centered})
			})

			if len(segments) < 2 || kind == render.PaintByNumbers {
				continue
			}
			for _, s := range segments {
				sheet(file+"_segment_"+strconv.Itoa(s.Number)+".png", func() image.Image {
					return r.Pattern(grid.Sub(s.Rect), kind, render.Frame{
						Origin:   set.origin.Add(s.Rect.Min),
						Centered: set.centered,
						Part:     s.Number,
					})
				})
			}
		}
	}

	return g.Wait()
}

package stitch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"pixiestitch/palette"
	"pixiestitch/parallel"
	"pixiestitch/render"
	"pixiestitch/symbol"
)

const resourcesDir = "resources"

type CLICmd struct {
	Images        []string `arg:"" help:"PNG or GIF pixel art to convert" type:"path"`
	Resources     string   `help:"Folder of ${glyphsize}x${glyphsize} PNG symbols. Defaults to ./resources next to the executable or the working folder, then to the built-in symbols" env:"PIXIESTITCH_RESOURCES" type:"path"`
	Out           string   `help:"Folder receiving the pattern folders. Defaults to the folder of each image" type:"path"`
	CellSize      int      `help:"Size of a chart cell in pixels" default:"${cellsize}" group:"render"`
	AlphaCutoff   uint8    `help:"Pixels with an alpha at or below this value are left blank" default:"0" group:"render"`
	Order         string   `help:"Order of the legend colors" enum:"first-seen,hue" default:"first-seen" group:"render"`
	Centered      bool     `help:"Also render charts numbered from the image center" negatable:"" default:"true" group:"render"`
	SegmentWidth  int      `help:"Width in cells of a printed part, 0 to never split" default:"60" group:"render"`
	SegmentHeight int      `help:"Height in cells of a printed part, 0 to never split" default:"80" group:"render"`
	Overwrite     bool     `help:"Replace existing pattern folders" default:"false"`
	Workers       int      `help:"Number of images converted at once, 0 for one per CPU" default:"0"`

	symbols *symbol.Inventory
	labels  *symbol.Inventory
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	switch {
	case c.CellSize < 1:
		return fmt.Errorf("invalid cell size: %d", c.CellSize)
	case c.SegmentWidth < 0:
		return fmt.Errorf("invalid segment width: %d", c.SegmentWidth)
	case c.SegmentHeight < 0:
		return fmt.Errorf("invalid segment height: %d", c.SegmentHeight)
	case c.Workers < 0:
		return fmt.Errorf("invalid number of workers: %d", c.Workers)
	}

	var err error
	if c.symbols, err = loadSymbols(c.Resources); err != nil {
		return err
	}

	c.labels, err = symbol.Alphanumeric(symbol.Size)
	if err != nil {
		return fmt.Errorf("could not render number labels: %w", err)
	}
	return nil
}

// loadSymbols reads dir, or the first resources folder found when dir is
// empty. Without one the built-in symbols are used.
func loadSymbols(dir string) (*symbol.Inventory, error) {
	if dir == "" {
		dir = findResources()
	}
	if dir == "" {
		slog.Debug("using built-in symbols")
		return symbol.Builtin(), nil
	}

	inv, err := symbol.LoadDir(os.DirFS(dir), symbol.Size)
	if err != nil {
		return nil, fmt.Errorf("invalid resources %q: %w", dir, err)
	}
	slog.Debug("symbols loaded", "dir", dir, "count", inv.Len())
	return inv, nil
}

func findResources() string {
	var candidates []string
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), resourcesDir))
	}
	candidates = append(candidates, resourcesDir)

	for _, dir := range candidates {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return dir
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("cannot stat resources", "dir", dir, "error", err)
		}
	}
	return ""
}

func (c *CLICmd) options() Options {
	return Options{
		OutDir:        c.Out,
		CellSize:      c.CellSize,
		AlphaCutoff:   c.AlphaCutoff,
		Order:         palette.Order(c.Order),
		Centered:      c.Centered,
		SegmentWidth:  c.SegmentWidth,
		SegmentHeight: c.SegmentHeight,
		Overwrite:     c.Overwrite,
	}
}

func (c *CLICmd) Run(ctx context.Context, kctx *kong.Context, worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	conv := NewConverter(c.symbols, c.labels, c.options())
	report := conv.Batch(ctx, c.Images, worker, wait)

	ok := color.New(color.FgGreen)
	fail := color.New(color.Bold, color.FgRed)
	for _, res := range report.Results {
		ok.Fprint(kctx.Stdout, "done ")
		fmt.Fprintf(kctx.Stdout, "%s -> %s (%dx%d, %d colors, %d stitches)\n",
			res.Image, res.Dir, res.Width, res.Height, res.Colors, res.Stitches)
	}
	for _, f := range report.Failures {
		fail.Fprint(kctx.Stderr, "failed ")
		fmt.Fprintf(kctx.Stderr, "%s: %v\n", f.Image, f.Err)
	}

	return report.Err()
}

// Vars are the interpolation variables of the CLICmd help.
var Vars = kong.Vars{
	"glyphsize": fmt.Sprint(symbol.Size),
	"cellsize":  fmt.Sprint(render.DefaultCellSize),
}

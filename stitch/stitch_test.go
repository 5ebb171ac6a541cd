package stitch

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"pixiestitch/palette"
	"pixiestitch/parallel"
	"pixiestitch/symbol"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

// sprite is the 2×2 image red, red / blue, background.
func sprite() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, red)
	img.SetNRGBA(1, 0, red)
	img.SetNRGBA(0, 1, blue)
	return img
}

// gifSprite is sprite with an explicit transparent palette entry, the GIF
// encoder would otherwise map the background to an opaque color.
func gifSprite() *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.NRGBA{}, red, blue})
	img.SetColorIndex(0, 0, 1)
	img.SetColorIndex(1, 0, 1)
	img.SetColorIndex(0, 1, 2)
	return img
}

func stripe(w, h int, colors ...color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, colors[x%len(colors)])
		}
	}
	return img
}

func writeImage(t *testing.T, path string, img image.Image) string {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	switch filepath.Ext(path) {
	case ".gif":
		err = gif.Encode(f, img, nil)
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		err = png.Encode(f, img)
	}
	require.NoError(t, err)
	return path
}

func newConverter(t *testing.T, opts Options) *Converter {
	t.Helper()
	labels, err := symbol.Alphanumeric(symbol.Size)
	require.NoError(t, err)
	return NewConverter(symbol.Builtin(), labels, opts)
}

// listDir returns every entry below dir, hidden ones included.
func listDir(t *testing.T, dir string) []string {
	t.Helper()
	var res []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || p == dir {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		res = append(res, filepath.ToSlash(rel))
		return err
	})
	require.NoError(t, err)
	return res
}

func TestConvert(t *testing.T) {
	src := t.TempDir()
	path := writeImage(t, filepath.Join(src, "sprite.png"), sprite())

	res, err := newConverter(t, DefaultOptions()).Convert(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(src, "sprite"), res.Dir)
	assert.Equal(t, 2, res.Width)
	assert.Equal(t, 2, res.Height)
	assert.Equal(t, 2, res.Colors)
	assert.Equal(t, 3, res.Stitches)

	expected := []string{
		"centered/sprite_cross_stitch_colorized_complete.png",
		"centered/sprite_cross_stitch_colorized_no_symbols_complete.png",
		"centered/sprite_cross_stitch_complete.png",
		"sprite.pal",
		"sprite_cross_stitch_colorized_complete.png",
		"sprite_cross_stitch_colorized_no_symbols_complete.png",
		"sprite_cross_stitch_complete.png",
		"sprite_legend.png",
		"sprite_legend.txt",
		"sprite_paint_by_numbers_complete.png",
	}
	assert.Equal(t, expected, res.Files)
	assert.ElementsMatch(t, append(expected, "centered"), listDir(t, res.Dir))

	// nothing staged is left next to the output
	assert.ElementsMatch(t, []string{"sprite.png", "sprite"}, dirNames(t, src))

	f, err := os.Open(filepath.Join(res.Dir, "sprite.pal"))
	require.NoError(t, err)
	defer f.Close()
	colors, err := palette.ReadPAL(f)
	require.NoError(t, err)
	assert.Equal(t, []color.NRGBA{red, blue}, colors)

	summary, err := os.ReadFile(filepath.Join(res.Dir, "sprite_legend.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "#ff0000")
}

func TestConvertSegments(t *testing.T) {
	src := t.TempDir()
	path := writeImage(t, filepath.Join(src, "wide.png"), stripe(70, 3, red, green))

	opts := DefaultOptions()
	opts.Centered = false
	opts.OutDir = filepath.Join(src, "out")
	res, err := newConverter(t, opts).Convert(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(src, "out", "wide"), res.Dir)
	for _, kind := range []string{"cross_stitch", "cross_stitch_colorized", "cross_stitch_colorized_no_symbols"} {
		assert.Contains(t, res.Files, "wide_"+kind+"_segment_1.png")
		assert.Contains(t, res.Files, "wide_"+kind+"_segment_2.png")
		assert.NotContains(t, res.Files, "wide_"+kind+"_segment_3.png")
	}
	assert.Contains(t, res.Files, "wide_paint_by_numbers_complete.png")
	assert.NotContains(t, res.Files, "wide_paint_by_numbers_segment_1.png")

	f, err := os.Open(filepath.Join(res.Dir, "wide_cross_stitch_segment_2.png"))
	require.NoError(t, err)
	defer f.Close()
	seg, err := png.DecodeConfig(f)
	require.NoError(t, err)

	f2, err := os.Open(filepath.Join(res.Dir, "wide_cross_stitch_segment_1.png"))
	require.NoError(t, err)
	defer f2.Close()
	first, err := png.DecodeConfig(f2)
	require.NoError(t, err)
	assert.Less(t, seg.Width, first.Width)
}

func TestConvertDeterministic(t *testing.T) {
	src := t.TempDir()
	path := writeImage(t, filepath.Join(src, "sprite.png"), stripe(12, 12, red, green, blue))

	run := func(out string) *Result {
		opts := DefaultOptions()
		opts.OutDir = filepath.Join(src, out)
		opts.SegmentWidth = 5
		opts.SegmentHeight = 5
		res, err := newConverter(t, opts).Convert(context.Background(), path)
		require.NoError(t, err)
		return res
	}

	a, b := run("a"), run("b")
	require.Equal(t, a.Files, b.Files)
	for _, name := range a.Files {
		da, err := os.ReadFile(filepath.Join(a.Dir, filepath.FromSlash(name)))
		require.NoError(t, err)
		db, err := os.ReadFile(filepath.Join(b.Dir, filepath.FromSlash(name)))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(da, db), name)
	}
}

func TestConvertTooManyColors(t *testing.T) {
	src := t.TempDir()
	path := writeImage(t, filepath.Join(src, "busy.png"), stripe(3, 1, red, green, blue))

	builtin := symbol.Builtin()
	inv, err := symbol.NewInventory(symbol.Size, builtin.At(0), builtin.At(1))
	require.NoError(t, err)

	_, err = NewConverter(inv, nil, DefaultOptions()).Convert(context.Background(), path)
	var tooMany *palette.TooManyColorsError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, 3, tooMany.Count)
	assert.Equal(t, 2, tooMany.Max)

	assert.Equal(t, []string{"busy.png"}, listDir(t, src))
}

func TestConvertUnsupportedFormat(t *testing.T) {
	src := t.TempDir()
	path := writeImage(t, filepath.Join(src, "photo.bmp"), sprite())

	_, err := newConverter(t, DefaultOptions()).Convert(context.Background(), path)
	var unsupported *palette.UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "bmp", unsupported.Format)
	assert.NoDirExists(t, filepath.Join(src, "photo"))
}

func TestConvertGIF(t *testing.T) {
	src := t.TempDir()
	path := writeImage(t, filepath.Join(src, "sprite.gif"), gifSprite())

	res, err := newConverter(t, DefaultOptions()).Convert(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Colors)
	assert.Equal(t, 3, res.Stitches)
}

func TestConvertExistingOutput(t *testing.T) {
	src := t.TempDir()
	path := writeImage(t, filepath.Join(src, "sprite.png"), sprite())
	dir := filepath.Join(src, "sprite")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644))

	_, err := newConverter(t, DefaultOptions()).Convert(context.Background(), path)
	var writeErr *OutputWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, dir, writeErr.Path)
	assert.ErrorIs(t, err, ErrOutputExists)
	assert.FileExists(t, filepath.Join(dir, "keep.txt"))

	opts := DefaultOptions()
	opts.Overwrite = true
	res, err := newConverter(t, opts).Convert(context.Background(), path)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "keep.txt"))
	assert.FileExists(t, filepath.Join(res.Dir, "sprite_legend.png"))
	assert.ElementsMatch(t, []string{"sprite.png", "sprite"}, dirNames(t, src))
}

func TestConvertUnwritableOutput(t *testing.T) {
	src := t.TempDir()
	path := writeImage(t, filepath.Join(src, "sprite.png"), sprite())
	blocker := filepath.Join(src, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	opts := DefaultOptions()
	opts.OutDir = filepath.Join(blocker, "out")
	_, err := newConverter(t, opts).Convert(context.Background(), path)
	var writeErr *OutputWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, filepath.Join(blocker, "out", "sprite"), writeErr.Path)
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestConvertRenderLimit(t *testing.T) {
	src := t.TempDir()
	path := writeImage(t, filepath.Join(src, "wide.png"), stripe(70, 3, red, green))

	opts := DefaultOptions()
	opts.Renderers = 1
	res, err := newConverter(t, opts).Convert(context.Background(), path)
	require.NoError(t, err)

	// legend, summary, palette, 4+3 complete charts, 2 segments of 3 kinds in 2 sets
	require.Len(t, res.Files, 22)
	for _, name := range res.Files {
		assert.FileExists(t, filepath.Join(res.Dir, filepath.FromSlash(name)))
	}
	assert.Contains(t, res.Files, "centered/wide_cross_stitch_segment_2.png")
}

func TestConvertFailedWrite(t *testing.T) {
	src := t.TempDir()
	path := writeImage(t, filepath.Join(src, "wide.png"), stripe(70, 3, red, green))

	create := createFile
	t.Cleanup(func() { createFile = create })
	createFile = func(name string) (*os.File, error) {
		if strings.Contains(name, "_segment_2") {
			return nil, errors.New("disk full")
		}
		return create(name)
	}

	_, err := newConverter(t, DefaultOptions()).Convert(context.Background(), path)
	var writeErr *OutputWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, filepath.Join(src, "wide"), writeErr.Path)
	assert.ErrorContains(t, err, "disk full")

	assert.Equal(t, []string{"wide.png"}, dirNames(t, src))
}

func TestCommitRestoresPrevious(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "sprite")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644))

	out, err := createOutput(dir, true)
	require.NoError(t, err)
	require.NoError(t, out.writeFile("new.txt", func(w io.Writer) error {
		_, err := w.Write([]byte("y"))
		return err
	}))

	// staged folder vanished: the move fails and the previous output is put back
	require.NoError(t, os.RemoveAll(out.tmp))
	_, err = out.commit()
	var writeErr *OutputWriteError
	require.ErrorAs(t, err, &writeErr)
	out.discard()

	assert.FileExists(t, filepath.Join(dir, "keep.txt"))
	assert.Equal(t, []string{"sprite"}, dirNames(t, parent))
}

func TestConvertCanceled(t *testing.T) {
	src := t.TempDir()
	path := writeImage(t, filepath.Join(src, "sprite.png"), sprite())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newConverter(t, DefaultOptions()).Convert(ctx, path)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"sprite.png"}, listDir(t, src))
}

func TestBatch(t *testing.T) {
	src := t.TempDir()
	paths := []string{
		writeImage(t, filepath.Join(src, "a.png"), sprite()),
		writeImage(t, filepath.Join(src, "b.bmp"), sprite()),
		writeImage(t, filepath.Join(src, "c.png"), stripe(4, 4, green, blue)),
		writeImage(t, filepath.Join(src, "a.gif"), gifSprite()),
		filepath.Join(src, "missing.png"),
	}

	pool := parallel.Start(2)
	report := newConverter(t, DefaultOptions()).Batch(context.Background(), paths, pool.Do, pool.Wait)

	require.Len(t, report.Results, 2)
	assert.Equal(t, paths[0], report.Results[0].Image)
	assert.Equal(t, paths[2], report.Results[1].Image)

	require.Len(t, report.Failures, 3)
	assert.Equal(t, paths[1], report.Failures[0].Image)
	var unsupported *palette.UnsupportedFormatError
	assert.ErrorAs(t, report.Failures[0].Err, &unsupported)
	assert.Equal(t, paths[3], report.Failures[1].Image)
	assert.ErrorIs(t, report.Failures[1].Err, ErrOutputExists)
	assert.Equal(t, paths[4], report.Failures[2].Image)
	assert.ErrorIs(t, report.Failures[2].Err, os.ErrNotExist)

	assert.EqualError(t, report.Err(), "error processing 3 files")
	assert.DirExists(t, filepath.Join(src, "a"))
	assert.DirExists(t, filepath.Join(src, "c"))
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "loaded", Loaded.String())
	assert.Equal(t, "written", Written.String())
	assert.Equal(t, "stage(9)", Stage(9).String())
}

// writeResources stores the first n built-in symbols as black on white PNG
// files named 1.png to n.png.
func writeResources(t *testing.T, dir string, n int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	builtin := symbol.Builtin()
	for i := range n {
		mask := builtin.At(i).Mask
		img := image.NewNRGBA(mask.Bounds())
		for y := range mask.Bounds().Dy() {
			for x := range mask.Bounds().Dx() {
				c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
				if mask.AlphaAt(x, y).A > 0 {
					c = color.NRGBA{A: 255}
				}
				img.SetNRGBA(x, y, c)
			}
		}
		writeImage(t, filepath.Join(dir, strconv.Itoa(i+1)+".png"), img)
	}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var cmd CLICmd
	var stdout, stderr bytes.Buffer
	parser, err := kong.New(&cmd,
		kong.Name("pixiestitch"),
		kong.Writers(&stdout, &stderr),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
		Vars,
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	if err != nil {
		return stdout.String(), stderr.String(), err
	}
	pool := parallel.Start(cmd.Workers)
	err = kctx.Run(pool.Do, pool.Wait)
	return stdout.String(), stderr.String(), err
}

func TestCLI(t *testing.T) {
	src := t.TempDir()
	res := filepath.Join(src, "res")
	writeResources(t, res, 3)
	ok := writeImage(t, filepath.Join(src, "ok.png"), stripe(3, 2, red, green, blue))
	busy := writeImage(t, filepath.Join(src, "busy.png"), stripe(4, 1, red, green, blue, color.NRGBA{A: 255}))
	out := filepath.Join(src, "out")

	stdout, stderr, err := runCLI(t, ok, busy, "--resources", res, "--out", out, "--no-centered", "--order", "hue", "--workers", "1")
	require.EqualError(t, err, "error processing 1 files")
	assert.Contains(t, stdout, ok)
	assert.Contains(t, stdout, "3 colors, 6 stitches")
	assert.Contains(t, stderr, busy)
	assert.Contains(t, stderr, "image uses 4 distinct colors, only 3 are supported")

	assert.DirExists(t, filepath.Join(out, "ok"))
	assert.NoDirExists(t, filepath.Join(out, "ok", "centered"))
	assert.NoDirExists(t, filepath.Join(out, "busy"))
}

func TestCLIValidate(t *testing.T) {
	_, _, err := runCLI(t, "x.png", "--cell-size", "0")
	assert.ErrorContains(t, err, "invalid cell size")

	_, _, err = runCLI(t, "x.png", "--resources", filepath.Join(t.TempDir(), "none"))
	assert.ErrorContains(t, err, "invalid resources")

	_, _, err = runCLI(t, "x.png", "--order", "random")
	assert.Error(t, err)
}

func TestFailureIsReported(t *testing.T) {
	err := (&Report{Failures: []Failure{{Image: "x", Err: errors.New("boom")}}}).Err()
	assert.EqualError(t, err, "error processing 1 files")
	assert.NoError(t, (&Report{}).Err())
}

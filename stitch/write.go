package stitch

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// output stages the files of a pattern folder in a hidden sibling folder and
// moves it into place once everything has been written.
type output struct {
	dir       string
	tmp       string
	overwrite bool

	mu    sync.Mutex
	files []string
}

func createOutput(dir string, overwrite bool) (*output, error) {
	if err := checkDest(dir, overwrite); err != nil {
		return nil, err
	}

	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, &OutputWriteError{Path: dir, Err: fmt.Errorf("unable to create destination folder %q: %w", parent, err)}
	}

	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(dir)+"-*")
	if err != nil {
		return nil, &OutputWriteError{Path: dir, Err: fmt.Errorf("could not create temporary folder: %w", err)}
	}

	return &output{dir: dir, tmp: tmp, overwrite: overwrite}, nil
}

func checkDest(dir string, overwrite bool) error {
	info, err := os.Stat(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return &OutputWriteError{Path: dir, Err: fmt.Errorf("cannot stat destination: %w", err)}
		}
		return nil
	}

	if !overwrite {
		return &OutputWriteError{Path: dir, Err: ErrOutputExists}
	}
	if !info.IsDir() {
		return &OutputWriteError{Path: dir, Err: fmt.Errorf("destination is not a folder: %s", info.Mode().String())}
	}
	return nil
}

// writeFile creates name below the staging folder and hands it to write.
func (o *output) writeFile(name string, write func(io.Writer) error) (err error) {
	dest := filepath.Join(o.tmp, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return &OutputWriteError{Path: o.dir, Err: fmt.Errorf("unable to create folder for %q: %w", name, err)}
	}

	outFile, err := createFile(dest)
	if err != nil {
		return &OutputWriteError{Path: o.dir, Err: fmt.Errorf("could not create %q: %w", name, err)}
	}
	defer func() {
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = &OutputWriteError{Path: o.dir, Err: fmt.Errorf("could not close %q: %w", name, defErr)}
		}
	}()

	buf := bufio.NewWriter(outFile)
	if err := write(buf); err != nil {
		return &OutputWriteError{Path: o.dir, Err: fmt.Errorf("could not write %q: %w", name, err)}
	}
	if err := buf.Flush(); err != nil {
		return &OutputWriteError{Path: o.dir, Err: fmt.Errorf("could not write %q: %w", name, err)}
	}
	if err := outFile.Sync(); err != nil {
		return &OutputWriteError{Path: o.dir, Err: fmt.Errorf("could not flush %q: %w", name, err)}
	}

	o.mu.Lock()
	o.files = append(o.files, name)
	o.mu.Unlock()
	return nil
}

func (o *output) writePNG(name string, img image.Image) error {
	return o.writeFile(name, func(w io.Writer) error {
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		return enc.Encode(w, img)
	})
}

// commit publishes the staged folder and returns the written file names in
// lexical order. A replaced folder is kept aside until the new one is in
// place.
func (o *output) commit() ([]string, error) {
	var backup string
	if o.overwrite {
		if _, err := os.Stat(o.dir); err == nil {
			backup = o.tmp + "-old"
			if err := os.Rename(o.dir, backup); err != nil {
				return nil, &OutputWriteError{Path: o.dir, Err: fmt.Errorf("could not move previous output aside: %w", err)}
			}
		}
	}

	if err := os.Rename(o.tmp, o.dir); err != nil {
		if backup != "" {
			if defErr := os.Rename(backup, o.dir); defErr != nil {
				slog.Error("could not restore previous output", "dir", o.dir, "backup", backup, "error", defErr)
			}
		}
		return nil, &OutputWriteError{Path: o.dir, Err: fmt.Errorf("could not move output into place: %w", err)}
	}

	if backup != "" {
		if err := os.RemoveAll(backup); err != nil {
			slog.Error("could not remove previous output", "dir", backup, "error", err)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	slices.Sort(o.files)
	return slices.Clone(o.files), nil
}

// discard removes the staging folder. It is a no-op after commit.
func (o *output) discard() {
	if err := os.RemoveAll(o.tmp); err != nil {
		slog.Error("could not remove temporary output", "dir", o.tmp, "error", err)
	}
}

// createFile is replaced in tests to simulate failing disks.
var createFile = os.Create

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}

package stitch

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"pixiestitch/parallel"
)

// Failure is an image that could not be converted.
type Failure struct {
	Image string
	Err   error
}

// Report lists the outcome of a batch in input order.
type Report struct {
	Results  []*Result
	Failures []Failure
}

// Err summarises the failures of the batch, nil when every image was
// converted.
func (r *Report) Err() error {
	if len(r.Failures) > 0 {
		return fmt.Errorf("error processing %d files", len(r.Failures))
	}
	return nil
}

// Batch converts every path on the given workers. A failing image is logged
// and counted, the others keep going.
func (c *Converter) Batch(ctx context.Context, paths []string, worker parallel.WorkerFunc, wait parallel.WaitFunc) *Report {
	results := make([]*Result, len(paths))
	errs := make([]error, len(paths))

	// two inputs sharing a base name would race for the same folder
	claimed := make(map[string]string, len(paths))

	var processedCount, errCount atomic.Uint64
	for i, path := range paths {
		dir := c.OutputDir(path)
		if first, ok := claimed[dir]; ok {
			errCount.Add(1)
			errs[i] = &OutputWriteError{Path: dir, Err: fmt.Errorf("%w: also produced by %q", ErrOutputExists, first)}
			slog.Error("could not convert image", "file", path, "error", errs[i])
			continue
		}
		claimed[dir] = path

		worker(func() {
			if err := ctx.Err(); err != nil {
				errCount.Add(1)
				errs[i] = err
				return
			}

			res, err := c.Convert(ctx, path)
			if err != nil {
				errCount.Add(1)
				errs[i] = err
				slog.Error("could not convert image", "file", path, "error", err)
				return
			}
			processedCount.Add(1)
			results[i] = res
		})
	}

	wait(true)

	processed := processedCount.Load()
	errors := errCount.Load()
	slog.Info("stats", "processed", processed, "errors", errors,
		"total", processed+errors)

	report := &Report{}
	for i, path := range paths {
		if errs[i] != nil {
			report.Failures = append(report.Failures, Failure{Image: path, Err: errs[i]})
		} else if results[i] != nil {
			report.Results = append(report.Results, results[i])
		}
	}
	return report
}

package stitch

import (
	"errors"
	"fmt"
)

// ErrOutputExists is wrapped by an OutputWriteError when the pattern folder
// is already there and overwriting was not requested.
var ErrOutputExists = errors.New("output folder already exists")

// OutputWriteError reports a pattern folder that could not be written. No
// part of it is left behind.
type OutputWriteError struct {
	Path string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("could not write output %q: %v", e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() error {
	return e.Err
}

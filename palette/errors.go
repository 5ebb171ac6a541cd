package palette

import "fmt"

// UnsupportedFormatError is returned for input that is not a decodable PNG or GIF.
type UnsupportedFormatError struct {
	Format string // sniffed format name, empty if unknown
	Err    error
}

func (e *UnsupportedFormatError) Error() string {
	switch {
	case e.Format != "" && e.Err != nil:
		return fmt.Sprintf("unsupported image: could not decode %s: %v", e.Format, e.Err)
	case e.Format != "":
		return fmt.Sprintf("unsupported image format %q, only png and gif are supported", e.Format)
	case e.Err != nil:
		return fmt.Sprintf("unsupported image: %v", e.Err)
	}
	return "unsupported image: unknown format"
}

func (e *UnsupportedFormatError) Unwrap() error {
	return e.Err
}

// TooManyColorsError reports an image using more distinct opaque colors than
// there are symbols to represent them.
type TooManyColorsError struct {
	Count int
	Max   int
}

func (e *TooManyColorsError) Error() string {
	return fmt.Sprintf("image uses %d distinct colors, only %d are supported", e.Count, e.Max)
}

package palette

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads a PNG or GIF image. Other registered formats are still
// recognised, so that the error can name them, but are refused with an
// UnsupportedFormatError. For animated GIFs only the first frame is used.
func Decode(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("could not read image: %w", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if format == "" {
		if errors.Is(err, image.ErrFormat) {
			err = nil
		}
		return nil, "", &UnsupportedFormatError{Err: err}
	}

	var img image.Image
	switch format {
	case "png":
		img, err = png.Decode(bytes.NewReader(data))
	case "gif":
		img, err = gif.Decode(bytes.NewReader(data))
	default:
		return nil, format, &UnsupportedFormatError{Format: format}
	}
	if err != nil {
		return nil, format, &UnsupportedFormatError{Format: format, Err: err}
	}

	return img, format, nil
}

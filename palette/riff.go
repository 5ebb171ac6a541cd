package palette

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"

	"golang.org/x/image/riff"
)

/*
typedef struct tagLOGPALETTE {
  WORD         palVersion;
  WORD         palNumEntries;
  PALETTEENTRY palPalEntry[1];
} LOGPALETTE;

typedef struct tagPALETTEENTRY {
  BYTE peRed;
  BYTE peGreen;
  BYTE peBlue;
  BYTE peFlags;
} PALETTEENTRY;
*/

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

const palVersion = 0x0300

// WritePAL stores the palette as a Microsoft RIFF palette with a single data
// chunk. PAL entries carry no alpha, so every color is written opaque.
func WritePAL(w io.Writer, pal *Palette) (int64, error) {
	n := pal.Len()
	chunkSize := 4 + n*4 // palVersion + palNumEntries + 4 bytes/color
	docSize := 4 + 8 + chunkSize

	var count int64
	write := func(b []byte, what string) error {
		if err := writeBytes(w, b); err != nil {
			return fmt.Errorf("could not write %s: %w", what, err)
		}
		count += int64(len(b))
		return nil
	}

	if err := write(riffType[:], "RIFF magic"); err != nil {
		return count, err
	}
	if err := write(binary.LittleEndian.AppendUint32(nil, uint32(docSize)), "document size"); err != nil {
		return count, err
	}
	if err := write(palType[:], "content type"); err != nil {
		return count, err
	}
	if err := write(dataType[:], "chunk type"); err != nil {
		return count, err
	}
	if err := write(binary.LittleEndian.AppendUint32(nil, uint32(chunkSize)), "chunk size"); err != nil {
		return count, err
	}
	if err := write(binary.LittleEndian.AppendUint16(nil, palVersion), "palette version"); err != nil {
		return count, err
	}
	if err := write(binary.LittleEndian.AppendUint16(nil, uint16(n)), "number of colors"); err != nil {
		return count, err
	}

	buf := make([]byte, 0, n*4)
	for _, c := range pal.colors {
		buf = append(buf, c.R, c.G, c.B, 0x00)
	}
	if err := write(buf, "colors"); err != nil {
		return count, err
	}

	return count, nil
}

// ReadPAL reads the colors of every data chunk of a RIFF palette.
func ReadPAL(r io.Reader) ([]color.NRGBA, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open RIFF stream: %w", err)
	} else if formType != palType {
		return nil, fmt.Errorf("unsupported RIFF content type: %s", string(formType[:]))
	}

	var res []color.NRGBA
	for chunk := 0; ; chunk++ {
		id, _, data, err := rd.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return res, fmt.Errorf("could not read chunk #%d: %w", chunk, err)
		}
		if id != dataType {
			// unknown chunks are allowed by RIFF and skipped
			continue
		}

		cols, err := readPalette(data, chunk)
		if err != nil {
			return res, err
		}
		res = append(res, cols...)
	}

	return res, nil
}

func readPalette(r io.Reader, chunk int) ([]color.NRGBA, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("could not read header from chunk #%d: %w", chunk, err)
	}

	if ver := binary.LittleEndian.Uint16(hdr[:2]); ver != palVersion {
		return nil, fmt.Errorf("unsupported palette version in chunk #%d: %#x", chunk, ver)
	}

	count := int(binary.LittleEndian.Uint16(hdr[2:]))
	buf := make([]byte, count*4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("could not read %d colors from chunk #%d: %w", count, chunk, err)
	}

	res := make([]color.NRGBA, count)
	for i := range res {
		res[i] = color.NRGBA{R: buf[i*4], G: buf[i*4+1], B: buf[i*4+2], A: 0xFF}
	}
	return res, nil
}

func writeBytes(w io.Writer, b []byte) error {
	n, err := w.Write(b)
	if err != nil {
		return err
	} else if n != len(b) {
		return fmt.Errorf("wrote only %d/%d bytes", n, len(b))
	}

	return nil
}

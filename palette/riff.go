package palette

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/image/riff"
)

/*
RIFF PAL layout, one "data" chunk per palette:

typedef struct tagLOGPALETTE {
  WORD         palVersion;     // 0x0300
  WORD         palNumEntries;
  PALETTEENTRY palPalEntry[1]; // peRed, peGreen, peBlue, peFlags
} LOGPALETTE;
*/

const palVersion = 0x0300

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

var ErrTooManyEntries = errors.New("palette has more than 256 entries")

// ReadRIFF loads every palette stored in a RIFF PAL stream. Palettes with
// fewer than Size entries are padded with black.
func ReadRIFF(r io.Reader) ([]Palette, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open RIFF stream: %w", err)
	} else if formType != palType {
		return nil, fmt.Errorf("unsupported RIFF content type: %s", string(formType[:]))
	}

	return readChunks(rd, string(formType[:]))
}

func readChunks(r *riff.Reader, ident string) ([]Palette, error) {
	var res []Palette

	for {
		id, size, data, err := r.Next()
		if err != nil {
			if err == io.EOF {
				return res, nil
			}
			return res, fmt.Errorf("could not read chunk %q#%d: %w", ident, len(res), err)
		}

		switch id {
		case riff.LIST:
			listType, list, err := riff.NewListReader(size, data)
			if err != nil {
				return res, fmt.Errorf("could not read list from chunk %q#%d: %w", ident, len(res), err)
			} else if listType != palType {
				return res, fmt.Errorf("chunk %q#%d unsupported list type: %s", ident, len(res), string(listType[:]))
			}

			nested, err := readChunks(list, fmt.Sprintf("%s%d.%s", ident, len(res), listType[:]))
			res = append(res, nested...)
			if err != nil {
				return res, err
			}
		case dataType:
			pal, err := readChunk(data, fmt.Sprintf("%s%d", ident, len(res)))
			if err != nil {
				return res, err
			}
			res = append(res, pal)
		default:
			return res, fmt.Errorf("unsupported chunk type in %q#%d: %s", ident, len(res), string(id[:]))
		}
	}
}

func readChunk(r io.Reader, ident string) (Palette, error) {
	var pal Palette
	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return pal, fmt.Errorf("could not read header from chunk %s: %w", ident, err)
	}

	if ver := binary.LittleEndian.Uint16(head[0:2]); ver != palVersion {
		return pal, fmt.Errorf("unsupported palette version in chunk %s: %#04x", ident, ver)
	}

	count := int(binary.LittleEndian.Uint16(head[2:4]))
	if count > Size {
		return pal, fmt.Errorf("%w: chunk %s holds %d", ErrTooManyEntries, ident, count)
	}

	var entry [4]byte
	for i := range count {
		if _, err := io.ReadFull(r, entry[:]); err != nil {
			return pal, fmt.Errorf("could not read color %d/%d from chunk %s: %w", i, count, ident, err)
		}
		pal[i] = Color{R: entry[0], G: entry[1], B: entry[2]}
	}

	return pal, nil
}

// WriteRIFF stores pals as a RIFF PAL stream, one data chunk each. It returns
// the number of bytes written.
func WriteRIFF(w io.Writer, pals ...*Palette) (int64, error) {
	const chunkLen = 4 + Size*4 // palVersion + palNumEntries + entries

	size := 4 // form type
	size += len(pals) * (8 + chunkLen)

	buf := make([]byte, 0, 8+size)
	buf = append(buf, riffType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(size))
	buf = append(buf, palType[:]...)

	for _, pal := range pals {
		buf = append(buf, dataType[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, chunkLen)
		buf = binary.LittleEndian.AppendUint16(buf, palVersion)
		buf = binary.LittleEndian.AppendUint16(buf, Size)
		for _, c := range pal {
			buf = append(buf, c.R, c.G, c.B, 0x00)
		}
	}

	n, err := w.Write(buf)
	if err != nil {
		return int64(n), fmt.Errorf("could not save palette: %w", err)
	} else if n != len(buf) {
		return int64(n), fmt.Errorf("could not save palette: wrote only %d/%d bytes", n, len(buf))
	}
	return int64(n), nil
}

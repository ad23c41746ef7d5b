package processing

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/menta2k/image-scaler/pkg/types"
)

const inchesPerMeter = 1 / 0.0254

var (
	pngSignature = []byte("\x89PNG\r\n\x1a\n")
	jfifID       = []byte("JFIF\x00")
)

// EmbedDPI records ppi as the resolution of an encoded image. PNG gets a
// pHYs chunk and JPEG a JFIF APP0 segment; other formats are returned as is.
func EmbedDPI(data []byte, format string, ppi float64) ([]byte, error) {
	switch format {
	case "png":
		return embedPNGDensity(data, ppi)
	case "jpeg":
		return embedJFIFDensity(data, ppi)
	default:
		return data, nil
	}
}

// DPI reads the resolution stored by EmbedDPI. ok is false when the image
// carries no resolution in inch-based units.
func DPI(data []byte, format string) (dpi float64, ok bool) {
	switch format {
	case "png":
		for off := len(pngSignature); off+12 <= len(data); {
			n := int(binary.BigEndian.Uint32(data[off:]))
			if off+12+n > len(data) {
				return 0, false
			}
			if string(data[off+4:off+8]) == "pHYs" && n == 9 && data[off+16] == 1 {
				ppm := binary.BigEndian.Uint32(data[off+8:])
				return float64(ppm) / inchesPerMeter, true
			}
			off += 12 + n
		}
	case "jpeg":
		if len(data) >= 20 && data[2] == 0xFF && data[3] == 0xE0 && bytes.Equal(data[6:11], jfifID) && data[13] == 1 {
			return float64(binary.BigEndian.Uint16(data[14:])), true
		}
	}
	return 0, false
}

func embedPNGDensity(data []byte, ppi float64) ([]byte, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, fmt.Errorf("%w: not a png stream", types.ErrEncode)
	}

	ppmf := math.Max(math.Round(ppi*inchesPerMeter), 1)
	if ppmf > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %v ppi cannot be stored in a png pHYs chunk", types.ErrEncode, ppi)
	}
	ppm := uint32(ppmf)
	payload := make([]byte, 9)
	binary.BigEndian.PutUint32(payload[0:], ppm)
	binary.BigEndian.PutUint32(payload[4:], ppm)
	payload[8] = 1 // unit: metre
	chunk := pngChunk("pHYs", payload)

	// IHDR is always the first chunk; pHYs must precede IDAT.
	insertAt := -1
	for off := len(pngSignature); off+12 <= len(data); {
		n := int(binary.BigEndian.Uint32(data[off:]))
		end := off + 12 + n
		if end > len(data) {
			break
		}
		switch string(data[off+4 : off+8]) {
		case "IHDR":
			insertAt = end
		case "pHYs":
			out := make([]byte, 0, len(data)-(end-off)+len(chunk))
			out = append(out, data[:off]...)
			out = append(out, chunk...)
			return append(out, data[end:]...), nil
		case "IDAT", "IEND":
			off = len(data)
			continue
		}
		off = end
	}
	if insertAt < 0 {
		return nil, fmt.Errorf("%w: png stream has no IHDR chunk", types.ErrEncode)
	}

	out := make([]byte, 0, len(data)+len(chunk))
	out = append(out, data[:insertAt]...)
	out = append(out, chunk...)
	return append(out, data[insertAt:]...), nil
}

func pngChunk(name string, payload []byte) []byte {
	chunk := make([]byte, 8, 12+len(payload))
	binary.BigEndian.PutUint32(chunk[0:], uint32(len(payload)))
	copy(chunk[4:], name)
	chunk = append(chunk, payload...)
	crc := crc32.ChecksumIEEE(chunk[4:])
	return binary.BigEndian.AppendUint32(chunk, crc)
}

func embedJFIFDensity(data []byte, ppi float64) ([]byte, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, fmt.Errorf("%w: not a jpeg stream", types.ErrEncode)
	}

	densityf := math.Max(math.Round(ppi), 1)
	if densityf > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %v ppi cannot be stored in a jfif header", types.ErrEncode, ppi)
	}
	density := uint16(densityf)

	// An existing JFIF header directly after SOI is patched in place.
	if len(data) >= 20 && data[2] == 0xFF && data[3] == 0xE0 && bytes.Equal(data[6:11], jfifID) {
		out := bytes.Clone(data)
		out[13] = 1 // unit: dots per inch
		binary.BigEndian.PutUint16(out[14:], density)
		binary.BigEndian.PutUint16(out[16:], density)
		return out, nil
	}

	// marker, length 16, "JFIF\0", version 1.01, unit dpi, density, no thumbnail
	app0 := []byte{
		0xFF, 0xE0,
		0x00, 0x10,
		'J', 'F', 'I', 'F', 0x00,
		0x01, 0x01,
		0x01,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00,
	}
	binary.BigEndian.PutUint16(app0[12:], density)
	binary.BigEndian.PutUint16(app0[14:], density)

	out := make([]byte, 0, len(data)+len(app0))
	out = append(out, data[:2]...)
	out = append(out, app0...)
	return append(out, data[2:]...), nil
}

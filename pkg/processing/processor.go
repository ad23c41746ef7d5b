package processing

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/menta2k/image-scaler/pkg/types"
)

// Processor handles resampling and encoding of image variants
type Processor struct{}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{}
}

// Resize resamples img to exactly width x height using a Lanczos filter.
// An image that already has the requested size is cloned instead.
func (p *Processor) Resize(img image.Image, width, height int) image.Image {
	// imaging treats a zero dimension as "keep aspect ratio"
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// FormatFromFilename returns the lower-case encoder name for the file
// extension of name, e.g. "jpeg", "png" or "webp".
func FormatFromFilename(name string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return normalizeFormat(ext)
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(format)
	if format == "webp" {
		return "webp", nil
	}
	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return "", fmt.Errorf("%w: unsupported output format %q", types.ErrEncode, format)
	}
	return strings.ToLower(f.String()), nil
}

// Encode writes img to w in the given format. When ppi is positive it is
// recorded as DPI metadata for formats that carry it (PNG and JPEG).
func (p *Processor) Encode(w io.Writer, img image.Image, format string, opts types.EncodeOptions, ppi float64) error {
	format, err := normalizeFormat(format)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case "webp":
		wopts := &webp.Options{Lossless: opts.Lossless, Quality: float32(quality(opts))}
		if err := webp.Encode(&buf, img, wopts); err != nil {
			return fmt.Errorf("%w: webp: %w", types.ErrEncode, err)
		}
	default:
		f, _ := imaging.FormatFromExtension(format)
		encOpts := []imaging.EncodeOption{
			imaging.JPEGQuality(quality(opts)),
			imaging.PNGCompressionLevel(png.CompressionLevel(opts.PNGCompression)),
		}
		if err := imaging.Encode(&buf, img, f, encOpts...); err != nil {
			return fmt.Errorf("%w: %s: %w", types.ErrEncode, format, err)
		}
	}

	data := buf.Bytes()
	if ppi > 0 {
		data, err = EmbedDPI(data, format, ppi)
		if err != nil {
			return err
		}
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: failed to write image data: %w", types.ErrFilesystem, err)
	}
	return nil
}

// SaveImage encodes img and writes it to path, replacing any existing file.
// The format follows the path extension; fallbackFormat is used when the
// extension is missing or unknown.
func (p *Processor) SaveImage(img image.Image, path, fallbackFormat string, opts types.EncodeOptions, ppi float64) error {
	format, err := FormatFromFilename(path)
	if err != nil {
		if fallbackFormat == "" {
			return err
		}
		if format, err = normalizeFormat(fallbackFormat); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := p.Encode(&buf, img, format, opts, ppi); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", types.ErrFilesystem, path, err)
	}
	return nil
}

func quality(opts types.EncodeOptions) int {
	if opts.Quality < 1 || opts.Quality > 100 {
		return 85
	}
	return opts.Quality
}

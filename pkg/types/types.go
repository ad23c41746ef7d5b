package types

import (
	"image"
	"path/filepath"
	"strings"
)

// Size is a pair of dimensions. Screen sizes are in inches and may be fractional.
type Size struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Screen pairs a variant label with the physical size it must fit into
type Screen struct {
	Label string `json:"label" yaml:"label"`
	Size  Size   `json:"size" yaml:"size"`
}

// EncodeOptions controls how resized variants are written
type EncodeOptions struct {
	Quality        int  `json:"quality" yaml:"quality"`
	Lossless       bool `json:"lossless" yaml:"lossless"`
	PNGCompression int  `json:"png_compression" yaml:"png_compression"`
}

// SourceImage is a decoded source image. It is not modified after loading.
type SourceImage struct {
	Image    image.Image
	Filename string
	Format   string
	Width    int
	Height   int
}

// NewSourceImage wraps a decoded image together with the file it came from
func NewSourceImage(img image.Image, filename, format string) *SourceImage {
	b := img.Bounds()
	return &SourceImage{
		Image:    img,
		Filename: filename,
		Format:   format,
		Width:    b.Dx(),
		Height:   b.Dy(),
	}
}

// BaseAndExt splits the source filename into its base name and extension.
// The extension keeps its leading dot.
func (s *SourceImage) BaseAndExt() (string, string) {
	name := filepath.Base(s.Filename)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if strings.Trim(base, ".") == "" {
		// dotfiles such as ".png" have no extension
		return name, ""
	}
	return base, ext
}

// Variant is one resized copy of a source image
type Variant struct {
	Screen Screen
	Width  int
	Height int
	Image  image.Image
}

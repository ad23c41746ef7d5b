package analyzer

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/image-scaler/pkg/types"
)

// ImageAnalyzer loads source images and reports basic information about them
type ImageAnalyzer struct {
	config Config
}

// Config holds configuration for the image analyzer.
// AutoOrientation applies the EXIF orientation tag on load, which changes the
// dimensions variants are fitted from; it is off by default so sizes follow
// the stored pixel grid.
type Config struct {
	SupportedFormats []string
	AutoOrientation  bool
}

// DefaultSupportedFormats lists the decoder format names accepted by default
var DefaultSupportedFormats = []string{"jpeg", "png", "gif", "tiff", "bmp", "webp"}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{
		config: Config{
			SupportedFormats: DefaultSupportedFormats,
		},
	}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration.
// An empty SupportedFormats list means DefaultSupportedFormats.
func NewWithConfig(config Config) *ImageAnalyzer {
	if len(config.SupportedFormats) == 0 {
		config.SupportedFormats = DefaultSupportedFormats
	}
	return &ImageAnalyzer{config: config}
}

// LoadSource opens and decodes the image at path
func (a *ImageAnalyzer) LoadSource(path string) (*types.SourceImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open image file: %w", types.ErrDecode, err)
	}
	return a.decode(data, path)
}

// LoadSourceFromReader decodes an image from reader. filename is used to
// derive output names and does not need to exist on disk.
func (a *ImageAnalyzer) LoadSourceFromReader(reader io.Reader, filename string) (*types.SourceImage, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image data: %w", types.ErrDecode, err)
	}
	return a.decode(data, filename)
}

func (a *ImageAnalyzer) decode(data []byte, filename string) (*types.SourceImage, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// chai2010 handles some WebP variants the x/image decoder rejects
		if img, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
			return a.accept(img, filename, "webp")
		}
		return nil, fmt.Errorf("%w: failed to decode image %s: %w", types.ErrDecode, filename, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(a.config.AutoOrientation))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image %s: %w", types.ErrDecode, filename, err)
	}
	return a.accept(img, filename, format)
}

func (a *ImageAnalyzer) accept(img image.Image, filename, format string) (*types.SourceImage, error) {
	if !a.isFormatSupported(format) {
		return nil, fmt.Errorf("%w: unsupported image format: %s", types.ErrDecode, format)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image %s has no pixels", types.ErrDecode, filename)
	}
	return types.NewSourceImage(img, filename, format), nil
}

// GetImageInfo returns basic information about an image
func (a *ImageAnalyzer) GetImageInfo(img image.Image) ImageInfo {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	info := ImageInfo{
		Width:  width,
		Height: height,
		Area:   width * height,
	}
	if height > 0 {
		info.AspectRatio = float64(width) / float64(height)
	}
	return info
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Area        int     `json:"area"`
}

func (a *ImageAnalyzer) isFormatSupported(format string) bool {
	for _, supported := range a.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}

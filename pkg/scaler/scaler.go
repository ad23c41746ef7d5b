// Package scaler fits images into a set of physical screen sizes and writes
// one variant per screen into a directory named after its label.
package scaler

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/menta2k/image-scaler/pkg/processing"
	"github.com/menta2k/image-scaler/pkg/types"
)

// ImageScaler produces the configured size variants of a source image
type ImageScaler struct {
	config    Config
	processor *processing.Processor
	logger    *zap.Logger
}

// New creates a new ImageScaler with default configuration
func New() *ImageScaler {
	return &ImageScaler{
		config:    DefaultConfig(),
		processor: processing.NewProcessor(),
		logger:    zap.NewNop(),
	}
}

// NewWithConfig creates a new ImageScaler with custom configuration
func NewWithConfig(config Config) (*ImageScaler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	screens := make([]types.Screen, len(config.Screens))
	copy(screens, config.Screens)
	config.Screens = screens

	return &ImageScaler{
		config:    config,
		processor: processing.NewProcessor(),
		logger:    zap.NewNop(),
	}, nil
}

// SetLogger attaches a logger. A nil logger disables logging.
func (s *ImageScaler) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
}

// Config returns the scaler configuration
func (s *ImageScaler) Config() Config {
	return s.config
}

// ComputeFitDimensions returns the largest size that keeps the aspect ratio of
// a nativeWidth x nativeHeight image and fits within screen (in inches) at
// ppi. Images that already fit are never enlarged.
//
// Results are truncated, not rounded.
func ComputeFitDimensions(nativeWidth, nativeHeight int, screen types.Size, ppi float64) (int, int) {
	boundX := screen.X * ppi
	boundY := screen.Y * ppi

	w := float64(nativeWidth)
	h := float64(nativeHeight)

	scaleX := 1.0
	if w >= boundX {
		scaleX = boundX / w
	}
	scaleY := 1.0
	if h >= boundY {
		scaleY = boundY / h
	}

	m := min(scaleX, scaleY)
	return int(w * m), int(h * m)
}

// TargetDimensions returns the pixel size of every configured variant of a
// width x height image, in configured order
func (s *ImageScaler) TargetDimensions(width, height int) [][2]int {
	dims := make([][2]int, len(s.config.Screens))
	for i, screen := range s.config.Screens {
		w, h := ComputeFitDimensions(width, height, screen.Size, s.config.PPI)
		dims[i] = [2]int{w, h}
	}
	return dims
}

// ScaleForScreens resizes src once per configured screen, in configured order
func (s *ImageScaler) ScaleForScreens(src *types.SourceImage) []types.Variant {
	variants := make([]types.Variant, len(s.config.Screens))
	for i, screen := range s.config.Screens {
		w, h := ComputeFitDimensions(src.Width, src.Height, screen.Size, s.config.PPI)
		variants[i] = types.Variant{
			Screen: screen,
			Width:  w,
			Height: h,
			Image:  s.processor.Resize(src.Image, w, h),
		}
	}
	return variants
}

// OutputPath returns where the variant labelled label of src is written
// under outDir: outDir/label/base_label.ext
func OutputPath(src *types.SourceImage, outDir, label string) string {
	base, ext := src.BaseAndExt()
	return filepath.Join(outDir, label, base+"_"+label+ext)
}

// SaveMultipleSizes writes every variant of src below outDir and returns the
// written paths in configured order. An empty outDir means the working
// directory. Writing stops at the first failure; files already written are
// left in place.
func (s *ImageScaler) SaveMultipleSizes(src *types.SourceImage, outDir string) ([]string, error) {
	variants := s.ScaleForScreens(src)
	written := make([]string, 0, len(variants))

	for _, v := range variants {
		label := v.Screen.Label
		dir := filepath.Join(outDir, label)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return written, fmt.Errorf("%w: failed to create directory %s: %w", types.ErrFilesystem, dir, err)
		}

		path := OutputPath(src, outDir, label)
		if err := s.processor.SaveImage(v.Image, path, src.Format, s.config.Encoding, s.config.PPI); err != nil {
			return written, fmt.Errorf("failed to save %s variant: %w", label, err)
		}

		s.logger.Debug("wrote variant",
			zap.String("label", label),
			zap.String("path", path),
			zap.Int("width", v.Width),
			zap.Int("height", v.Height),
		)
		written = append(written, path)
	}

	return written, nil
}

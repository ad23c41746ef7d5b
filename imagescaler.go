// Package imagescaler resizes a source image into a set of labelled target
// sizes and writes each variant into its own subdirectory.
//
// Target sizes are screens measured in inches. A resolution in pixels per
// inch turns each screen into a pixel bound, and the image is shrunk (never
// enlarged) to the largest size that fits the bound while keeping its aspect
// ratio.
//
// Basic usage:
//
//	package main
//
//	import (
//		"fmt"
//		"log"
//
//		imagescaler "github.com/menta2k/image-scaler"
//	)
//
//	func main() {
//		scaler := imagescaler.New()
//
//		paths, err := scaler.ProcessImageFile("photo.jpg", "public/images")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		for _, p := range paths {
//			fmt.Println("wrote", p)
//		}
//	}
//
// With the default configuration this produces
//
//	public/images/BIG/photo_BIG.jpg
//	public/images/MED/photo_MED.jpg
//	public/images/SMALL/photo_SMALL.jpg
//	public/images/THUMB/photo_THUMB.jpg
//
// The package consists of three main components:
//
// 1. Analyzer (pkg/analyzer): loads and decodes source images
// 2. Scaler (pkg/scaler): computes fit dimensions and writes the variants
// 3. Processing (pkg/processing): Lanczos resampling, encoding and DPI metadata
package imagescaler

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/menta2k/image-scaler/pkg/analyzer"
	"github.com/menta2k/image-scaler/pkg/scaler"
	"github.com/menta2k/image-scaler/pkg/types"
)

// Version of the image scaler library
const Version = "1.0.0"

// ImageScaler provides a high-level interface for loading and scaling images
type ImageScaler struct {
	analyzer *analyzer.ImageAnalyzer
	scaler   *scaler.ImageScaler
}

// New creates a new ImageScaler with default configuration
func New() *ImageScaler {
	return &ImageScaler{
		analyzer: analyzer.New(),
		scaler:   scaler.New(),
	}
}

// NewWithConfig creates a new ImageScaler with custom configuration.
// An invalid scaler configuration is rejected with types.ErrConfiguration.
func NewWithConfig(analyzerConfig analyzer.Config, scalerConfig scaler.Config) (*ImageScaler, error) {
	s, err := scaler.NewWithConfig(scalerConfig)
	if err != nil {
		return nil, err
	}

	return &ImageScaler{
		analyzer: analyzer.NewWithConfig(analyzerConfig),
		scaler:   s,
	}, nil
}

// SetLogger attaches a logger to the scaler
func (is *ImageScaler) SetLogger(logger *zap.Logger) {
	is.scaler.SetLogger(logger)
}

// LoadImage loads a source image from file
func (is *ImageScaler) LoadImage(filepath string) (*types.SourceImage, error) {
	return is.analyzer.LoadSource(filepath)
}

// LoadImageFromReader loads a source image from an io.Reader. filename is
// used to name the output files.
func (is *ImageScaler) LoadImageFromReader(reader io.Reader, filename string) (*types.SourceImage, error) {
	return is.analyzer.LoadSourceFromReader(reader, filename)
}

// ComputeFitDimensions returns the pixel size of a nativeWidth x nativeHeight
// image fitted into screen at ppi
func ComputeFitDimensions(nativeWidth, nativeHeight int, screen types.Size, ppi float64) (int, int) {
	return scaler.ComputeFitDimensions(nativeWidth, nativeHeight, screen, ppi)
}

// ScaleForScreens returns one resized copy of src per configured screen
func (is *ImageScaler) ScaleForScreens(src *types.SourceImage) []types.Variant {
	return is.scaler.ScaleForScreens(src)
}

// SaveMultipleSizes writes every variant of src into label subdirectories of outDir
func (is *ImageScaler) SaveMultipleSizes(src *types.SourceImage, outDir string) ([]string, error) {
	return is.scaler.SaveMultipleSizes(src, outDir)
}

// GetImageInfo returns basic information about a source image
func (is *ImageScaler) GetImageInfo(src *types.SourceImage) analyzer.ImageInfo {
	return is.analyzer.GetImageInfo(src.Image)
}

// ProcessImageFile is a convenience function that loads an image and writes
// all of its size variants below outputDir
func (is *ImageScaler) ProcessImageFile(inputPath, outputDir string) ([]string, error) {
	src, err := is.LoadImage(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	paths, err := is.SaveMultipleSizes(src, outputDir)
	if err != nil {
		return paths, fmt.Errorf("failed to save sizes of %s: %w", inputPath, err)
	}

	return paths, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}

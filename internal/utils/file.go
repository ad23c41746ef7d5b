package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/menta2k/image-scaler/pkg/types"
)

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has an image extension
func IsImageFile(filename string) bool {
	ext := GetFileExtension(filename)
	imageExts := []string{"jpg", "jpeg", "png", "gif", "bmp", "tif", "tiff", "webp"}

	for _, imgExt := range imageExts {
		if ext == imgExt {
			return true
		}
	}
	return false
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// FileSize returns the size of filename in bytes, or 0 if it cannot be read
func FileSize(filename string) int64 {
	info, err := os.Stat(filename)
	if err != nil {
		return 0
	}
	return info.Size()
}

// FormatFileSize formats file size in human-readable format
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// ParseScreens parses a screen list such as "BIG=40x30,MED=16x12,THUMB=0.5x0.5".
// Sizes are in inches.
func ParseScreens(spec string) ([]types.Screen, error) {
	var screens []types.Screen
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		label, size, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: screen %q must look like LABEL=WxH", types.ErrConfiguration, part)
		}
		xs, ys, ok := strings.Cut(strings.ToLower(size), "x")
		if !ok {
			return nil, fmt.Errorf("%w: screen size %q must look like WxH", types.ErrConfiguration, size)
		}

		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid width in %q: %w", types.ErrConfiguration, part, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid height in %q: %w", types.ErrConfiguration, part, err)
		}

		screens = append(screens, types.Screen{
			Label: strings.TrimSpace(label),
			Size:  types.Size{X: x, Y: y},
		})
	}

	if len(screens) == 0 {
		return nil, fmt.Errorf("%w: no screens in %q", types.ErrConfiguration, spec)
	}
	return screens, nil
}

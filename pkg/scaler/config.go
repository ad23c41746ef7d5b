package scaler

import (
	"fmt"
	"math"
	"strings"

	"github.com/menta2k/image-scaler/pkg/types"
)

// DefaultPPI is the resolution used to convert screen inches to pixels
const DefaultPPI = 72

// Default variant labels, in configured order
const (
	LabelBig   = "BIG"
	LabelMed   = "MED"
	LabelSmall = "SMALL"
	LabelThumb = "THUMB"
)

// DefaultScreens returns the four default target screens
func DefaultScreens() []types.Screen {
	return []types.Screen{
		{Label: LabelBig, Size: types.Size{X: 40, Y: 30}},
		{Label: LabelMed, Size: types.Size{X: 16, Y: 12}},
		{Label: LabelSmall, Size: types.Size{X: 3, Y: 5}},
		{Label: LabelThumb, Size: types.Size{X: 0.5, Y: 0.5}},
	}
}

// Config holds the resolution and ordered target screens of an ImageScaler
type Config struct {
	PPI      float64
	Screens  []types.Screen
	Encoding types.EncodeOptions
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() Config {
	return Config{
		PPI:     DefaultPPI,
		Screens: DefaultScreens(),
		Encoding: types.EncodeOptions{
			Quality: 85,
		},
	}
}

// NewConfig pairs sizes with labels positionally. Both sequences must have
// the same length.
func NewConfig(ppi float64, sizes []types.Size, labels []string) (Config, error) {
	if len(sizes) != len(labels) {
		return Config{}, fmt.Errorf("%w: %d screens but %d labels", types.ErrConfiguration, len(sizes), len(labels))
	}

	cfg := DefaultConfig()
	cfg.PPI = ppi
	cfg.Screens = make([]types.Screen, len(sizes))
	for i := range sizes {
		cfg.Screens[i] = types.Screen{Label: labels[i], Size: sizes[i]}
	}
	return cfg, cfg.Validate()
}

// Labels returns the screen labels in configured order
func (c Config) Labels() []string {
	labels := make([]string, len(c.Screens))
	for i, s := range c.Screens {
		labels[i] = s.Label
	}
	return labels
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if !(c.PPI > 0) || math.IsInf(c.PPI, 1) {
		return fmt.Errorf("%w: ppi must be positive, got %v", types.ErrConfiguration, c.PPI)
	}

	if len(c.Screens) == 0 {
		return fmt.Errorf("%w: at least one screen is required", types.ErrConfiguration)
	}

	seen := make(map[string]bool, len(c.Screens))
	for i, s := range c.Screens {
		if s.Label == "" {
			return fmt.Errorf("%w: screen %d has an empty label", types.ErrConfiguration, i)
		}
		if s.Label == "." || s.Label == ".." || strings.ContainsAny(s.Label, `/\`) {
			return fmt.Errorf("%w: label %q cannot be used as a directory name", types.ErrConfiguration, s.Label)
		}
		if seen[s.Label] {
			return fmt.Errorf("%w: duplicate label %q", types.ErrConfiguration, s.Label)
		}
		seen[s.Label] = true

		if s.Size.X < 0 || s.Size.Y < 0 {
			return fmt.Errorf("%w: screen %s has negative size %vx%v", types.ErrConfiguration, s.Label, s.Size.X, s.Size.Y)
		}
	}

	if c.Encoding.Quality < 0 || c.Encoding.Quality > 100 {
		return fmt.Errorf("%w: quality must be between 0 and 100", types.ErrConfiguration)
	}

	return nil
}

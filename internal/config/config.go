package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/image-scaler/pkg/analyzer"
	"github.com/menta2k/image-scaler/pkg/scaler"
	"github.com/menta2k/image-scaler/pkg/types"
)

// Environment variables that override file configuration
const (
	EnvPPI       = "IMAGE_SCALER_PPI"
	EnvOutputDir = "IMAGE_SCALER_OUTPUT_DIR"
	EnvQuality   = "IMAGE_SCALER_QUALITY"
)

// Config holds the application configuration
type Config struct {
	Scaler   ScalerConfig   `json:"scaler" yaml:"scaler"`
	Analyzer AnalyzerConfig `json:"analyzer" yaml:"analyzer"`
	Output   OutputConfig   `json:"output" yaml:"output"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// ScalerConfig holds the resolution and target screens
type ScalerConfig struct {
	PPI     float64        `json:"ppi" yaml:"ppi"`
	Screens []types.Screen `json:"screens" yaml:"screens"`
}

// AnalyzerConfig holds configuration for source loading
type AnalyzerConfig struct {
	SupportedFormats []string `json:"supported_formats" yaml:"supported_formats"`
	AutoOrientation  bool     `json:"auto_orientation" yaml:"auto_orientation"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	OutputDir      string `json:"output_dir" yaml:"output_dir"`
	Quality        int    `json:"quality" yaml:"quality"`
	Lossless       bool   `json:"lossless" yaml:"lossless"`
	PNGCompression int    `json:"png_compression" yaml:"png_compression"`
}

// LogConfig selects the logger flavour used by the CLI
type LogConfig struct {
	Development bool   `json:"development" yaml:"development"`
	Level       string `json:"level" yaml:"level"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Scaler: ScalerConfig{
			PPI:     scaler.DefaultPPI,
			Screens: scaler.DefaultScreens(),
		},
		Analyzer: AnalyzerConfig{
			SupportedFormats: append([]string(nil), analyzer.DefaultSupportedFormats...),
		},
		Output: OutputConfig{
			OutputDir: "",
			Quality:   85,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadFromFile loads configuration from a JSON or YAML file. Fields missing
// from the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isYAML(filename) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load reads filename if it is set, loads a .env file when one exists and
// applies environment overrides
func Load(filename string) (*Config, error) {
	config := Default()
	if filename != "" {
		var err error
		if config, err = LoadFromFile(filename); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("ignoring .env: %v", err)
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides configuration values from the environment
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvPPI); v != "" {
		ppi, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPPI, v, err)
		}
		c.Scaler.PPI = ppi
	}

	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Output.OutputDir = v
	}

	if v := os.Getenv(EnvQuality); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvQuality, v, err)
		}
		c.Output.Quality = q
	}

	return nil
}

// SaveToFile saves configuration to a JSON or YAML file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(filename) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.ScalerConfig().Validate(); err != nil {
		return err
	}

	if len(c.Analyzer.SupportedFormats) == 0 {
		return fmt.Errorf("%w: analyzer.supported_formats cannot be empty", types.ErrConfiguration)
	}

	if c.Output.PNGCompression < -3 || c.Output.PNGCompression > 0 {
		return fmt.Errorf("%w: output.png_compression must be between -3 and 0", types.ErrConfiguration)
	}

	return nil
}

// ScalerConfig converts the file configuration into a scaler configuration
func (c *Config) ScalerConfig() scaler.Config {
	return scaler.Config{
		PPI:     c.Scaler.PPI,
		Screens: c.Scaler.Screens,
		Encoding: types.EncodeOptions{
			Quality:        c.Output.Quality,
			Lossless:       c.Output.Lossless,
			PNGCompression: c.Output.PNGCompression,
		},
	}
}

// AnalyzerConfig converts the file configuration into an analyzer configuration
func (c *Config) AnalyzerConfig() analyzer.Config {
	return analyzer.Config{
		SupportedFormats: c.Analyzer.SupportedFormats,
		AutoOrientation:  c.Analyzer.AutoOrientation,
	}
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-scaler", "config.json")
}

func isYAML(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/menta2k/boulder-beta/pkg/geometry"
	"github.com/menta2k/boulder-beta/pkg/overlay"
	"github.com/menta2k/boulder-beta/pkg/surface"
)

// Backends accepted by AnalysisConfig.Backend
var Backends = []string{"heuristic", "remote", "ollama", "llamacpp"}

// Config holds the application configuration
type Config struct {
	Surface   SurfaceConfig   `json:"surface"`
	Overlay   OverlayConfig   `json:"overlay"`
	Thumbnail ThumbnailConfig `json:"thumbnail"`
	Analysis  AnalysisConfig  `json:"analysis"`
	Output    OutputConfig    `json:"output"`
}

// SurfaceConfig holds the marking surface layout
type SurfaceConfig struct {
	ContainerWidth float64 `json:"container_width"`
	OuterRadius    float64 `json:"outer_radius"`
	InnerRadius    float64 `json:"inner_radius"`
	LabelSize      float64 `json:"label_size"`
}

// OverlayConfig holds beta overlay dimensions
type OverlayConfig struct {
	ArrowWidth float64 `json:"arrow_width"`
	ArrowHead  float64 `json:"arrow_head"`
	MarkerSize float64 `json:"marker_size"`
	TipSize    float64 `json:"tip_size"`
}

// ThumbnailConfig holds the pose card size
type ThumbnailConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AnalysisConfig selects and configures the analysis backend
type AnalysisConfig struct {
	Backend        string `json:"backend"`
	URL            string `json:"url"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	SendImage      bool   `json:"send_image"`
	MaxImageDim    int    `json:"max_image_dim"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	DefaultFormat string `json:"default_format"`
	OutputDir     string `json:"output_dir"`
	Quality       int    `json:"quality"`
	Lossless      bool   `json:"lossless"`
}

// Default returns a configuration with default values
func Default() *Config {
	ss := surface.DefaultStyle()
	ov := overlay.DefaultStyle()
	return &Config{
		Surface: SurfaceConfig{
			ContainerWidth: 800,
			OuterRadius:    ss.OuterRadius,
			InnerRadius:    ss.InnerRadius,
			LabelSize:      ss.LabelSize,
		},
		Overlay: OverlayConfig{
			ArrowWidth: ov.ArrowWidth,
			ArrowHead:  ov.ArrowHead,
			MarkerSize: ov.MarkerSize,
			TipSize:    ov.TipSize,
		},
		Thumbnail: ThumbnailConfig{
			Width:  150,
			Height: 200,
		},
		Analysis: AnalysisConfig{
			Backend:        "heuristic",
			Model:          "qwen2.5vl:7b",
			TimeoutSeconds: 300,
			SendImage:      true,
			MaxImageDim:    1024,
		},
		Output: OutputConfig{
			DefaultFormat: "png",
			OutputDir:     "./output",
			Quality:       90,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Missing fields keep
// their defaults.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Surface.ContainerWidth <= 0 {
		return fmt.Errorf("surface.container_width must be positive")
	}

	if c.Surface.InnerRadius <= 0 || c.Surface.OuterRadius < c.Surface.InnerRadius {
		return fmt.Errorf("surface radii must satisfy 0 < inner_radius <= outer_radius")
	}

	if c.Overlay.ArrowWidth <= 0 || c.Overlay.MarkerSize <= 0 {
		return fmt.Errorf("overlay.arrow_width and overlay.marker_size must be positive")
	}

	if c.Thumbnail.Width < 1 || c.Thumbnail.Height < 1 {
		return fmt.Errorf("thumbnail dimensions must be positive")
	}

	if !validBackend(c.Analysis.Backend) {
		return fmt.Errorf("analysis.backend must be one of %v", Backends)
	}

	if c.Analysis.TimeoutSeconds < 0 {
		return fmt.Errorf("analysis.timeout_seconds cannot be negative")
	}

	switch c.Output.DefaultFormat {
	case "png", "jpg", "jpeg", "webp":
	default:
		return fmt.Errorf("output.default_format must be png, jpg or webp")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}

func validBackend(b string) bool {
	for _, name := range Backends {
		if b == name {
			return true
		}
	}
	return false
}

// SurfaceStyle applies the surface settings to the default marker style
func (c *Config) SurfaceStyle() surface.Style {
	st := surface.DefaultStyle()
	st.OuterRadius = c.Surface.OuterRadius
	st.InnerRadius = c.Surface.InnerRadius
	st.LabelSize = c.Surface.LabelSize
	return st
}

// OverlayStyle applies the overlay settings to the default overlay style
func (c *Config) OverlayStyle() overlay.Style {
	st := overlay.DefaultStyle()
	st.ArrowWidth = c.Overlay.ArrowWidth
	st.ArrowHead = c.Overlay.ArrowHead
	st.MarkerSize = c.Overlay.MarkerSize
	st.TipSize = c.Overlay.TipSize
	return st
}

// CardSize returns the pose thumbnail size
func (c *Config) CardSize() geometry.Size {
	return geometry.Size{Width: c.Thumbnail.Width, Height: c.Thumbnail.Height}
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "boulder-beta", "config.json")
}

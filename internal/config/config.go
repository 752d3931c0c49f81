// Package config loads the clipdib settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fumiama/clipdib"
)

// Settings holds the tool configuration.
type Settings struct {
	// Alpha is "infer" or "keep".
	Alpha     string    `yaml:"alpha,omitempty"`
	MaxPixels int       `yaml:"max_pixels,omitempty"`
	Sources   []string  `yaml:"sources,omitempty"`
	Clipboard Clipboard `yaml:"clipboard,omitempty"`
	LogLevel  string    `yaml:"log_level,omitempty"`
}

// Clipboard overrides the helper program used to read the system clipboard.
type Clipboard struct {
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// Default returns the settings used when no file is present.
func Default() *Settings {
	return &Settings{
		Alpha:     clipdib.AlphaInfer.String(),
		MaxPixels: clipdib.DefaultMaxPixels,
		Sources:   []string{"dib", "dibv5", "bitmap"},
		LogLevel:  "info",
	}
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "clipdib", "config.yaml")
}

// Load reads the settings at path on top of the defaults. A missing file
// yields the defaults.
func Load(path string) (*Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks the values that are not free-form.
func (s *Settings) Validate() error {
	if _, err := s.AlphaPolicy(); err != nil {
		return err
	}
	if s.MaxPixels < 0 {
		return fmt.Errorf("max_pixels must not be negative, got %d", s.MaxPixels)
	}
	if _, err := s.Order(); err != nil {
		return err
	}
	return nil
}

// AlphaPolicy converts Alpha.
func (s *Settings) AlphaPolicy() (clipdib.AlphaPolicy, error) {
	switch s.Alpha {
	case "", "infer":
		return clipdib.AlphaInfer, nil
	case "keep":
		return clipdib.AlphaKeep, nil
	}
	return 0, fmt.Errorf("alpha must be \"infer\" or \"keep\", got %q", s.Alpha)
}

// Order converts Sources. An empty list means the default order.
func (s *Settings) Order() ([]clipdib.Format, error) {
	if len(s.Sources) == 0 {
		return clipdib.DefaultOrder(), nil
	}
	order := make([]clipdib.Format, 0, len(s.Sources))
	for _, name := range s.Sources {
		f, err := clipdib.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		order = append(order, f)
	}
	return order, nil
}

// Options builds decoder options from s.
func (s *Settings) Options() (*clipdib.Options, error) {
	alpha, err := s.AlphaPolicy()
	if err != nil {
		return nil, err
	}
	return &clipdib.Options{
		Alpha:     alpha,
		MaxPixels: s.MaxPixels,
		Codec:     &clipdib.ImageCodec{MaxPixels: s.MaxPixels},
	}, nil
}

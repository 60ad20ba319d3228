// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Run RunConfig `toml:"run"`
}

// RunConfig maps aggregation and output settings.
type RunConfig struct {
	InputDir     *string  `toml:"input"`
	OutputDir    *string  `toml:"output"`
	Extension    *string  `toml:"ext"`
	Delimiter    *string  `toml:"delimiter"`
	Confidence   *float64 `toml:"confidence"`
	SingleSample *string  `toml:"single-sample"`
	DPI          *float64 `toml:"dpi"`
	ErrorFigure  *string  `toml:"error-figure"`
	TrackFigure  *string  `toml:"track-figure"`
	Workbook     *string  `toml:"workbook"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

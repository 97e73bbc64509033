// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game    GameConfig    `toml:"game"`
	Storage StorageConfig `toml:"storage"`
}

// GameConfig maps game settings. Nil fields fall back to defaults.
type GameConfig struct {
	GridSize     *int `toml:"grid-size"`
	ShowTimeMs   *int `toml:"show-time"`
	AnswerTimeMs *int `toml:"answer-time"`
	ActiveCells  *int `toml:"active-cells"`
	TargetStreak *int `toml:"target-streak"`
}

// StorageConfig maps storage settings.
type StorageConfig struct {
	// Backend forces "structured" or "flat" instead of probing.
	Backend *string `toml:"backend"`
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
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

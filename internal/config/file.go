package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the optional YAML config file. LockTimeout is a
// duration string ("5s"); yaml.v3 has no native duration decoding.
type FileConfig struct {
	PolicyPath  string `yaml:"policy_path"`
	LogLevel    string `yaml:"log_level"`
	LockTimeout string `yaml:"lock_timeout"`
}

// DefaultConfigPath is ~/.config/grantedit/config.yaml (or the platform
// equivalent). Empty when the user config directory cannot be resolved.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "grantedit", "config.yaml")
}

// LoadFile reads the YAML config at path. A missing file is not an error;
// it yields an empty config.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file %s: %w", path, err)
	}
	return &cfg, nil
}

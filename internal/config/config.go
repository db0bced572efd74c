package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/grantedit/grantedit/pkg/storage"
)

// Config is the resolved editor configuration: built-in defaults, then the
// config file, then GRANTEDIT_* environment variables on top.
type Config struct {
	PolicyPath  string
	LogLevel    string
	LockTimeout time.Duration
}

func Load() (*Config, error) {
	return load(DefaultConfigPath())
}

func load(configPath string) (*Config, error) {
	cfg := &Config{
		LogLevel:    "info",
		LockTimeout: storage.DefaultLockTimeout,
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.PolicyPath = filepath.Join(home, ".java.policy")
	}

	if configPath != "" {
		fileCfg, err := LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		if fileCfg.PolicyPath != "" {
			cfg.PolicyPath = fileCfg.PolicyPath
		}
		if fileCfg.LogLevel != "" {
			cfg.LogLevel = fileCfg.LogLevel
		}
		if fileCfg.LockTimeout != "" {
			d, err := time.ParseDuration(fileCfg.LockTimeout)
			if err != nil {
				return nil, fmt.Errorf("invalid lock_timeout in config file: %w", err)
			}
			cfg.LockTimeout = d
		}
	}

	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	if env.PolicyPath != "" {
		cfg.PolicyPath = env.PolicyPath
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.LockTimeout > 0 {
		cfg.LockTimeout = env.LockTimeout
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

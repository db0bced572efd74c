package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const namespace = "GRANTEDIT"

// Env holds settings read from GRANTEDIT_* environment variables. Non-zero
// values override the config file.
type Env struct {
	PolicyPath  string        `envconfig:"POLICY_PATH"`
	LogLevel    string        `envconfig:"LOG_LEVEL"`
	LockTimeout time.Duration `envconfig:"LOCK_TIMEOUT"`
}

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

// Package config reads process-level settings from the environment.
// User-facing settings live in the preferences store instead.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/borgmon/carebell/pkg/clock"
)

// Prefix is prepended to every variable name, e.g. CAREBELL_LOG_LEVEL
const Prefix = "CAREBELL"

// Env holds the process configuration
type Env struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	// SamplePeriod is the clock sampler period, clamped to 1s..5s
	SamplePeriod time.Duration `envconfig:"SAMPLE_PERIOD" default:"5s"`

	// SpoolPath is the SQLite file holding pending notifications.
	// Empty selects carebell/spool.db under the user config dir.
	SpoolPath string `envconfig:"SPOOL_PATH"`

	GeminiAPIKey string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	GeminiURL    string        `envconfig:"GEMINI_URL" default:"https://generativelanguage.googleapis.com"`
	TipTimeout   time.Duration `envconfig:"TIP_TIMEOUT" default:"10s"`

	AppID string `envconfig:"APP_ID" default:"io.github.borgmon.carebell"`
}

// Load parses the environment and fills derived defaults
func Load() (*Env, error) {
	var env Env
	if err := envconfig.Process(Prefix, &env); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := env.resolve(); err != nil {
		return nil, err
	}
	return &env, nil
}

func (e *Env) resolve() error {
	switch e.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT: %s", e.LogFormat)
	}

	e.SamplePeriod = clock.ClampPeriod(e.SamplePeriod)

	if e.SpoolPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = os.TempDir()
		}
		e.SpoolPath = filepath.Join(dir, "carebell", "spool.db")
	}
	return nil
}

// TipsEnabled reports whether a model key is configured
func (e *Env) TipsEnabled() bool {
	return e.GeminiAPIKey != ""
}

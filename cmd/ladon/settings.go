package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// settings are the CLI defaults taken from the environment. Command line
// flags win over them.
type settings struct {
	// LogLevel is both the operational log level and the message log level
	// of runs. Empty means INFO for the former and the run default for the latter.
	LogLevel     string `env:"LADON_LOG_LEVEL"`
	LogFormat    string `env:"LADON_LOG_FORMAT" envDefault:"text"`
	RedisAddr    string `env:"LADON_REDIS_ADDR"`
	RedisDB      int    `env:"LADON_REDIS_DB" envDefault:"0"`
	ResultsDir   string `env:"LADON_RESULTS_DIR" envDefault:".ladon/results"`
	OutputFormat string `env:"LADON_OUTPUT_FORMAT"`
	// RedactKeys are regular expressions; matching flag and data keys are
	// masked before results are stored.
	RedactKeys []string `env:"LADON_REDACT_KEYS" envSeparator:"," envDefault:"(?i)password,(?i)secret,(?i)token"`
	// ResultsKey is a base64 AES-256 key. When set, stored results are encrypted.
	ResultsKey string `env:"LADON_RESULTS_KEY"`
}

func loadSettings() (settings, error) {
	var s settings
	if err := env.Parse(&s); err != nil {
		return s, fmt.Errorf("failed to read environment: %w", err)
	}
	return s, nil
}

package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/scankit/pkg/config"
	"github.com/dmitrymomot/scankit/pkg/httpserver"
	"github.com/dmitrymomot/scankit/pkg/logger"
	"github.com/dmitrymomot/scankit/pkg/scanapi"
	"github.com/dmitrymomot/scankit/pkg/scanspec"
)

const envPrefix = "SCANKIT_"

// appConfig is read from SCANKIT_* environment variables.
type appConfig struct {
	Env       string `env:"ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`

	// Machine documents are read from S3 when S3_BUCKET is set and from
	// SpecDir otherwise.
	SpecDir        string            `env:"SPEC_DIR" envDefault:"./machines"`
	SpecName       string            `env:"SPEC_NAME" envDefault:"machines"`
	S3             scanspec.S3Config `envPrefix:"S3_"`
	ReloadInterval time.Duration     `env:"RELOAD_INTERVAL"`

	HTTP        httpserver.Config
	MaxSteps    int   `env:"MAX_STEPS" envDefault:"1000000"`
	MaxBodySize int64 `env:"MAX_BODY_SIZE" envDefault:"8388608"`
}

func (c *cli) loadConfig() (appConfig, error) {
	if err := config.LoadEnv(c.envFiles...); err != nil {
		return appConfig{}, err
	}
	var cfg appConfig
	if err := config.Load(&cfg, config.WithPrefix(envPrefix)); err != nil {
		return appConfig{}, err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	return cfg, nil
}

// newLogger writes to stderr so scan output on stdout stays clean. debug
// forces the debug level, which enables per-step tracing.
func (c *cli) newLogger(cfg appConfig, debug bool) (*slog.Logger, error) {
	opts := []logger.Option{
		logger.WithEnvironment(logger.ParseEnvironment(cfg.Env), "scankit"),
		logger.WithOutput(c.stderr),
		logger.WithContextExtractors(scanapi.ScanIDExtractor()),
	}
	if cfg.LogFormat != "" {
		f := logger.Format(cfg.LogFormat)
		if f != logger.FormatJSON && f != logger.FormatText {
			return nil, fmt.Errorf("invalid log format %q", cfg.LogFormat)
		}
		opts = append(opts, logger.WithFormat(f))
	}
	if cfg.LogLevel != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		opts = append(opts, logger.WithLevel(l))
	}
	if debug {
		opts = append(opts, logger.WithLevel(slog.LevelDebug))
	}
	return logger.New(opts...), nil
}

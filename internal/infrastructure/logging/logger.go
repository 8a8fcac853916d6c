package logging

import (
	"io"
	"os"

	"github.com/asakaida/rolegate/internal/infrastructure/config"
	"github.com/hashicorp/go-hclog"
)

// NewLogger creates the root application logger from configuration
func NewLogger(name string, cfg config.LogConfig) hclog.Logger {
	return newLogger(name, cfg, os.Stderr)
}

func newLogger(name string, cfg config.LogConfig, out io.Writer) hclog.Logger {
	level := hclog.LevelFromString(cfg.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		Output:     out,
		JSONFormat: cfg.Format == "json",
	})
}

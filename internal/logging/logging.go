// Package logging builds the zap logger used across stockroom.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environments accepted in Config.Env.
const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// Config selects level, encoding and destination of log output.
type Config struct {
	Level string // debug, info, warn, error; empty means info.
	Env   string // prod writes JSON, anything else the console encoding.
	File  string // Destination file; empty disables logging.
}

// New builds a logger from cfg. Output goes only to cfg.File so that log
// lines never interleave with the interactive menu.
func New(cfg Config) (*zap.Logger, error) {
	if cfg.File == "" {
		return zap.NewNop(), nil
	}

	var zapCfg zap.Config
	if cfg.Env == EnvProd {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	levelName := cfg.Level
	if levelName == "" {
		levelName = "info"
	}
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	zapCfg.OutputPaths = []string{cfg.File}
	zapCfg.ErrorOutputPaths = []string{cfg.File}

	return zapCfg.Build()
}

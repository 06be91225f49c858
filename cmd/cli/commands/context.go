package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rhowell/gradesplit/internal/config"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env        string
	ConfigPath string // Overrides the config file lookup when set
	Logger     *zap.Logger
	Ctx        context.Context

	cfg *config.Config
}

// Config loads the configuration on first use
// setup runs before a config file exists, so loading is left to the commands that need it
func (a *AppContext) Config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	var (
		cfg *config.Config
		err error
	)
	if a.ConfigPath != "" {
		a.Logger.Info("Loading configuration", zap.String("path", a.ConfigPath))
		cfg, err = config.LoadFromPath(a.ConfigPath)
	} else {
		a.Logger.Info("Loading configuration", zap.String("file", config.FileName(a.Env)))
		cfg, err = config.LoadWithEnv(a.Env)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a.Logger.Debug("Configuration loaded successfully",
		zap.Int("instructors", len(cfg.Instructors)),
		zap.String("output", cfg.Output))

	a.cfg = cfg
	return cfg, nil
}

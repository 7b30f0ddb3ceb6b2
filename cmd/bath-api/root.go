package main

import (
	"github.com/spf13/cobra"
	"github.com/tankops/bath-planner/internal/config"
	"github.com/tankops/bath-planner/pkg/log"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "bath-api",
	Short: "Bath planner API service",
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(runCmd)
}

// setup reads the configuration and installs the global logger. The returned func restores the
// previous logger and flushes the new one.
func setup() (*config.Config, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}

	logger := log.InitLog(log.Level(cfg.Service.LogLevel))
	undo := zap.ReplaceGlobals(logger)

	return cfg, func() {
		_ = logger.Sync()
		undo()
	}, nil
}

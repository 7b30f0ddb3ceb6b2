package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tankops/bath-planner/internal/cli"
	"github.com/tankops/bath-planner/pkg/log"
	"go.uber.org/zap"
)

func main() {
	logger := log.InitCLILog(log.Level(os.Getenv("BATHCTL_LOG_LEVEL")))
	undo := zap.ReplaceGlobals(logger)
	defer undo()

	command := NewBathCtlCommand()
	if err := command.Execute(); err != nil {
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func NewBathCtlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bathctl [flags] [options]",
		Short: "bathctl calculates chemical bath corrections through the bath planner service.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdGet())
	cmd.AddCommand(cli.NewCmdCorrect())
	cmd.AddCommand(cli.NewCmdSimulate())
	cmd.AddCommand(cli.NewCmdRefill())
	cmd.AddCommand(cli.NewCmdApply())
	cmd.AddCommand(cli.NewCmdExport())
	cmd.AddCommand(cli.NewCmdVersion())

	return cmd
}

package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/workpulse-io/workpulse/config"
)

var (
	configurationFile string
)

func initConfig(filename string) (*config.Config, error) {
	cfg, err := config.Load(filename)
	if err != nil {
		return nil, errors.Wrap(err, "could not load configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "workpulse",
		Short:        "Workpulse collects activity from collaboration trackers into Postgres",
		Long:         ``,
		SilenceUsage: true,
	}

	cmd.SetOut(os.Stdout)
	cmd.PersistentFlags().StringVarP(&configurationFile, "config", "", "", "The configuration filename")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDatabaseCmd())
	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newScheduleCmd())

	return cmd
}

func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

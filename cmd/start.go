package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/workpulse-io/workpulse/app"
	"github.com/workpulse-io/workpulse/pkg/safe"
)

func newStartCmd() *cobra.Command {
	start := &cobra.Command{
		Use:   "start",
		Short: "Start the worker and scheduler",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig(configurationFile)
			if err != nil {
				return err
			}

			app, err := app.New(cfg)
			if err != nil {
				return err
			}

			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			safe.Go(func() {
				<-ctx.Done()
				if err := app.Stop(); err != nil {
					os.Exit(1)
				}
			})

			if err := app.Start(); err != nil {
				return err
			}

			app.Wait()

			return nil
		},
	}

	return start
}

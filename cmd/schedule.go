package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/workpulse-io/workpulse/sources"
	"github.com/workpulse-io/workpulse/temporalx"
	"github.com/workpulse-io/workpulse/temporalx/etl"
)

func newScheduleCmd() *cobra.Command {
	var (
		source    string
		kind      string
		member    string
		dayOfWeek int
		hour      int
	)

	schedule := &cobra.Command{
		Use:   "schedule",
		Short: "Create a weekly Temporal schedule for a source",
		Long: `Create a Temporal schedule that runs the extraction once a week. Each
scheduled run covers the trailing week; creating an existing schedule is a
no-op.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig(configurationFile)
			if err != nil {
				return err
			}
			if !cfg.Temporal.Enabled {
				return fmt.Errorf("schedule requires temporal.enabled")
			}

			ctx := cmd.Context()
			client, err := temporalx.Dial(ctx, cfg.Temporal)
			if err != nil {
				return err
			}
			defer client.Close()

			now := time.Now().UTC()
			input := etl.Input{
				Query: sources.Query{
					SourceKindID: source,
					EventKind:    kind,
					Member:       member,
					DateStart:    now.AddDate(0, 0, -7),
					DateEnd:      now,
				},
			}
			if err := temporalx.CreateWeeklySchedule(ctx, client, cfg.Temporal, input, dayOfWeek, hour); err != nil {
				return err
			}
			cmd.Printf("schedule %s is in place\n", temporalx.ScheduleID(input.Query))
			return nil
		},
	}

	schedule.Flags().StringVarP(&source, "source", "s", "", "Source kind, e.g. launchpad")
	schedule.Flags().StringVarP(&kind, "kind", "k", "", "Event kind, e.g. bugs")
	schedule.Flags().StringVarP(&member, "member", "m", "", "Tracker-native member identifier")
	schedule.Flags().IntVarP(&dayOfWeek, "day-of-week", "", 0, "Day of week to run on, 0 is Sunday")
	schedule.Flags().IntVarP(&hour, "hour", "", 0, "Hour of day to run at")
	_ = schedule.MarkFlagRequired("source")
	_ = schedule.MarkFlagRequired("kind")

	return schedule
}

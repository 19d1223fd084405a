package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nightsweep/internal/availability"
	"nightsweep/internal/nights"
	"nightsweep/internal/report"
	"nightsweep/internal/services"
)

func newNightsCommand(ctx *commandContext) *cobra.Command {
	var nightsFile string

	cmd := &cobra.Command{
		Use:   "nights [night...]",
		Short: "Show raw-data availability for the selected nights",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			listFile := nightsFile
			if listFile == "" {
				listFile = cfg.Reprocess.NightsFile
			}
			set, err := nights.Resolve(args, listFile, cfg.Reprocess.Nights)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "cli", "resolve nights", err.Error(), nil)
			}

			checker := availability.NewChecker(cfg)
			rows := make([][]string, 0, set.Len())
			for _, night := range set.Nights() {
				state := "missing"
				switch has, probeErr := checker.HasData(night); {
				case probeErr != nil:
					state = "error: " + probeErr.Error()
				case has:
					state = "available"
				}
				rows = append(rows, []string{night.String(), state})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.Table([]string{"Night", "Raw Data"}, rows))
			fmt.Fprintf(out, "Data root: %s\n", cfg.Paths.DataDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&nightsFile, "nights-file", "", "File listing nights to inspect, one per line")
	return cmd
}

package main

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"nightsweep/internal/availability"
	"nightsweep/internal/driver"
	"nightsweep/internal/ingest"
	"nightsweep/internal/logging"
	"nightsweep/internal/nights"
	"nightsweep/internal/runs"
	"nightsweep/internal/services"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var nightsFile string

	cmd := &cobra.Command{
		Use:   "run [night...]",
		Short: "Reprocess the selected observation nights sequentially",
		Long: `Run re-invokes the ingestion subsystem once per selected night, in order.
Nights come from the positional arguments, then --nights-file, then the
reprocess.nights list in the configuration file. Output for each night is
written to the console and to a per-night log file in the log directory.

A night without raw data on disk is skipped. A night whose invocation fails
is recorded and the run continues with the next night; the exit status stays
zero so the final summary is the place to look for failures.`,
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

			runID := uuid.NewString()
			logger, err := logging.NewFromConfig(cfg, filepath.Join(cfg.Paths.LogDir, "nightsweep-"+runID+".log"))
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			var history driver.History
			if store, storeErr := runs.Open(cfg); storeErr != nil {
				logger.Warn("run history disabled", logging.Error(storeErr))
			} else {
				defer store.Close()
				history = store
			}

			d, err := driver.New(driver.Options{
				Config:  cfg,
				Logger:  logger,
				Invoker: ingest.NewInvoker(cfg),
				Checker: availability.NewChecker(cfg),
				History: history,
				Console: cmd.OutOrStdout(),
				RunID:   runID,
			})
			if err != nil {
				return err
			}

			_, err = d.Run(cmd.Context(), set)
			return err
		},
	}

	cmd.Flags().StringVar(&nightsFile, "nights-file", "", "File listing nights to reprocess, one per line")
	return cmd
}

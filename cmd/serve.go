package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/triage/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/triage/internal/logger"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the triage HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			log, err := logger.New(cfg.Logging)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			log = log.With(
				logger.String("service", cfg.Service.Name),
				logger.String("version", cfg.Service.Version),
			)

			svc, err := bootstrap.NewService(cfg, log)
			if err != nil {
				log.Error("Failed to initialize service", logger.Error(err))
				return err
			}
			return svc.Run(cmd.Context())
		},
	}
}

// Package cmd implements the triage command-line interface.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/triage/internal/config"
	"github.com/jonesrussell/north-cloud/triage/internal/logger"
)

// Version is set at build time.
var Version = "1.0.0"

type rootOptions struct {
	configPath string
	debug      bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "triage",
		Short:         "Municipal complaint triage",
		Long:          `Categorizes citizen complaints, flags threats and assigns a 1-10 priority score.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"config file (default is $CONFIG_PATH or ./config.yml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "triage version %s\n", Version)
		},
	})
	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newAnalyzeCommand(opts))
	root.AddCommand(newCategoriesCommand(opts))
	root.AddCommand(newNeighborhoodsCommand(opts))
	root.AddCommand(newTokenCommand(opts))

	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = config.GetConfigPath(config.DefaultPath)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.debug {
		cfg.Logging.Level = "debug"
		cfg.Server.Debug = true
	}
	cfg.Service.Version = Version
	cfg.Server.ServiceVersion = Version
	return cfg, nil
}

// cliLogger logs to stderr so that command output stays parseable. Without
// --debug the one-shot commands stay quiet.
func (o *rootOptions) cliLogger(cfg *config.Config) (logger.Logger, error) {
	if !o.debug {
		return logger.NewNop(), nil
	}
	logCfg := cfg.Logging
	logCfg.OutputPaths = []string{"stderr"}
	return logger.New(logCfg)
}

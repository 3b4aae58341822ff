package main

import (
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Operate the storefront backend",
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to read before the environment")

	cmd.AddCommand(
		newTokenCmd(opts),
		newCatalogCmd(opts),
		newRebuildCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.Named("ctl"), nil
}

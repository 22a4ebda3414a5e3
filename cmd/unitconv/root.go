package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Spok95/unitconv/internal/config"
	"github.com/Spok95/unitconv/internal/infra/logger"
	"github.com/Spok95/unitconv/internal/service"
)

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "unitconv",
		Short: "Unit converter for length, weight, temperature and time",
		Long: "Unit converter for length, weight, temperature and time.\n" +
			"Runs as a web form with JSON API and Telegram bot (serve) or as a one-shot CLI.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"path to YAML config; APP_* environment variables override it")

	cmd.AddCommand(
		newServeCommand(opts),
		newConvertCommand(opts),
		newUnitsCommand(),
		newTableCommand(opts),
		newBatchCommand(opts),
	)
	return cmd
}

// converter для разовых команд: без метрик, логи в stderr.
// precision < 0 - берём из конфига.
func (o *rootOptions) converter(cmd *cobra.Command, precision int) (*service.Converter, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if precision < 0 {
		precision = cfg.Display.Precision
	}
	log := logger.NewTo(cmd.ErrOrStderr(), cfg.App.Env)
	return service.NewConverter(log, nil, precision), nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Spok95/unitconv/internal/bot"
	"github.com/Spok95/unitconv/internal/config"
	"github.com/Spok95/unitconv/internal/dialog"
	httpx "github.com/Spok95/unitconv/internal/infra/http"
	"github.com/Spok95/unitconv/internal/infra/logger"
	"github.com/Spok95/unitconv/internal/infra/metrics"
	"github.com/Spok95/unitconv/internal/service"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web form and JSON API; the Telegram bot too when a token is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), root.configPath)
		},
	}
}

func runServe(parent context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.App.Env)
	m := metrics.New()
	conv := service.NewConverter(log, m, cfg.Display.Precision)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tg *bot.Bot
	if cfg.Telegram.Token != "" {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		log.Info("telegram authorized", "username", api.Self.UserName)
		tg = bot.New(api, log, dialog.NewRepo(), conv, m)
	} else {
		log.Info("telegram token is empty, bot disabled")
	}

	srv := httpx.New(cfg.HTTP.Addr, httpx.Deps{
		Log:           log,
		Conv:          conv,
		Metrics:       m,
		ExposeMetrics: cfg.Metrics.Enabled,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server started", "addr", cfg.HTTP.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if tg != nil {
		g.Go(func() error {
			if err := tg.Run(gctx, cfg.Telegram.TimeoutSec); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("bot: %w", err)
			}
			return nil
		})
	}

	err = g.Wait()
	log.Info("graceful shutdown complete")
	return err
}

package bot

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/unitconv/internal/dialog"
	"github.com/Spok95/unitconv/internal/infra/metrics"
	"github.com/Spok95/unitconv/internal/service"
)

// API подмножество *tgbotapi.BotAPI, которое нужно боту. В тестах подменяется фейком.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetFileDirectURL(fileID string) (string, error)
}

type Bot struct {
	api     API
	log     *slog.Logger
	states  *dialog.Repo
	conv    *service.Converter
	metrics *metrics.Metrics
	client  *http.Client
}

func New(api API, log *slog.Logger, statesRepo *dialog.Repo,
	conv *service.Converter, m *metrics.Metrics) *Bot {

	return &Bot{
		api: api, log: log, states: statesRepo,
		conv: conv, metrics: m,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		b.onMessage(ctx, upd)
	} else if upd.CallbackQuery != nil {
		b.onCallback(ctx, upd)
	}
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message

	if msg.IsCommand() {
		b.metrics.ObserveRequest("bot", commandLabel(msg.Command()))
		b.handleCommand(ctx, msg)
		return
	}
	if msg.Document != nil {
		b.metrics.ObserveRequest("bot", "document")
		b.handleDocument(ctx, msg)
		return
	}
	b.metrics.ObserveRequest("bot", "text")
	b.handleStateMessage(ctx, msg)
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	b.metrics.ObserveRequest("bot", "callback")
	b.handleCallback(ctx, upd.CallbackQuery)
}

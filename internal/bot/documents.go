package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/unitconv/internal/dialog"
	"github.com/Spok95/unitconv/internal/infra/excel"
)

// sendTable выгружает таблицу пересчёта категории в Excel и шлёт документом.
func (b *Bot) sendTable(ctx context.Context, chatID int64, category string, value float64) {
	t, err := b.conv.Table(ctx, category, value)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, conversionError(err)))
		return
	}

	data, err := excel.WriteTable(t, b.conv.Precision())
	if err != nil {
		b.log.Error("table export failed", "category", t.Category, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Failed to build the table file."))
		return
	}

	fileName := fmt.Sprintf("%s_%s.xlsx",
		strings.ToLower(string(t.Category)),
		time.Now().Format("20060102_150405"),
	)
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fileName,
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("%s %s: every unit pair for value %s.", t.Category.Icon(), t.Category, b.conv.Format(value))
	b.send(doc)
}

// handleDocument принимает Excel для пакетной конвертации.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	st, _ := b.states.Get(ctx, chatID)
	if st.State != dialog.StateAwaitBatch {
		b.send(tgbotapi.NewMessage(chatID, "To convert a file, send /batch first."))
		return
	}
	if !strings.HasSuffix(strings.ToLower(msg.Document.FileName), ".xlsx") {
		b.send(tgbotapi.NewMessage(chatID, "Need an .xlsx file."))
		return
	}

	data, err := b.downloadTelegramFile(msg.Document.FileID)
	if err != nil {
		b.log.Error("download failed", "file_id", msg.Document.FileID, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Could not download the file, try again."))
		return
	}

	out, sum, err := excel.ConvertBatch(ctx, b.conv, data)
	if err != nil {
		text := "Could not read the Excel file (damaged or not .xlsx)."
		if errors.Is(err, excel.ErrEmptyBatch) {
			text = "The file has no rows to convert."
		}
		b.send(tgbotapi.NewMessage(chatID, text))
		return
	}
	_ = b.states.Reset(ctx, chatID)
	b.log.Info("batch converted", "chat_id", chatID, "rows", sum.Rows, "failed", sum.Failed)

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("converted_%s.xlsx", time.Now().Format("20060102_150405")),
		Bytes: out,
	})
	doc.Caption = fmt.Sprintf("Rows: %d, failed: %d.", sum.Rows, sum.Failed)
	b.send(doc)
}

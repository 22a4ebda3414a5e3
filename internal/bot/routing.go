package bot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/unitconv/internal/dialog"
	"github.com/Spok95/unitconv/internal/domain/units"
	"github.com/Spok95/unitconv/internal/service"
)

const helpText = `Commands:
/convert - step-by-step conversion (category → units → value)
/convert 10 km mi - one-shot conversion
/table <category> [value] - Excel table of all unit pairs
/batch - convert an Excel file (category | value | from | to)
/cancel - stop the current step
/help - this help`

var knownCommands = map[string]bool{
	"start": true, "help": true, "convert": true, "table": true, "batch": true, "cancel": true,
}

func commandLabel(cmd string) string {
	if knownCommands[cmd] {
		return "/" + cmd
	}
	return "/unknown"
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		b.clearPrevStep(ctx, chatID)
		_ = b.states.Reset(ctx, chatID)
		m := tgbotapi.NewMessage(chatID,
			"🔄 Unit Converter\nConvert length, weight, temperature and time. Press «Convert» to begin.")
		m.ReplyMarkup = mainReplyKeyboard()
		b.send(m)

	case "help":
		b.sendHelp(chatID)

	case "convert":
		args := strings.TrimSpace(msg.CommandArguments())
		if args == "" {
			b.startWizard(ctx, chatID)
			return
		}
		req, err := parseOneShot(args)
		if err != nil {
			b.send(tgbotapi.NewMessage(chatID, "Format: /convert 10 km mi  or  /convert Length 10 Kilometers Miles"))
			return
		}
		b.replyConversion(ctx, chatID, req, nil)

	case "table":
		args := strings.Fields(msg.CommandArguments())
		if len(args) == 0 {
			m := tgbotapi.NewMessage(chatID, "Pick a category for the table:")
			m.ReplyMarkup = tableKeyboard()
			b.send(m)
			return
		}
		value := 1.0
		if len(args) > 1 {
			v, err := parseNumber(args[1])
			if err != nil {
				b.send(tgbotapi.NewMessage(chatID, "Value must be a number, e.g. /table Length 2.5"))
				return
			}
			value = v
		}
		b.sendTable(ctx, chatID, args[0], value)

	case "batch":
		b.startBatch(ctx, chatID)

	case "cancel":
		b.clearPrevStep(ctx, chatID)
		_ = b.states.Reset(ctx, chatID)
		b.send(tgbotapi.NewMessage(chatID, "Cancelled."))

	default:
		b.send(tgbotapi.NewMessage(chatID, "Unknown command. Type /help"))
	}
}

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	// кнопки нижней панели
	switch text {
	case btnConvert:
		b.startWizard(ctx, chatID)
		return
	case btnTable:
		m := tgbotapi.NewMessage(chatID, "Pick a category for the table:")
		m.ReplyMarkup = tableKeyboard()
		b.send(m)
		return
	case btnBatch:
		b.startBatch(ctx, chatID)
		return
	case btnHelp:
		b.sendHelp(chatID)
		return
	}

	st, _ := b.states.Get(ctx, chatID)
	switch st.State {
	case dialog.StateAwaitValue:
		v, err := parseNumber(text)
		if err != nil {
			b.send(tgbotapi.NewMessage(chatID, "Please send a number, e.g. 12.5"))
			return
		}
		cat, _ := dialog.GetString(st.Payload, dialog.KeyCategory)
		from, _ := dialog.GetString(st.Payload, dialog.KeyFrom)
		to, _ := dialog.GetString(st.Payload, dialog.KeyTo)
		kb := valueKeyboard()
		b.replyConversion(ctx, chatID, service.Request{Category: cat, From: from, To: to, Value: v}, &kb)

	case dialog.StateAwaitBatch:
		b.send(tgbotapi.NewMessage(chatID, "Waiting for an .xlsx file. /cancel to stop."))

	case dialog.StatePickCategory, dialog.StatePickFrom, dialog.StatePickTo:
		b.send(tgbotapi.NewMessage(chatID, "Use the buttons above, or /cancel."))

	default:
		// свободный текст вида "10 km mi" тоже понимаем
		if req, err := parseOneShot(text); err == nil {
			b.replyConversion(ctx, chatID, req, nil)
			return
		}
		b.send(tgbotapi.NewMessage(chatID, "Press «Convert» or type /help"))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		_ = b.answerCallback(cb, "", false)
		return
	}
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID
	data := cb.Data

	st, _ := b.states.Get(ctx, chatID)
	p := st.Payload

	switch {
	case strings.HasPrefix(data, "cat:"):
		cat, err := units.ParseCategory(strings.TrimPrefix(data, "cat:"))
		if err != nil {
			_ = b.answerCallback(cb, "Unknown category", true)
			return
		}
		p[dialog.KeyCategory] = string(cat)
		delete(p, dialog.KeyFrom)
		delete(p, dialog.KeyTo)
		_ = b.states.Set(ctx, chatID, dialog.StatePickFrom, p)
		b.showUnitPick(chatID, msgID, cat, "from", "")

	case strings.HasPrefix(data, "from:"):
		cat, ok := b.payloadCategory(p)
		if !ok || st.State != dialog.StatePickFrom {
			_ = b.answerCallback(cb, "This step is outdated, start again with /convert", true)
			return
		}
		u, err := units.ParseUnitIn(cat, strings.TrimPrefix(data, "from:"))
		if err != nil {
			_ = b.answerCallback(cb, "Unknown unit", true)
			return
		}
		p[dialog.KeyFrom] = string(u)
		_ = b.states.Set(ctx, chatID, dialog.StatePickTo, p)
		b.showUnitPick(chatID, msgID, cat, "to", u)

	case strings.HasPrefix(data, "to:"):
		cat, ok := b.payloadCategory(p)
		if !ok || st.State != dialog.StatePickTo {
			_ = b.answerCallback(cb, "This step is outdated, start again with /convert", true)
			return
		}
		u, err := units.ParseUnitIn(cat, strings.TrimPrefix(data, "to:"))
		if err != nil {
			_ = b.answerCallback(cb, "Unknown unit", true)
			return
		}
		p[dialog.KeyTo] = string(u)
		_ = b.states.Set(ctx, chatID, dialog.StateAwaitValue, p)
		b.showAwaitValue(chatID, msgID, p)

	case data == "conv:swap":
		if st.State != dialog.StateAwaitValue {
			_ = b.answerCallback(cb, "Nothing to swap", false)
			return
		}
		p[dialog.KeyFrom], p[dialog.KeyTo] = p[dialog.KeyTo], p[dialog.KeyFrom]
		_ = b.states.Set(ctx, chatID, dialog.StateAwaitValue, p)
		b.showAwaitValue(chatID, msgID, p)

	case data == "conv:done":
		_ = b.states.Reset(ctx, chatID)
		b.editTextAndClear(chatID, msgID, "Done. /convert to start again.")

	case data == "nav:back":
		b.goBack(ctx, chatID, msgID, st)

	case data == "nav:cancel":
		_ = b.states.Reset(ctx, chatID)
		b.editTextAndClear(chatID, msgID, "Cancelled.")

	case strings.HasPrefix(data, "tbl:"):
		b.editTextAndClear(chatID, msgID, "Building the table…")
		b.sendTable(ctx, chatID, strings.TrimPrefix(data, "tbl:"), 1)

	default:
		_ = b.answerCallback(cb, "Unknown action", false)
		return
	}
	_ = b.answerCallback(cb, "", false)
}

// goBack шаг назад по мастеру.
func (b *Bot) goBack(ctx context.Context, chatID int64, msgID int, st *dialog.Item) {
	p := st.Payload
	cat, _ := b.payloadCategory(p)
	switch st.State {
	case dialog.StatePickFrom:
		next := dialog.Payload{}
		if mid, ok := dialog.GetInt(p, dialog.KeyLastMID); ok {
			next[dialog.KeyLastMID] = mid
		}
		_ = b.states.Set(ctx, chatID, dialog.StatePickCategory, next)
		b.editCategoryPick(chatID, msgID)
	case dialog.StatePickTo:
		delete(p, dialog.KeyFrom)
		_ = b.states.Set(ctx, chatID, dialog.StatePickFrom, p)
		b.showUnitPick(chatID, msgID, cat, "from", "")
	case dialog.StateAwaitValue:
		delete(p, dialog.KeyTo)
		_ = b.states.Set(ctx, chatID, dialog.StatePickTo, p)
		from, _ := dialog.GetString(p, dialog.KeyFrom)
		b.showUnitPick(chatID, msgID, cat, "to", units.Unit(from))
	default:
		_ = b.states.Reset(ctx, chatID)
		b.editTextAndClear(chatID, msgID, "Cancelled.")
	}
}

func (b *Bot) startWizard(ctx context.Context, chatID int64) {
	b.clearPrevStep(ctx, chatID)
	m := tgbotapi.NewMessage(chatID, "Select category:")
	m.ReplyMarkup = categoryKeyboard()
	sent, ok := b.sendMsg(m)
	p := dialog.Payload{}
	if ok {
		p[dialog.KeyLastMID] = sent.MessageID
	}
	_ = b.states.Set(ctx, chatID, dialog.StatePickCategory, p)
}

// clearPrevStep убирает клавиатуру у сообщения прошлого мастера, чтобы по старым кнопкам не кликали.
func (b *Bot) clearPrevStep(ctx context.Context, chatID int64) {
	st, _ := b.states.Get(ctx, chatID)
	mid, ok := dialog.GetInt(st.Payload, dialog.KeyLastMID)
	if !ok || mid == 0 {
		return
	}
	b.send(tgbotapi.NewEditMessageReplyMarkup(chatID, mid,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}))
}

func (b *Bot) startBatch(ctx context.Context, chatID int64) {
	b.clearPrevStep(ctx, chatID)
	_ = b.states.Set(ctx, chatID, dialog.StateAwaitBatch, dialog.Payload{})
	m := tgbotapi.NewMessage(chatID,
		"Send an .xlsx file. First row is a header, columns: category | value | from | to.\nThe file comes back with result and error columns.")
	m.ReplyMarkup = navKeyboard(false, true)
	b.send(m)
}

func (b *Bot) sendHelp(chatID int64) {
	b.send(tgbotapi.NewMessage(chatID, helpText+"\n\n"+categoriesText()))
}

func (b *Bot) editCategoryPick(chatID int64, msgID int) {
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, "Select category:", categoryKeyboard()))
}

// showUnitPick side: "from" или "to"; для "to" показываем уже выбранный from.
func (b *Bot) showUnitPick(chatID int64, msgID int, cat units.Category, side string, from units.Unit) {
	text := fmt.Sprintf("%s %s\nFrom:", cat.Icon(), cat)
	if side == "to" {
		text = fmt.Sprintf("%s %s\nFrom: %s\nTo:", cat.Icon(), cat, from)
	}
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, unitKeyboard(cat, side)))
}

func (b *Bot) showAwaitValue(chatID int64, msgID int, p dialog.Payload) {
	cat, _ := b.payloadCategory(p)
	from, _ := dialog.GetString(p, dialog.KeyFrom)
	to, _ := dialog.GetString(p, dialog.KeyTo)
	text := fmt.Sprintf("%s %s: %s → %s\nSend a value.", cat.Icon(), cat, from, to)
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, valueKeyboard()))
}

func (b *Bot) replyConversion(ctx context.Context, chatID int64, req service.Request, kb *tgbotapi.InlineKeyboardMarkup) {
	res, err := b.conv.Convert(ctx, req)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, conversionError(err)))
		return
	}
	m := tgbotapi.NewMessage(chatID, res.Display)
	if kb != nil {
		m.ReplyMarkup = *kb
	}
	b.send(m)
}

func (b *Bot) payloadCategory(p dialog.Payload) (units.Category, bool) {
	s, ok := dialog.GetString(p, dialog.KeyCategory)
	if !ok {
		return "", false
	}
	c, err := units.ParseCategory(s)
	return c, err == nil
}

func conversionError(err error) string {
	switch {
	case errors.Is(err, units.ErrInvalidCategory):
		return "Unknown category. Available: " + strings.Join(categoryNames(), ", ")
	case errors.Is(err, units.ErrInvalidUnit):
		return "Can't convert: " + err.Error()
	case errors.Is(err, service.ErrInvalidValue):
		return "Please send a number, e.g. 12.5"
	case errors.Is(err, service.ErrOutOfRange):
		return "The result is too large to show, try a smaller value."
	default:
		return "Conversion failed."
	}
}

// parseOneShot "10 km mi", "10 km to mi", "Length 10 Kilometers Miles".
func parseOneShot(s string) (service.Request, error) {
	f := strings.Fields(s)
	if len(f) == 4 && strings.EqualFold(f[2], "to") {
		f = []string{f[0], f[1], f[3]}
	}
	var req service.Request
	switch len(f) {
	case 3:
		req.From, req.To = f[1], f[2]
		v, err := parseNumber(f[0])
		if err != nil {
			return req, err
		}
		req.Value = v
	case 4:
		req.Category, req.From, req.To = f[0], f[2], f[3]
		v, err := parseNumber(f[1])
		if err != nil {
			return req, err
		}
		req.Value = v
	default:
		return req, errors.New("expected: value from to")
	}
	return req, nil
}

// parseNumber принимает и запятую как разделитель; NaN и Inf не числа для пользователя.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, service.ErrInvalidValue
	}
	return v, nil
}

func categoryNames() []string {
	var out []string
	for _, c := range units.Categories() {
		out = append(out, string(c))
	}
	return out
}

func categoriesText() string {
	var sb strings.Builder
	sb.WriteString("Available categories:")
	for _, info := range units.Catalog() {
		names := make([]string, 0, len(info.Units))
		for _, u := range info.Units {
			names = append(names, string(u))
		}
		fmt.Fprintf(&sb, "\n%s %s: %s", info.Icon, info.Category, strings.Join(names, ", "))
	}
	return sb.String()
}

package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/unitconv/internal/domain/units"
)

const (
	btnConvert = "🔄 Convert"
	btnTable   = "📊 Table"
	btnBatch   = "📥 Batch (Excel)"
	btnHelp    = "ℹ️ Help"
)

func navKeyboard(back bool, cancel bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if back {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "nav:back"))
	}
	if cancel {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", "nav:cancel"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// categoryKeyboard по две категории в ряд.
func categoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return categoryButtons("cat:", navKeyboard(false, true).InlineKeyboard[0])
}

func tableKeyboard() tgbotapi.InlineKeyboardMarkup {
	return categoryButtons("tbl:", nil)
}

func categoryButtons(prefix string, tail []tgbotapi.InlineKeyboardButton) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, info := range units.Catalog() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%s %s", info.Icon, info.Category), prefix+string(info.Category)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if len(tail) > 0 {
		rows = append(rows, tail)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// unitKeyboard юниты категории по три в ряд; side - "from" или "to".
func unitKeyboard(cat units.Category, side string) tgbotapi.InlineKeyboardMarkup {
	us, _ := units.UnitsOf(cat)
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, u := range us {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(string(u), side+":"+string(u)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, navKeyboard(true, true).InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func valueKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Swap", "conv:swap"),
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", "conv:done"),
		),
		navKeyboard(true, false).InlineKeyboard[0],
	)
}

// mainReplyKeyboard Нижняя панель
func mainReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnConvert)},
			{tgbotapi.NewKeyboardButton(btnTable), tgbotapi.NewKeyboardButton(btnBatch)},
			{tgbotapi.NewKeyboardButton(btnHelp)},
		},
	}
}

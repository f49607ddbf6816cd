package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// send delivers a plain HTML message without touching the keyboard.
func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	b.deliver(msg)
}

// sendKeyboard delivers a message together with a reply keyboard.
func (b *Bot) sendKeyboard(chatID int64, text string, rows ...[]tgbotapi.KeyboardButton) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	msg.ReplyMarkup = keyboard
	b.deliver(msg)
}

// deliver is the single outbound choke point. Transport errors degrade to
// a log line; the loop never dies over a failed send.
func (b *Bot) deliver(c tgbotapi.Chattable) {
	if b.api == nil {
		return // for tests without a transport
	}
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("Failed to send message", zap.Error(err))
	}
}

func row(labels ...string) []tgbotapi.KeyboardButton {
	buttons := make([]tgbotapi.KeyboardButton, 0, len(labels))
	for _, l := range labels {
		buttons = append(buttons, tgbotapi.NewKeyboardButton(l))
	}
	return buttons
}

// sendMainMenu renders the root menu; super-admin gets the extra buttons.
func (b *Bot) sendMainMenu(chatID int64, text string, isSuper bool) {
	if isSuper {
		b.sendKeyboard(chatID, text,
			row(BtnAdmin),
			row(BtnFinance, BtnUpcoming),
			row(BtnStatus, BtnDownloadDB),
		)
		return
	}
	b.sendKeyboard(chatID, text,
		row(BtnFinance, BtnUpcoming),
		row(BtnStatus),
	)
}

func (b *Bot) sendFinanceMenu(chatID int64) {
	b.sendKeyboard(chatID, "📊 Раздел ФИНАНСЫ:",
		row(BtnCashToday, BtnCashYesterday),
		row(BtnBack),
	)
}

func (b *Bot) sendAdminMenu(chatID int64) {
	rows := [][]tgbotapi.KeyboardButton{}
	if chatID == b.superAdminID {
		rows = append(rows, row(BtnActionLog))
	}
	rows = append(rows, row(BtnArchive), row(BtnPeriodStats, BtnBack))
	b.sendKeyboard(chatID, "👁️ <b>Админ-панель:</b> Выберите действие", rows...)
}

func (b *Bot) sendLogMenu(chatID int64) {
	b.sendKeyboard(chatID, "📋 <b>Журнал действий</b>\nЧто хотите посмотреть?",
		row(BtnLogLast),
		row(BtnLogSearch),
		row(BtnBack),
	)
}

func (b *Bot) sendStatsMenu(chatID int64) {
	b.sendKeyboard(chatID, "📉 За какой период показать статистику?",
		row(BtnWeek, BtnMonth),
		row(BtnBack),
	)
}

func (b *Bot) promptDate(chatID int64) {
	b.sendKeyboard(chatID, "📅 <b>Введите дату</b> для отчета (ДД.ММ или ДД.ММ.ГГГГ):",
		row(BtnCancel),
	)
}

func (b *Bot) promptLogUser(chatID int64) {
	b.sendKeyboard(chatID, "👤 Введите <b>Имя</b> или <b>Логин</b> сотрудника:",
		row(BtnCancel),
	)
}

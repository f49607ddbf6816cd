package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	msgAccessDenied   = "⛔ <b>Доступ запрещен!</b>\n\nЯ не знаю пользователя с ID <code>%d</code>."
	msgUseButtons     = "Используйте кнопки меню 👇"
	msgNoDownload     = "⛔ У вас нет прав на скачивание базы данных."
	msgNoLogAccess    = "⛔ Доступ к журналу только у Супер-Админа."
	msgUserNotFound   = "❌ Сотрудник не найден. Попробуйте еще раз или нажмите Отмена."
	msgBadDate        = "❌ Неверный формат. Попробуйте еще раз (ДД.ММ):"
	msgReportFailed   = "⚠️ Не удалось сформировать отчет. Попробуйте позже."
	actionLogPageSize = 20
)

// HandleMessage runs one inbound message through authorization and the
// state machine. It never propagates an error: every failure path ends in
// a chat message or a log line.
func (b *Bot) HandleMessage(ctx context.Context, chatID int64, text, senderName string) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in HandleMessage", zap.Any("panic", r))
			b.send(chatID, "⚠️ Произошла ошибка при обработке запроса. Попробуйте еще раз.")
		}
	}()

	// Self-identification works for everyone, that is how an operator gets
	// an id to register in the allow-list.
	if text == "/id" {
		b.send(chatID, fmt.Sprintf("🆔 Твой ID: <code>%d</code>", chatID))
		return
	}

	isSuper := chatID == b.superAdminID
	if !isSuper && !b.isAllowed(ctx, chatID) {
		b.send(chatID, fmt.Sprintf(msgAccessDenied, chatID))
		return
	}

	action := DecodeAction(text)
	if action == ActionReset {
		b.sessions.Set(chatID, StateMain)
		b.sendMainMenu(chatID, fmt.Sprintf("👋 Привет, %s! Главное меню:", senderName), isSuper)
		return
	}

	switch b.sessions.Get(chatID) {
	case StateMain:
		b.handleMain(ctx, chatID, action, isSuper)
	case StateFinance:
		b.handleFinance(ctx, chatID, action, isSuper)
	case StateAdminPanel:
		b.handleAdminPanel(ctx, chatID, action, isSuper)
	case StateLogMenu:
		b.handleLogMenu(ctx, chatID, action)
	case StateAwaitingLogUser:
		b.handleAwaitingLogUser(ctx, chatID, action, text)
	case StateAwaitingDateArchive:
		b.handleAwaitingDateArchive(ctx, chatID, action, text)
	case StateStatsPeriod:
		b.handleStatsPeriod(ctx, chatID, action)
	}
}

// isAllowed checks the store-backed allow-list. A failed lookup denies
// access rather than opening the bot up.
func (b *Bot) isAllowed(ctx context.Context, chatID int64) bool {
	recipients, err := b.db.Recipients(ctx)
	if err != nil {
		b.logger.Warn("Failed to load recipients", zap.Error(err))
		return false
	}
	for _, id := range recipients {
		if id == chatID {
			return true
		}
	}
	return false
}

func (b *Bot) handleMain(ctx context.Context, chatID int64, action Action, isSuper bool) {
	switch action {
	case ActionFinance:
		b.sessions.Set(chatID, StateFinance)
		b.sendFinanceMenu(chatID)
	case ActionUpcoming:
		b.sendReport(ctx, chatID, b.upcomingReport)
	case ActionStatus:
		b.sendReport(ctx, chatID, b.statusReport)
	case ActionDownloadDB:
		if !isSuper {
			b.send(chatID, msgNoDownload)
			return
		}
		b.sendDatabaseFile(chatID)
	case ActionAdmin:
		if !isSuper {
			b.sendMainMenu(chatID, msgUseButtons, isSuper)
			return
		}
		b.sessions.Set(chatID, StateAdminPanel)
		b.sendAdminMenu(chatID)
	default:
		b.sendMainMenu(chatID, msgUseButtons, isSuper)
	}
}

func (b *Bot) handleFinance(ctx context.Context, chatID int64, action Action, isSuper bool) {
	switch action {
	case ActionBack:
		b.sessions.Set(chatID, StateMain)
		b.sendMainMenu(chatID, "Главное меню:", isSuper)
	case ActionCashToday:
		b.sendReport(ctx, chatID, b.dailyReportFor(today()))
	case ActionCashYesterday:
		b.sendReport(ctx, chatID, b.dailyReportFor(today().AddDate(0, 0, -1)))
	default:
		b.sendFinanceMenu(chatID)
	}
}

func (b *Bot) handleAdminPanel(ctx context.Context, chatID int64, action Action, isSuper bool) {
	switch action {
	case ActionBack:
		b.sessions.Set(chatID, StateMain)
		b.sendMainMenu(chatID, "Главное меню:", isSuper)
	case ActionArchive:
		b.sessions.Set(chatID, StateAwaitingDateArchive)
		b.promptDate(chatID)
	case ActionPeriodStats:
		b.sessions.Set(chatID, StateStatsPeriod)
		b.sendStatsMenu(chatID)
	case ActionActionLog:
		if !isSuper {
			b.send(chatID, msgNoLogAccess)
			return
		}
		b.sessions.Set(chatID, StateLogMenu)
		b.sendLogMenu(chatID)
	default:
		b.sendAdminMenu(chatID)
	}
}

func (b *Bot) handleLogMenu(ctx context.Context, chatID int64, action Action) {
	switch action {
	case ActionBack:
		b.sessions.Set(chatID, StateAdminPanel)
		b.sendAdminMenu(chatID)
	case ActionLogLast:
		b.sendReport(ctx, chatID, b.actionLogReport(0))
	case ActionLogSearch:
		b.sessions.Set(chatID, StateAwaitingLogUser)
		b.promptLogUser(chatID)
	default:
		b.sendLogMenu(chatID)
	}
}

func (b *Bot) handleAwaitingLogUser(ctx context.Context, chatID int64, action Action, text string) {
	if action == ActionCancel {
		b.sessions.Set(chatID, StateLogMenu)
		b.sendLogMenu(chatID)
		return
	}

	users, err := b.db.FindUsers(ctx, text)
	if err != nil {
		b.logger.Warn("Employee lookup failed", zap.Error(err), zap.String("query", text))
		b.send(chatID, msgReportFailed)
		return
	}

	switch {
	case len(users) == 0:
		b.send(chatID, msgUserNotFound)
	case len(users) > 1:
		names := make([]string, 0, len(users))
		for _, u := range users {
			names = append(names, u.FullName)
		}
		b.send(chatID, fmt.Sprintf("⚠️ Найдено несколько: %s. Уточните запрос.", strings.Join(names, ", ")))
	default:
		b.sendReport(ctx, chatID, b.actionLogReport(users[0].ID))
		b.sessions.Set(chatID, StateLogMenu)
		b.sendLogMenu(chatID)
	}
}

func (b *Bot) handleAwaitingDateArchive(ctx context.Context, chatID int64, action Action, text string) {
	if action == ActionCancel {
		b.sessions.Set(chatID, StateAdminPanel)
		b.sendAdminMenu(chatID)
		return
	}

	date, err := ParseArchiveDate(time.Now(), text)
	if err != nil {
		b.send(chatID, msgBadDate)
		return
	}

	b.sendReport(ctx, chatID, b.dailyReportFor(date))
	b.sessions.Set(chatID, StateAdminPanel)
	b.sendAdminMenu(chatID)
}

func (b *Bot) handleStatsPeriod(ctx context.Context, chatID int64, action Action) {
	switch action {
	case ActionBack:
		b.sessions.Set(chatID, StateAdminPanel)
		b.sendAdminMenu(chatID)
	case ActionWeek:
		b.sendReport(ctx, chatID, b.periodReportFor(7))
	case ActionMonth:
		b.sendReport(ctx, chatID, b.periodReportFor(30))
	default:
		b.sendStatsMenu(chatID)
	}
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

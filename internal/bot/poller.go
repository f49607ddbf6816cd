package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"uley/internal/report"
)

// Start runs the polling loop until ctx is canceled. It restores the poll
// cursor from the store, then repeatedly fetches new updates and feeds the
// text ones to the state machine in arrival order. The cursor advances past
// every update in a batch, bodyless ones included.
//
// Transport errors never stop the loop: a failed poll logs and backs off.
// Cancellation is cooperative, checked between iterations, so worst-case
// shutdown latency is one poll timeout plus one idle sleep.
func (b *Bot) Start(ctx context.Context) {
	if offset, err := b.db.PollOffset(ctx); err != nil {
		b.logger.Warn("Failed to restore poll cursor, starting from scratch", zap.Error(err))
	} else {
		b.offset = offset
	}

	b.sessionStart = time.Now()
	if b.operator != "" {
		b.sendStartupNotice()
	}

	b.logger.Info("Bot polling loop started", zap.Int("offset", b.offset))

	for {
		if err := b.pollOnce(ctx); err != nil {
			b.logger.Warn("Poll failed", zap.Error(err))
			if !sleepCtx(ctx, b.errorBackoff) {
				break
			}
		}
		if !sleepCtx(ctx, b.idleSleep) {
			break
		}
	}

	b.logger.Info("Bot polling loop stopped")
	if b.operator != "" {
		b.sendShutdownNotice(context.Background())
	}
}

// pollOnce fetches one batch of updates and dispatches them.
func (b *Bot) pollOnce(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(b.offset)
	cfg.Timeout = b.pollTimeout

	updates, err := b.api.GetUpdates(cfg)
	if err != nil {
		return fmt.Errorf("get updates: %w", err)
	}
	if len(updates) == 0 {
		return nil
	}

	for _, update := range updates {
		if update.UpdateID >= b.offset {
			b.offset = update.UpdateID + 1
		}
		msg := update.Message
		if msg == nil || msg.Text == "" {
			continue
		}

		senderName := "User"
		if msg.From != nil && msg.From.FirstName != "" {
			senderName = msg.From.FirstName
		}
		b.logger.Debug("Inbound message",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.String("sender", senderName),
			zap.String("text", msg.Text),
		)
		b.HandleMessage(ctx, msg.Chat.ID, msg.Text, senderName)
	}

	if b.checkpoint != nil {
		b.checkpoint(b.offset)
	}
	return nil
}

// sleepCtx waits for d or cancellation, reporting false when canceled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (b *Bot) sendStartupNotice() {
	b.send(b.superAdminID, fmt.Sprintf(
		"🟢 <b>БОТ РАБОТАЕТ! (v%s)</b>\n\n👤 Пользователь: <b>%s</b> зашел в систему.\n🕒 Время: %s",
		report.Version, b.operator, b.sessionStart.Format("15:04:05")))
}

// sendShutdownNotice reports the operator's session activity to the
// super-admin. An operator missing from the store degrades to a generic
// notice, a failed report to an error notice.
func (b *Bot) sendShutdownNotice(ctx context.Context) {
	user, err := b.db.FindUserExact(ctx, b.operator)
	if err != nil {
		b.send(b.superAdminID, fmt.Sprintf(
			"🔴 <b>БОТ ОСТАНОВЛЕН (Ошибка отчета)</b>\n\n👤 %s\n⚠️ Ошибка: %v", b.operator, err))
		return
	}
	if user == nil {
		b.send(b.superAdminID, fmt.Sprintf(
			"🔴 <b>БОТ ОСТАНОВЛЕН</b>\n\n👤 Пользователь: <b>%s</b> (Не найден в БД)\n⚠️ Детальный отчет недоступен.", b.operator))
		return
	}

	actions, err := b.db.ActionCountSince(ctx, user.ID, b.sessionStart)
	if err != nil {
		b.send(b.superAdminID, fmt.Sprintf(
			"🔴 <b>БОТ ОСТАНОВЛЕН (Ошибка отчета)</b>\n\n👤 %s\n⚠️ Ошибка: %v", b.operator, err))
		return
	}

	duration := time.Since(b.sessionStart).Round(time.Minute)
	b.send(b.superAdminID, fmt.Sprintf(
		"🔴 <b>БОТ ОСТАНОВЛЕН</b>\n\n👤 Пользователь: <b>%s</b> вышел из системы.\n🕒 Сессия: %s — %s (%s)\n📋 Действий за сессию: <b>%d</b>",
		b.operator,
		b.sessionStart.Format("15:04"),
		time.Now().Format("15:04"),
		duration,
		actions))
}

// Package sender implements the one-shot broadcast used for outbound
// notifications: one message, many recipients, optional file attachments.
package sender

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// API is the slice of the Telegram client the sender needs.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Result summarizes one broadcast run.
type Result struct {
	Success bool
	Message string
	Sent    int
	Errors  []string
}

// Sender performs stateless multi-recipient broadcasts. Safe to use from
// its own goroutine alongside the polling loop: the two share nothing but
// the transport.
type Sender struct {
	api           API
	defaultChatID int64
	logger        *zap.Logger

	// Politeness delays, shortened in tests.
	filePause      time.Duration
	recipientPause time.Duration
}

func New(api API, defaultChatID int64, logger *zap.Logger) *Sender {
	return &Sender{
		api:            api,
		defaultChatID:  defaultChatID,
		logger:         logger,
		filePause:      time.Second,
		recipientPause: 300 * time.Millisecond,
	}
}

// Broadcast sends text, then each file, to every recipient. Failures are
// isolated per recipient and per file; the run succeeds if at least one
// recipient got the text.
func (s *Sender) Broadcast(text string, recipients []int64, files []string) Result {
	if len(recipients) == 0 {
		if s.defaultChatID == 0 {
			return Result{Success: false, Message: "Ошибка: Нет получателей (база пуста и DEFAULT_CHAT_ID не задан)"}
		}
		recipients = []int64{s.defaultChatID}
	}

	var sent int
	var errs []string

	for i, chatID := range recipients {
		if chatID == 0 {
			continue
		}
		if i > 0 {
			time.Sleep(s.recipientPause)
		}

		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := s.api.Send(msg); err != nil {
			errs = append(errs, fmt.Sprintf("ID %d: %v", chatID, err))
			continue
		}
		sent++

		for _, path := range files {
			if err := s.sendFile(chatID, path); err != nil {
				errs = append(errs, fmt.Sprintf("Файл %s → %d: %v", path, chatID, err))
			}
			time.Sleep(s.filePause)
		}
	}

	if sent > 0 {
		msg := fmt.Sprintf("Отправлено: %d из %d сотр.", sent, len(recipients))
		if len(files) > 0 {
			msg += " (+файлы)"
		}
		if len(errs) > 0 {
			msg += fmt.Sprintf(" (Ошибки: %d)", len(errs))
		}
		return Result{Success: true, Message: msg, Sent: sent, Errors: errs}
	}

	shown := errs
	if len(shown) > 3 {
		shown = shown[:3]
	}
	return Result{
		Success: false,
		Message: fmt.Sprintf("Сбой рассылки: %s...", strings.Join(shown, "; ")),
		Errors:  errs,
	}
}

// BroadcastAsync runs Broadcast on its own goroutine and fires done exactly
// once with the result.
func (s *Sender) BroadcastAsync(text string, recipients []int64, files []string, done func(Result)) {
	go func() {
		result := s.Broadcast(text, recipients, files)
		if !result.Success {
			s.logger.Warn("Broadcast failed", zap.String("message", result.Message))
		} else {
			s.logger.Info("Broadcast finished", zap.Int("sent", result.Sent), zap.Int("errors", len(result.Errors)))
		}
		if done != nil {
			done(result)
		}
	}()
}

func (s *Sender) sendFile(chatID int64, path string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	if _, err := s.api.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

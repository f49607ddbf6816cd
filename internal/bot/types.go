package bot

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"uley/internal/storage"
)

// API is the slice of the Telegram client the bot needs. *tgbotapi.BotAPI
// satisfies it; tests substitute a recorder.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// CheckpointFunc persists the advanced poll cursor after each batch so a
// restart does not redeliver it. nil keeps the cursor in memory only.
type CheckpointFunc func(offset int)

// Bot owns the session state machine and the polling loop. The polling
// goroutine is the only writer of offset and sessionStart.
type Bot struct {
	api          API
	db           storage.Storage
	sessions     SessionStore
	superAdminID int64
	logger       *zap.Logger

	// Operator running the desktop app; empty disables lifecycle notices.
	operator string

	offset       int
	checkpoint   CheckpointFunc
	pollTimeout  int
	sessionStart time.Time

	// Loop pacing, shortened in tests.
	idleSleep    time.Duration
	errorBackoff time.Duration
}

package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"uley/internal/storage"
)

// Options configure optional bot behavior.
type Options struct {
	// Operator enables the startup/shutdown notices to the super-admin.
	Operator string
	// PollTimeout is the getUpdates server-side wait in seconds.
	PollTimeout int
	// Checkpoint persists the poll cursor; nil disables persistence.
	Checkpoint CheckpointFunc
}

// NewBot creates the bot against the real Telegram API.
func NewBot(token string, db storage.Storage, superAdminID int64, logger *zap.Logger, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))
	return newBot(api, db, superAdminID, logger, opts), nil
}

func newBot(api API, db storage.Storage, superAdminID int64, logger *zap.Logger, opts Options) *Bot {
	timeout := opts.PollTimeout
	if timeout <= 0 {
		timeout = 2
	}
	return &Bot{
		api:          api,
		db:           db,
		sessions:     NewMemorySessions(),
		superAdminID: superAdminID,
		logger:       logger,
		operator:     opts.Operator,
		checkpoint:   opts.Checkpoint,
		pollTimeout:  timeout,
		idleSleep:    time.Second,
		errorBackoff: 5 * time.Second,
	}
}

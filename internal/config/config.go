package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string
	SuperAdminID  int64

	// DefaultChatID is the broadcast fallback when no recipients are passed.
	DefaultChatID int64

	// OperatorName enables the startup/shutdown notices to the super-admin.
	OperatorName string

	DatabasePath string
	UseMockDB    bool

	PollTimeout int // getUpdates server-side wait, seconds
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	superAdminStr := os.Getenv("SUPER_ADMIN_CHAT_ID")
	if superAdminStr == "" {
		return nil, fmt.Errorf("SUPER_ADMIN_CHAT_ID is required")
	}
	superAdmin, err := strconv.ParseInt(superAdminStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SUPER_ADMIN_CHAT_ID: %w", err)
	}
	config.SuperAdminID = superAdmin

	if defaultChatStr := os.Getenv("DEFAULT_CHAT_ID"); defaultChatStr != "" {
		defaultChat, err := strconv.ParseInt(defaultChatStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid DEFAULT_CHAT_ID: %w", err)
		}
		config.DefaultChatID = defaultChat
	}

	config.OperatorName = os.Getenv("OPERATOR_NAME")
	config.UseMockDB = os.Getenv("USE_MOCK_DB") == "true"

	config.DatabasePath = os.Getenv("DATABASE_PATH")
	if config.DatabasePath == "" && !config.UseMockDB {
		config.DatabasePath = "uley.db"
	}

	config.PollTimeout = 2
	if timeoutStr := os.Getenv("POLL_TIMEOUT_SECONDS"); timeoutStr != "" {
		timeout, err := strconv.Atoi(timeoutStr)
		if err != nil || timeout < 0 {
			return nil, fmt.Errorf("invalid POLL_TIMEOUT_SECONDS: %s", timeoutStr)
		}
		config.PollTimeout = timeout
	}

	return config, nil
}

// Package config handles application configuration from environment variables
// and the feed list file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	LogLevel         string
	LogFile          string
	UserAgent        string
	TelegramBotToken string
	TelegramChatID   int64
}

// Load reads configuration from environment variables. Values from a .env
// file in the working directory are used when the variable is not set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	userAgent := os.Getenv("DIGEST_USER_AGENT")
	if userAgent == "" {
		userAgent = "TechDigest/1.0"
	}

	token := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	var chatID int64
	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
		chatID = id
	}
	if token != "" && chatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	return &Config{
		LogLevel:         logLevel,
		LogFile:          os.Getenv("LOG_FILE"),
		UserAgent:        userAgent,
		TelegramBotToken: token,
		TelegramChatID:   chatID,
	}, nil
}

// NotifyEnabled reports whether a Telegram summary should be sent.
func (c *Config) NotifyEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

package telegram

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ClientConfig configures the Bot API client
type ClientConfig struct {
	Token       string
	Endpoint    string // Bot API endpoint format, empty for the public API
	Debug       bool
	PollTimeout int // long polling timeout in seconds
}

// NewClient creates a Bot API client and verifies the token with getMe
func NewClient(cfg ClientConfig) (*tgbotapi.BotAPI, error) {
	if err := tgbotapi.SetLogger(slogLogger{}); err != nil {
		return nil, fmt.Errorf("failed to set telegram logger: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	// Long polling requests stay open for PollTimeout seconds
	client := &http.Client{
		Timeout: time.Duration(cfg.PollTimeout)*time.Second + 30*time.Second,
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}
	api.Debug = cfg.Debug

	slog.Info("Authorized on Telegram", "username", api.Self.UserName)
	return api, nil
}

// slogLogger routes the Bot API client logs to slog
type slogLogger struct{}

// Println is used by the client for polling failures
func (slogLogger) Println(v ...any) {
	slog.Warn(strings.TrimSpace(fmt.Sprintln(v...)), "component", "telegram")
}

// Printf is used by the client for debug request dumps
func (slogLogger) Printf(format string, v ...any) {
	slog.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "telegram")
}

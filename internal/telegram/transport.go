package telegram

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// PollingAPI is the Bot API client surface needed for long polling
type PollingAPI interface {
	API
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// WebhookAPI is the Bot API client surface needed for webhook delivery
type WebhookAPI interface {
	API
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// SecretTokenHeader carries the webhook secret on every pushed update
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// Poller receives updates with getUpdates long polling
type Poller struct {
	api     PollingAPI
	bot     *Bot
	timeout int
}

// NewPoller creates a long polling transport
func NewPoller(api PollingAPI, bot *Bot, timeout int) *Poller {
	return &Poller{api: api, bot: bot, timeout: timeout}
}

// Start removes any webhook, since Telegram refuses getUpdates while one is
// set, and starts consuming updates
func (p *Poller) Start(ctx context.Context) error {
	if _, err := p.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	config := tgbotapi.NewUpdate(0)
	config.Timeout = p.timeout
	updates := p.api.GetUpdatesChan(config)

	go p.bot.Consume(updates)

	slog.Info("Started long polling", "timeout", p.timeout)
	return nil
}

// Stop ends polling and waits for in-flight updates
func (p *Poller) Stop(ctx context.Context) error {
	p.api.StopReceivingUpdates()
	slog.Info("Stopped long polling")
	return p.bot.Shutdown(ctx)
}

// Webhook receives updates pushed by Telegram to an HTTP endpoint
type Webhook struct {
	api    WebhookAPI
	bot    *Bot
	url    string
	secret string
}

// NewWebhook creates a webhook transport registered at url. When secret is
// set, Telegram sends it with every update and requests without it are refused.
func NewWebhook(api WebhookAPI, bot *Bot, url, secret string) *Webhook {
	return &Webhook{api: api, bot: bot, url: url, secret: secret}
}

// Start registers the webhook URL and secret with Telegram
func (w *Webhook) Start(ctx context.Context) error {
	config, err := tgbotapi.NewWebhook(w.url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}

	// WebhookConfig has no secret_token field, so setWebhook is called directly
	params := tgbotapi.Params{}
	params.AddNonEmpty("url", config.URL.String())
	params.AddNonEmpty("secret_token", w.secret)

	if _, err := w.api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	if w.secret == "" {
		slog.Warn("Webhook registered without a secret token", "url", w.url)
	} else {
		slog.Info("Registered webhook", "url", w.url)
	}
	return nil
}

// Stop waits for in-flight updates. The webhook stays registered so updates
// queue at Telegram until the next start.
func (w *Webhook) Stop(ctx context.Context) error {
	return w.bot.Shutdown(ctx)
}

// ServeHTTP decodes one pushed update and handles it asynchronously
func (w *Webhook) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if !w.authorized(r) {
		slog.Warn("Rejected webhook request without valid secret", "remote", r.RemoteAddr)
		http.Error(rw, "unauthorized", http.StatusUnauthorized)
		return
	}

	update, err := w.api.HandleUpdate(r)
	if err != nil {
		slog.Warn("Rejected webhook request", "error", err)
		http.Error(rw, "invalid update", http.StatusBadRequest)
		return
	}

	w.bot.Dispatch(*update)
	rw.WriteHeader(http.StatusOK)
}

func (w *Webhook) authorized(r *http.Request) bool {
	if w.secret == "" {
		return true
	}
	got := r.Header.Get(SecretTokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(w.secret)) == 1
}

package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/apodervinskas/Veteran-TestBot/internal/config"
	"github.com/apodervinskas/Veteran-TestBot/internal/menu"
	"github.com/apodervinskas/Veteran-TestBot/internal/server"
	"github.com/apodervinskas/Veteran-TestBot/internal/telegram"
	"github.com/apodervinskas/Veteran-TestBot/pkg/providers"
)

// ConfigModule supplies the already loaded configuration
func ConfigModule(cfg *config.Config) fx.Option {
	return fx.Module("config", fx.Supply(cfg))
}

// SourcesModule provides the named content sources
var SourcesModule = fx.Module("sources",
	fx.Provide(BuildSources),
)

// MenuModule provides the menu content and router
var MenuModule = fx.Module("menu",
	fx.Provide(
		menu.DefaultContent,
		NewRouter,
	),
)

// TelegramModule provides the Bot API client, the bot and its update transport
var TelegramModule = fx.Module("telegram",
	fx.Provide(
		NewBotAPI,
		NewBot,
		NewTransport,
	),
)

// ServerModule provides the HTTP server and starts everything
var ServerModule = fx.Module("server",
	fx.Provide(
		NewAPIServer,
		NewHTTPServer,
	),
	fx.Invoke(RegisterLifecycle),
)

// Modules returns every module of the bot for cfg
func Modules(cfg *config.Config) fx.Option {
	return fx.Options(
		ConfigModule(cfg),
		SourcesModule,
		MenuModule,
		TelegramModule,
		ServerModule,
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: slog.Default()}
		}),
	)
}

// New creates the bot application. Run blocks until SIGINT or SIGTERM.
func New(cfg *config.Config) *fx.App {
	return fx.New(Modules(cfg))
}

// NewRouter creates the menu router over the configured sources
func NewRouter(content *menu.Content, sources *providers.Set) (*menu.Router, error) {
	return menu.NewRouter(content, sources)
}

// NewBotAPI creates the Bot API client
func NewBotAPI(cfg *config.Config) (*tgbotapi.BotAPI, error) {
	return telegram.NewClient(telegram.ClientConfig{
		Token:       cfg.Telegram.Token,
		Debug:       cfg.Telegram.Debug,
		PollTimeout: cfg.Telegram.PollTimeout,
	})
}

// NewBot creates the update handler
func NewBot(api *tgbotapi.BotAPI, router *menu.Router, cfg *config.Config) *telegram.Bot {
	return telegram.NewBot(api, router, cfg.Telegram.HandlerTimeout)
}

// Transport delivers updates to the bot
type Transport interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// TransportResult is the update transport chosen by the configuration
type TransportResult struct {
	fx.Out
	Transport Transport
	Webhook   *telegram.Webhook // nil in long polling mode
}

// NewTransport selects webhook delivery when a webhook URL is configured and
// long polling otherwise
func NewTransport(cfg *config.Config, api *tgbotapi.BotAPI, bot *telegram.Bot) TransportResult {
	if cfg.WebhookMode() {
		webhook := telegram.NewWebhook(api, bot, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret)
		slog.Info("Using webhook transport", "url", cfg.Telegram.WebhookURL)
		return TransportResult{Transport: webhook, Webhook: webhook}
	}

	slog.Info("Using long polling transport", "timeout", cfg.Telegram.PollTimeout)
	return TransportResult{Transport: telegram.NewPoller(api, bot, cfg.Telegram.PollTimeout)}
}

// NewAPIServer creates the HTTP route handlers
func NewAPIServer(cfg *config.Config, sources *providers.Set, webhook *telegram.Webhook) *server.Server {
	var handler http.Handler
	if webhook != nil {
		handler = webhook
	}
	return server.NewServer(sources, handler).WithAPIToken(cfg.HTTP.APIToken)
}

// NewHTTPServer creates the HTTP server on the configured address
func NewHTTPServer(cfg *config.Config, s *server.Server) *server.HTTPServer {
	if !cfg.Telegram.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	return server.NewHTTPServer(cfg.HTTP.ListenAddr, s.NewEngine())
}

// LifecycleParams groups the long running components
type LifecycleParams struct {
	fx.In
	Lifecycle  fx.Lifecycle
	Transport  Transport
	HTTPServer *server.HTTPServer
}

// RegisterLifecycle starts the HTTP server before the transport, so the
// webhook route exists when Telegram is told about it. Stop runs in reverse.
func RegisterLifecycle(p LifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: p.HTTPServer.Start,
		OnStop:  p.HTTPServer.Stop,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStart: p.Transport.Start,
		OnStop:  p.Transport.Stop,
	})
}

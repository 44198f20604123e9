// Package telegram connects the menu router to the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/apodervinskas/Veteran-TestBot/internal/menu"
)

// DefaultHandlerTimeout bounds the handling of one update
const DefaultHandlerTimeout = 60 * time.Second

// API is the part of the Bot API client used to deliver responses
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler turns a user action into responses
type Handler interface {
	Handle(ctx context.Context, action menu.Action) []menu.Response
}

// Bot handles updates, each in its own goroutine
type Bot struct {
	api     API
	handler Handler
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewBot creates a bot delivering handler responses through api
func NewBot(api API, handler Handler, timeout time.Duration) *Bot {
	if timeout <= 0 {
		timeout = DefaultHandlerTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		api:     api,
		handler: handler,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Dispatch handles update in a new goroutine. Updates arriving after
// Shutdown are dropped.
func (b *Bot) Dispatch(update tgbotapi.Update) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		slog.Warn("Dropping update after shutdown", "update_id", update.UpdateID)
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		b.HandleUpdate(b.ctx, update)
	}()
}

// Consume dispatches updates until the channel is closed or the bot shuts down
func (b *Bot) Consume(updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-b.ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.Dispatch(update)
		}
	}
}

// Shutdown cancels in-flight handlers and waits for them to return
func (b *Bot) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// target is where the responses to one update go
type target struct {
	chatID     int64
	messageID  int    // message carrying the pressed button, 0 for text messages
	callbackID string // callback query to answer
}

// ActionFromUpdate extracts the user action of an update. Updates the menu
// does not react to report false.
func ActionFromUpdate(update tgbotapi.Update) (menu.Action, bool) {
	action, _, ok := parseUpdate(update)
	return action, ok
}

func parseUpdate(update tgbotapi.Update) (menu.Action, target, bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		msg := update.Message
		t := target{chatID: msg.Chat.ID}
		if msg.IsCommand() && msg.Command() == "start" {
			return menu.Action{Kind: menu.ActionStart, Key: msg.Text}, t, true
		}
		return menu.Action{Kind: menu.ActionText, Key: msg.Text}, t, true

	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		t := target{callbackID: cb.ID}
		if cb.Message == nil || cb.Message.Chat == nil {
			// inline-mode messages cannot be edited through chat id
			return menu.Action{}, t, false
		}
		t.chatID = cb.Message.Chat.ID
		t.messageID = cb.Message.MessageID
		return menu.Action{Kind: menu.ActionCallback, Key: cb.Data}, t, true
	}

	return menu.Action{}, target{}, false
}

// HandleUpdate routes one update and delivers the responses. Callback
// queries are always answered. A panic in the handler is logged, not raised.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Update handler panicked", "update_id", update.UpdateID, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	action, t, ok := parseUpdate(update)
	if t.callbackID != "" {
		defer b.answerCallback(t.callbackID)
	}
	if !ok {
		slog.Debug("Ignoring update", "update_id", update.UpdateID)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	responses := b.handler.Handle(ctx, action)
	for _, resp := range responses {
		if err := b.deliver(t, resp); err != nil {
			slog.Error("Failed to deliver response", "chat_id", t.chatID, "action", action.Kind, "key", action.Key, "error", err)
		}
	}

	slog.Debug("Handled update", "update_id", update.UpdateID, "action", action.Kind, "key", action.Key,
		"responses", len(responses), "duration", time.Since(start))
}

func (b *Bot) deliver(t target, resp menu.Response) error {
	if resp.Edit && t.messageID != 0 {
		edit := tgbotapi.NewEditMessageText(t.chatID, t.messageID, resp.Text)
		edit.ParseMode = tgbotapi.ModeHTML
		if len(resp.Inline) > 0 {
			markup := InlineKeyboard(resp.Inline)
			edit.ReplyMarkup = &markup
		}

		_, err := b.api.Request(edit)
		if isNotModified(err) {
			slog.Debug("Message not modified", "chat_id", t.chatID, "message_id", t.messageID)
			return nil
		}
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, resp.Text)
	msg.ParseMode = tgbotapi.ModeHTML
	switch {
	case len(resp.Inline) > 0:
		msg.ReplyMarkup = InlineKeyboard(resp.Inline)
	case len(resp.Reply) > 0:
		msg.ReplyMarkup = ReplyKeyboard(resp.Reply)
	}

	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) answerCallback(id string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
		slog.Warn("Failed to answer callback query", "callback_id", id, "error", err)
	}
}

// isNotModified reports Telegram's refusal to edit a message to identical content
func isNotModified(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return strings.Contains(apiErr.Message, "message is not modified")
	}
	return strings.Contains(err.Error(), "message is not modified")
}

// ReplyKeyboard converts reply keyboard rows to Telegram markup
func ReplyKeyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	buttons := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		line := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			line = append(line, tgbotapi.NewKeyboardButton(label))
		}
		buttons = append(buttons, tgbotapi.NewKeyboardButtonRow(line...))
	}

	keyboard := tgbotapi.NewReplyKeyboard(buttons...)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// InlineKeyboard converts inline keyboard rows to Telegram markup
func InlineKeyboard(rows [][]menu.Button) tgbotapi.InlineKeyboardMarkup {
	buttons := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		line := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			line = append(line, tgbotapi.NewInlineKeyboardButtonData(button.Label, button.Data))
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(line...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

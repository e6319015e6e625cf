// Package telegram pushes short staff alerts (new booking requests) to a chat.
package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"safari_tours/internal/adapters/observability"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Alerter struct {
	bot    sender
	chatID int64
}

// New connects to the bot API (getMe) once.
func New(token string, chatID int64) (*Alerter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Alerter{bot: bot, chatID: chatID}, nil
}

func (a *Alerter) Alert(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(a.chatID, text)
	msg.DisableWebPagePreview = true
	start := time.Now()
	_, err := a.bot.Send(msg)
	status := 200
	if err != nil {
		status = 500
	}
	observability.ObserveExternal("telegram", "sendMessage", status, time.Since(start))
	return err
}

// Noop drops alerts when no bot token is configured.
type Noop struct{}

func (Noop) Alert(context.Context, string) error { return nil }

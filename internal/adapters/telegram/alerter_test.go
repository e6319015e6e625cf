package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	got []tgbotapi.Chattable
	err error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.got = append(f.got, c)
	return tgbotapi.Message{}, f.err
}

func TestAlert_SendsToChat(t *testing.T) {
	bot := &fakeBot{}
	a := &Alerter{bot: bot, chatID: -100123}
	require.NoError(t, a.Alert(context.Background(), "New booking BK-1"))
	require.Len(t, bot.got, 1)
	m, ok := bot.got[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-100123), m.ChatID)
	assert.Equal(t, "New booking BK-1", m.Text)
}

func TestAlert_Errors(t *testing.T) {
	a := &Alerter{bot: &fakeBot{err: errors.New("chat not found")}, chatID: 1}
	assert.Error(t, a.Alert(context.Background(), "x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bot := &fakeBot{}
	assert.Error(t, (&Alerter{bot: bot}).Alert(ctx, "x"))
	assert.Empty(t, bot.got)
}

package middleware

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func newContext(chat *tele.Chat) tele.Context {
	return (*tele.Bot)(nil).NewContext(tele.Update{
		Message: &tele.Message{
			Sender: &tele.User{ID: 7},
			Chat:   chat,
			Text:   "hello",
		},
	})
}

func TestPrivateOnly(t *testing.T) {
	tests := []struct {
		name     string
		chat     *tele.Chat
		expected bool
	}{
		{name: "private chat", chat: &tele.Chat{ID: 7, Type: tele.ChatPrivate}, expected: true},
		{name: "group chat", chat: &tele.Chat{ID: -100, Type: tele.ChatGroup}, expected: false},
		{name: "supergroup", chat: &tele.Chat{ID: -200, Type: tele.ChatSuperGroup}, expected: false},
		{name: "channel", chat: &tele.Chat{ID: -300, Type: tele.ChatChannel}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := PrivateOnly(zap.NewNop())(func(c tele.Context) error {
				called = true
				return nil
			})

			err := handler(newContext(tt.chat))

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, called)
		})
	}
}

func TestRecover(t *testing.T) {
	handler := Recover(zap.NewNop())(func(c tele.Context) error {
		panic("boom")
	})

	err := handler(newContext(&tele.Chat{ID: 7, Type: tele.ChatPrivate}))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRecover_PassesErrorsThrough(t *testing.T) {
	want := errors.New("send failed")
	handler := Recover(zap.NewNop())(func(c tele.Context) error {
		return want
	})

	err := handler(newContext(&tele.Chat{ID: 7, Type: tele.ChatPrivate}))

	assert.ErrorIs(t, err, want)
}

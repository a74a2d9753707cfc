// Package messenger is the outbound chat transport.
package messenger

import (
	"context"

	"renthunt/internal/keyboard"
)

// Message is an outgoing text message
type Message struct {
	Text           string
	Keyboard       keyboard.Grid
	HTML           bool
	DisablePreview bool
}

// Messenger sends, edits and deletes chat messages
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, msg Message) (int, error)
	EditKeyboard(ctx context.Context, chatID int64, messageID int, grid keyboard.Grid) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	SendPhotos(ctx context.Context, chatID int64, urls []string) error
}

package messenger

import (
	"context"
	"fmt"
	"strconv"

	"renthunt/internal/keyboard"

	tele "gopkg.in/telebot.v3"
)

// Telebot implements Messenger on top of a telebot bot
type Telebot struct {
	bot *tele.Bot
}

// NewTelebot creates a telebot-backed messenger
func NewTelebot(bot *tele.Bot) *Telebot {
	return &Telebot{bot: bot}
}

// SendMessage sends a text message and returns its id
func (t *Telebot) SendMessage(ctx context.Context, chatID int64, msg Message) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	opts := &tele.SendOptions{
		ReplyMarkup:           Markup(msg.Keyboard),
		DisableWebPagePreview: msg.DisablePreview,
	}
	if msg.HTML {
		opts.ParseMode = tele.ModeHTML
	}

	sent, err := t.bot.Send(tele.ChatID(chatID), msg.Text, opts)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return sent.ID, nil
}

// EditKeyboard replaces the inline keyboard of a message
func (t *Telebot) EditKeyboard(ctx context.Context, chatID int64, messageID int, grid keyboard.Grid) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.bot.EditReplyMarkup(stored(chatID, messageID), Markup(grid)); err != nil {
		return fmt.Errorf("edit reply markup: %w", err)
	}
	return nil
}

// DeleteMessage removes a message from the chat
func (t *Telebot) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.bot.Delete(stored(chatID, messageID)); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// SendPhotos sends the photos as one media group
func (t *Telebot) SendPhotos(ctx context.Context, chatID int64, urls []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(urls) == 0 {
		return nil
	}

	album := make(tele.Album, 0, len(urls))
	for _, url := range urls {
		album = append(album, &tele.Photo{File: tele.FromURL(url)})
	}
	if _, err := t.bot.SendAlbum(tele.ChatID(chatID), album); err != nil {
		return fmt.Errorf("send media group: %w", err)
	}
	return nil
}

func stored(chatID int64, messageID int) tele.StoredMessage {
	return tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}
}

// Markup converts a grid into a telebot inline markup. Empty grids yield nil.
func Markup(grid keyboard.Grid) *tele.ReplyMarkup {
	if len(grid) == 0 {
		return nil
	}
	inline := make([][]tele.InlineButton, 0, len(grid))
	for _, row := range grid {
		r := make([]tele.InlineButton, 0, len(row))
		for _, btn := range row {
			r = append(r, tele.InlineButton{
				Text: btn.Text,
				Data: btn.Data,
				URL:  btn.URL,
			})
		}
		inline = append(inline, r)
	}
	return &tele.ReplyMarkup{InlineKeyboard: inline}
}

// GridFromMarkup converts the inline keyboard of an incoming message back into a grid
func GridFromMarkup(markup *tele.ReplyMarkup) keyboard.Grid {
	if markup == nil {
		return nil
	}
	grid := make(keyboard.Grid, 0, len(markup.InlineKeyboard))
	for _, row := range markup.InlineKeyboard {
		r := make([]keyboard.Button, 0, len(row))
		for _, btn := range row {
			r = append(r, keyboard.Button{
				Text: btn.Text,
				Data: btn.Data,
				URL:  btn.URL,
			})
		}
		grid = append(grid, r)
	}
	return grid
}

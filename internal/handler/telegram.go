package handler

import (
	"context"

	"renthunt/internal/keyboard"
	"renthunt/internal/messenger"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// RegisterHandlers routes telebot updates into the dialog
func (h *Handler) RegisterHandlers(bot *tele.Bot) {
	// Commands
	bot.Handle(CommandStart, h.command(CommandStart))
	bot.Handle(CommandEdit, h.command(CommandEdit))

	// Text messages
	bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	bot.Handle(tele.OnCallback, h.handleCallback)
}

// command normalizes "/cmd@botname" and "/cmd payload" forms
func (h *Handler) command(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ev, ok := messageEvent(c)
		if !ok {
			return nil
		}
		ev.Text = name
		h.OnMessage(context.Background(), ev)
		return nil
	}
}

func (h *Handler) handleText(c tele.Context) error {
	ev, ok := messageEvent(c)
	if !ok {
		return nil
	}
	h.OnMessage(context.Background(), ev)
	return nil
}

func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil || c.Sender() == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Always acknowledge so the button stops spinning
	if err := c.Respond(); err != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(err))
	}

	ev := CallbackEvent{
		UserID: c.Sender().ID,
		Data:   callback.Data,
	}
	if callback.Message != nil {
		ev.MessageID = callback.Message.ID
		ev.Keyboard = keyboardOf(callback.Message)
		if callback.Message.Chat != nil {
			ev.ChatID = callback.Message.Chat.ID
		}
	}
	if ev.ChatID == 0 {
		// Inline-mode callbacks carry no chat
		return nil
	}

	h.OnCallback(context.Background(), ev)
	return nil
}

func messageEvent(c tele.Context) (MessageEvent, bool) {
	msg := c.Message()
	if msg == nil || c.Sender() == nil || c.Chat() == nil {
		return MessageEvent{}, false
	}
	return MessageEvent{
		ChatID:    c.Chat().ID,
		UserID:    c.Sender().ID,
		MessageID: msg.ID,
		Text:      msg.Text,
	}, true
}

func keyboardOf(msg *tele.Message) keyboard.Grid {
	return messenger.GridFromMarkup(msg.ReplyMarkup)
}

package handler

import (
	"context"
	"fmt"
	"strings"

	"renthunt/internal/domain"
	"renthunt/internal/keyboard"
	"renthunt/internal/messenger"

	"go.uber.org/zap"
)

func (h *Handler) finishButton(user *domain.User) keyboard.Button {
	return keyboard.Button{Text: h.bundle.Messages(user.Locale).Next, Data: CallbackFinish}
}

// sendAreaKeyboard sends the area selection seeded with canonical area labels.
// Without a preselection the shortcut row is added.
func (h *Handler) sendAreaKeyboard(ctx context.Context, user *domain.User, canonical []string) {
	msgs := h.bundle.Messages(user.Locale)
	preselected := h.bundle.LocalizeAreas(user.Locale, canonical)

	grid, anySelected := keyboard.Create(h.bundle.Areas(user.Locale), ActionReadAreas, h.finishButton(user), preselected)
	if !anySelected {
		grid = append(grid, []keyboard.Button{
			{Text: msgs.AreaIsNotImportant, Data: CallbackAreaAny},
			{Text: msgs.AreaNeedConsult, Data: CallbackAreaConsult},
		})
	}

	if id, ok := h.send(ctx, user, messenger.Message{Text: msgs.ChooseAreas, Keyboard: grid}); ok {
		user.QueueForDelete(id)
	}
}

func (h *Handler) sendBedsKeyboard(ctx context.Context, user *domain.User, beds []int) {
	grid, _ := keyboard.Create(h.bundle.Beds(), ActionReadBeds, h.finishButton(user), h.bundle.BedLabels(beds))
	h.send(ctx, user, messenger.Message{Text: h.bundle.Messages(user.Locale).NumberOfBeds, Keyboard: grid})
}

// sendPricePrompt asks for a number and removes the prompt once it is answered
func (h *Handler) sendPricePrompt(ctx context.Context, user *domain.User, text string) {
	if id, ok := h.send(ctx, user, messenger.Message{Text: text}); ok {
		user.PendingDeleteID = &id
	}
}

// sendPreview clears queued messages and shows the search summary
func (h *Handler) sendPreview(ctx context.Context, user *domain.User, req *domain.Request) error {
	for _, id := range user.MessageForDelete {
		h.delete(ctx, user, id)
	}
	user.MessageForDelete = nil

	msgs := h.bundle.Messages(user.Locale)
	details, err := h.bundle.Details(user.Locale, req)
	if err != nil {
		return fmt.Errorf("render preview: %w", err)
	}

	h.send(ctx, user, messenger.Message{Text: msgs.Finish, HTML: true})
	h.send(ctx, user, messenger.Message{
		Text:     details,
		Keyboard: keyboard.Grid{{{Text: msgs.Agree, Data: CallbackStartSearch}}},
	})
	return nil
}

// send delivers a message and logs a failure. It reports the new message id.
func (h *Handler) send(ctx context.Context, user *domain.User, msg messenger.Message) (int, bool) {
	id, err := h.messenger.SendMessage(ctx, user.ChatID, msg)
	if err != nil {
		h.logger.Warn("Failed to send message",
			zap.Int64("user_id", user.UserID),
			zap.Int64("chat_id", user.ChatID),
			zap.Error(err),
		)
		return 0, false
	}
	return id, true
}

func (h *Handler) delete(ctx context.Context, user *domain.User, messageID int) {
	if messageID == 0 {
		return
	}
	if err := h.messenger.DeleteMessage(ctx, user.ChatID, messageID); err != nil {
		h.logger.Debug("Failed to delete message",
			zap.Int64("chat_id", user.ChatID),
			zap.Int("message_id", messageID),
			zap.Error(err),
		)
	}
}

// editKeyboard replaces a keyboard in place. An unchanged keyboard is not an error.
func (h *Handler) editKeyboard(ctx context.Context, user *domain.User, messageID int, grid keyboard.Grid) {
	err := h.messenger.EditKeyboard(ctx, user.ChatID, messageID, grid)
	if err == nil {
		return
	}
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Keyboard already up to date",
			zap.Int64("chat_id", user.ChatID),
			zap.Int("message_id", messageID),
		)
		return
	}
	h.logger.Warn("Failed to edit keyboard",
		zap.Int64("user_id", user.UserID),
		zap.Int64("chat_id", user.ChatID),
		zap.Error(err),
	)
}

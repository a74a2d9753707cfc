package handler

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"renthunt/internal/domain"
	"renthunt/internal/keyboard"
	"renthunt/internal/messenger"
	"renthunt/internal/service"

	"go.uber.org/zap"
)

var localeButtons = []keyboard.Button{
	{Text: "🇷🇺 Русский", Data: CallbackLocalePrefix + "ru"},
	{Text: "🇬🇧 English", Data: CallbackLocalePrefix + "en"},
}

// handleStart restarts the dialog and offers the language choice
func (h *Handler) handleStart(ctx context.Context, user *domain.User) error {
	h.logger.Info("User started bot",
		zap.Int64("user_id", user.UserID),
		zap.Int64("chat_id", user.ChatID),
	)
	return h.enterEmailStep(ctx, user, true)
}

// enterEmailStep resets the search and asks for the subscription email
func (h *Handler) enterEmailStep(ctx context.Context, user *domain.User, withLocales bool) error {
	if err := advance(ctx, user, evStart); err != nil {
		return err
	}
	user.RequestID = nil
	user.PendingDeleteID = nil

	msg := messenger.Message{Text: h.bundle.Messages(user.Locale).Start}
	if withLocales {
		msg.Keyboard = keyboard.Grid{localeButtons}
	}
	h.send(ctx, user, msg)
	return nil
}

// handleEmail checks the subscription behind an email
func (h *Handler) handleEmail(ctx context.Context, user *domain.User, text string) error {
	msgs := h.bundle.Messages(user.Locale)

	email, ok := normalizeEmail(text)
	if !ok {
		h.send(ctx, user, messenger.Message{Text: msgs.InvalidEmail})
		return nil
	}
	user.Email = email

	h.send(ctx, user, messenger.Message{Text: msgs.Checking})

	tier, err := h.access.Resolve(ctx, email)
	if err != nil {
		h.send(ctx, user, messenger.Message{Text: msgs.Error})
		return fmt.Errorf("check email: %w", err)
	}

	h.logger.Info("Email checked",
		zap.Int64("user_id", user.UserID),
		zap.Stringer("tier", tier),
	)

	if !tier.Active() {
		if err := advance(ctx, user, evDeny); err != nil {
			return err
		}
		h.send(ctx, user, service.RevokedNotice(h.bundle, user.Locale, tier, h.links))
		return nil
	}

	if err := advance(ctx, user, evGrant); err != nil {
		return err
	}
	user.IsTrial = tier == domain.TierTrial

	var seed []string
	prior, err := h.requests.FindLatestByUser(ctx, user.UserID)
	if err != nil {
		h.logger.Warn("Failed to load previous request", zap.Int64("user_id", user.UserID), zap.Error(err))
	} else if prior != nil {
		seed = prior.Areas
	}

	h.sendAreaKeyboard(ctx, user, seed)
	return nil
}

// normalizeEmail case-folds the input and accepts a bare address only
func normalizeEmail(text string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(text))
	if email == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	return email, true
}

// handlePrice reads the lower or the upper price bound
func (h *Handler) handlePrice(ctx context.Context, user *domain.User, messageID int, text string) error {
	msgs := h.bundle.Messages(user.Locale)
	readsMin := user.NextAction.ReadsMinPrice()

	prompt := msgs.Price
	if readsMin {
		prompt = msgs.MinPrice
	}

	value, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || value < 0 {
		h.repromptPrice(ctx, user, prompt)
		return nil
	}

	req, err := h.currentRequest(ctx, user)
	if err != nil {
		return err
	}

	if readsMin {
		if user.NextAction.IsEdit() && req.Price != nil && value > *req.Price {
			h.repromptPrice(ctx, user, msgs.PriceBelowMin)
			return nil
		}
		req.MinPrice = &value
	} else {
		if req.MinPrice != nil && value < *req.MinPrice {
			h.repromptPrice(ctx, user, msgs.PriceBelowMin)
			return nil
		}
		req.Price = &value
	}

	if err := h.requests.UpdateFilters(ctx, req); err != nil {
		return fmt.Errorf("save price: %w", err)
	}

	if id, ok := user.TakePendingDelete(); ok {
		h.delete(ctx, user, id)
	}
	h.delete(ctx, user, messageID)

	edit := user.NextAction.IsEdit()
	event := evPriceDone
	if readsMin {
		event = evMinPriceDone
	}
	if err := advance(ctx, user, event); err != nil {
		return err
	}

	if readsMin && !edit {
		h.sendPricePrompt(ctx, user, msgs.Price)
		return nil
	}
	return h.sendPreview(ctx, user, req)
}

// repromptPrice replaces the pending price prompt so only the latest one stays in the chat
func (h *Handler) repromptPrice(ctx context.Context, user *domain.User, text string) {
	if id, ok := user.TakePendingDelete(); ok {
		h.delete(ctx, user, id)
	}
	h.sendPricePrompt(ctx, user, text)
}

// handleEditMenu lists the edit shortcuts
func (h *Handler) handleEditMenu(ctx context.Context, user *domain.User) error {
	msgs := h.bundle.Messages(user.Locale)
	h.send(ctx, user, messenger.Message{
		Text: msgs.ChoseEditOption,
		Keyboard: keyboard.Grid{
			{{Text: msgs.EditAreas, Data: CallbackEditAreas}},
			{{Text: msgs.EditBeds, Data: CallbackEditBeds}},
			{{Text: msgs.EditPrice, Data: CallbackEditPrice}},
		},
	})
	return nil
}

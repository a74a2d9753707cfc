package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"renthunt/internal/domain"
	"renthunt/internal/keyboard"
	"renthunt/internal/messenger"
	"renthunt/internal/service"

	"go.uber.org/zap"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleLocale stores the chosen language and asks for the email again
func (h *Handler) handleLocale(ctx context.Context, user *domain.User, messageID int, loc string) error {
	if !h.bundle.Supported(loc) {
		h.logger.Warn("Unsupported locale", zap.String("locale", loc))
		return nil
	}
	user.Locale = loc
	h.delete(ctx, user, messageID)
	return h.enterEmailStep(ctx, user, false)
}

// handleAreasCallback toggles an area or finishes the area step
func (h *Handler) handleAreasCallback(ctx context.Context, user *domain.User, ev CallbackEvent, data string) error {
	options := h.bundle.Areas(user.Locale)
	msgs := h.bundle.Messages(user.Locale)

	switch data {
	case CallbackFinish:
		return h.finishAreas(ctx, user, ev.MessageID, keyboard.GetSelected(ev.Keyboard))
	case CallbackAreaAny:
		return h.finishAreas(ctx, user, ev.MessageID, options)
	case CallbackAreaConsult:
		h.send(ctx, user, messenger.Message{
			Text:     msgs.Consult,
			Keyboard: keyboard.Grid{{{Text: msgs.WriteToSupport, URL: h.links.Support}}},
		})
		return nil
	}

	if _, ok := keyboard.ParsePayload(ActionReadAreas, data); !ok {
		return nil
	}
	grid, _ := keyboard.Process(ev.Keyboard, data, options, h.finishButton(user))
	h.editKeyboard(ctx, user, ev.MessageID, grid)
	return nil
}

func (h *Handler) finishAreas(ctx context.Context, user *domain.User, messageID int, selected []string) error {
	if len(selected) == 0 {
		h.send(ctx, user, messenger.Message{Text: h.bundle.Messages(user.Locale).SelectAtLeastOne})
		return nil
	}

	edit := user.NextAction.IsEdit()
	req, err := h.currentRequest(ctx, user)
	switch {
	case errors.Is(err, domain.ErrRequestNotFound) && !edit:
		req, err = h.requests.Create(ctx, user.UserID)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		user.RequestID = &req.ID
	case err != nil:
		return err
	}

	req.Areas = h.bundle.CanonicalAreas(user.Locale, selected)
	if err := h.requests.UpdateFilters(ctx, req); err != nil {
		return fmt.Errorf("save areas: %w", err)
	}

	h.delete(ctx, user, messageID)
	user.Unqueue(messageID)

	if err := advance(ctx, user, evAreasDone); err != nil {
		return err
	}
	if edit {
		return h.sendPreview(ctx, user, req)
	}
	h.sendBedsKeyboard(ctx, user, req.Beds)
	return nil
}

// handleBedsCallback toggles a bed option or finishes the bed step
func (h *Handler) handleBedsCallback(ctx context.Context, user *domain.User, ev CallbackEvent, data string) error {
	if data == CallbackFinish {
		return h.finishBeds(ctx, user, ev.MessageID, keyboard.GetSelected(ev.Keyboard))
	}
	if _, ok := keyboard.ParsePayload(ActionReadBeds, data); !ok {
		return nil
	}
	grid, _ := keyboard.Process(ev.Keyboard, data, h.bundle.Beds(), h.finishButton(user))
	h.editKeyboard(ctx, user, ev.MessageID, grid)
	return nil
}

func (h *Handler) finishBeds(ctx context.Context, user *domain.User, messageID int, selected []string) error {
	if len(selected) == 0 {
		h.send(ctx, user, messenger.Message{Text: h.bundle.Messages(user.Locale).SelectAtLeastOne})
		return nil
	}

	req, err := h.currentRequest(ctx, user)
	if err != nil {
		return err
	}
	req.Beds = h.bundle.BedNumbers(selected)
	if err := h.requests.UpdateFilters(ctx, req); err != nil {
		return fmt.Errorf("save beds: %w", err)
	}

	h.delete(ctx, user, messageID)

	edit := user.NextAction.IsEdit()
	if err := advance(ctx, user, evBedsDone); err != nil {
		return err
	}
	if edit {
		return h.sendPreview(ctx, user, req)
	}
	h.sendPricePrompt(ctx, user, h.bundle.Messages(user.Locale).MinPrice)
	return nil
}

// handleEditShortcut re-checks access and re-enters one filter step
func (h *Handler) handleEditShortcut(ctx context.Context, user *domain.User, data string) error {
	req, err := h.currentRequest(ctx, user)
	if errors.Is(err, domain.ErrRequestNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !req.IsFilled() {
		h.logger.Debug("Edit requested before the search is filled", zap.Int64("user_id", user.UserID))
		return nil
	}

	msgs := h.bundle.Messages(user.Locale)
	h.send(ctx, user, messenger.Message{Text: msgs.Checking})

	tier, err := h.access.Resolve(ctx, user.Email)
	if err != nil {
		h.send(ctx, user, messenger.Message{Text: msgs.Error})
		return fmt.Errorf("recheck access: %w", err)
	}
	if !tier.Active() {
		if err := advance(ctx, user, evDeny); err != nil {
			return err
		}
		h.send(ctx, user, service.RevokedNotice(h.bundle, user.Locale, tier, h.links))
		return nil
	}
	user.IsTrial = tier == domain.TierTrial

	if err := advance(ctx, user, data); err != nil {
		return err
	}

	switch data {
	case CallbackEditAreas:
		h.sendAreaKeyboard(ctx, user, req.Areas)
	case CallbackEditBeds:
		h.sendBedsKeyboard(ctx, user, req.Beds)
	case CallbackEditMinPrice:
		h.sendPricePrompt(ctx, user, msgs.MinPrice)
	case CallbackEditPrice:
		h.sendPricePrompt(ctx, user, msgs.Price)
	}
	return nil
}

// handleSearch runs the search once and offers to continue
func (h *Handler) handleSearch(ctx context.Context, user *domain.User, next bool) error {
	if err := advance(ctx, user, evSearch); err != nil {
		return err
	}

	msgs := h.bundle.Messages(user.Locale)
	h.send(ctx, user, messenger.Message{Text: msgs.Checking})

	req, err := h.currentRequest(ctx, user)
	if err != nil {
		return err
	}

	mode := service.ModeFresh
	if next {
		mode = service.ModeContinuation
	}

	delivered, err := h.dispatcher.Dispatch(ctx, req, user, mode)
	if err != nil {
		h.logger.Error("Search failed",
			zap.Int64("user_id", user.UserID),
			zap.Int64("request_id", req.ID),
			zap.Error(err),
		)
		if len(delivered) == 0 {
			h.send(ctx, user, messenger.Message{Text: msgs.Error})
			return nil
		}
	}

	if len(delivered) == 0 {
		h.send(ctx, user, messenger.Message{Text: msgs.NotFoundOptions})
		return nil
	}

	h.send(ctx, user, messenger.Message{
		Text:     msgs.MaybeYouCanFindSomethingElse,
		Keyboard: keyboard.Grid{{{Text: msgs.ShowTheFollowingAds, Data: CallbackStartSearchNext}}},
	})
	return nil
}

// currentRequest loads the request the user is working on
func (h *Handler) currentRequest(ctx context.Context, user *domain.User) (*domain.Request, error) {
	if user.RequestID == nil {
		return nil, domain.ErrRequestNotFound
	}
	req, err := h.requests.Find(ctx, *user.RequestID)
	if err != nil {
		return nil, fmt.Errorf("load request %d: %w", *user.RequestID, err)
	}
	return req, nil
}

package handler

import (
	"context"
	"strings"

	"renthunt/internal/domain"
	"renthunt/internal/keyboard"
	"renthunt/internal/locale"
	"renthunt/internal/lock"
	"renthunt/internal/messenger"
	"renthunt/internal/repository"
	"renthunt/internal/service"

	"go.uber.org/zap"
)

// Text commands
const (
	CommandStart = "/start"
	CommandEdit  = "/edit"
)

// Callback payloads
const (
	ActionReadAreas         = "read-areas"
	ActionReadBeds          = "read-beds"
	CallbackFinish          = "finish"
	CallbackAreaAny         = "area-is-not-important"
	CallbackAreaConsult     = "area-need-consult"
	CallbackStartSearch     = "start-search"
	CallbackStartSearchNext = "start-search-next"
	CallbackEditAreas       = "edit-areas"
	CallbackEditBeds        = "edit-beds"
	CallbackEditMinPrice    = "edit-min-price"
	CallbackEditPrice       = "edit-price"
	CallbackLocalePrefix    = "choose-locale:"
)

// MessageEvent is an incoming text message
type MessageEvent struct {
	ChatID    int64
	UserID    int64
	MessageID int
	Text      string
}

// CallbackEvent is an inline button press. Keyboard is the markup of the
// message the button belongs to.
type CallbackEvent struct {
	ChatID    int64
	UserID    int64
	MessageID int
	Data      string
	Keyboard  keyboard.Grid
}

// Handler drives the search dialog
type Handler struct {
	users      repository.UserRepository
	requests   repository.RequestRepository
	access     service.TierResolver
	dispatcher service.Dispatcher
	messenger  messenger.Messenger
	bundle     *locale.Bundle
	locks      *lock.Keyed
	links      service.Links
	logger     *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	users repository.UserRepository,
	requests repository.RequestRepository,
	access service.TierResolver,
	dispatcher service.Dispatcher,
	msgr messenger.Messenger,
	bundle *locale.Bundle,
	locks *lock.Keyed,
	links service.Links,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:      users,
		requests:   requests,
		access:     access,
		dispatcher: dispatcher,
		messenger:  msgr,
		bundle:     bundle,
		locks:      locks,
		links:      links,
		logger:     logger,
	}
}

// OnMessage handles a text message. Events of one user are processed one at a time.
func (h *Handler) OnMessage(ctx context.Context, ev MessageEvent) {
	unlock := h.locks.Lock(lock.Key{UserID: ev.UserID, ChatID: ev.ChatID})
	defer unlock()

	log := h.logger.With(zap.Int64("user_id", ev.UserID), zap.Int64("chat_id", ev.ChatID))

	user, err := h.users.FindOrCreate(ctx, ev.UserID, ev.ChatID, h.bundle.Default())
	if err != nil {
		log.Error("Failed to load user", zap.Error(err))
		return
	}

	text := strings.TrimSpace(ev.Text)
	switch {
	case text == CommandStart:
		err = h.handleStart(ctx, user)
	case user.NextAction == domain.StateReadEmail:
		err = h.handleEmail(ctx, user, text)
	case user.NextAction.ReadsPrice():
		err = h.handlePrice(ctx, user, ev.MessageID, text)
	case text == CommandEdit:
		err = h.handleEditMenu(ctx, user)
	default:
		log.Debug("Ignoring message", zap.String("state", string(user.NextAction)))
		return
	}

	h.finish(ctx, log, user, err)
}

// OnCallback handles an inline button press
func (h *Handler) OnCallback(ctx context.Context, ev CallbackEvent) {
	unlock := h.locks.Lock(lock.Key{UserID: ev.UserID, ChatID: ev.ChatID})
	defer unlock()

	data := cleanCallbackData(ev.Data)
	log := h.logger.With(
		zap.Int64("user_id", ev.UserID),
		zap.Int64("chat_id", ev.ChatID),
		zap.String("data", data),
	)

	user, err := h.users.FindOrCreate(ctx, ev.UserID, ev.ChatID, h.bundle.Default())
	if err != nil {
		log.Error("Failed to load user", zap.Error(err))
		return
	}

	switch {
	case strings.HasPrefix(data, CallbackLocalePrefix):
		err = h.handleLocale(ctx, user, ev.MessageID, strings.TrimPrefix(data, CallbackLocalePrefix))
	case data == service.CallbackStart:
		err = h.enterEmailStep(ctx, user, false)
	case isEditShortcut(data):
		err = h.handleEditShortcut(ctx, user, data)
	case user.NextAction.ReadsAreas():
		err = h.handleAreasCallback(ctx, user, ev, data)
	case user.NextAction.ReadsBeds():
		err = h.handleBedsCallback(ctx, user, ev, data)
	case user.NextAction == domain.StateConfirm && strings.HasPrefix(data, CallbackStartSearch):
		err = h.handleSearch(ctx, user, data == CallbackStartSearchNext)
	default:
		log.Debug("Ignoring callback", zap.String("state", string(user.NextAction)))
		return
	}

	h.finish(ctx, log, user, err)
}

// finish persists the user after a successful step. A failed step leaves the
// stored state untouched.
func (h *Handler) finish(ctx context.Context, log *zap.Logger, user *domain.User, err error) {
	if err != nil {
		log.Error("Dialog step failed", zap.String("state", string(user.NextAction)), zap.Error(err))
		return
	}
	if err := h.users.Save(ctx, user); err != nil {
		log.Error("Failed to save user", zap.Error(err))
	}
}

func isEditShortcut(data string) bool {
	switch data {
	case CallbackEditAreas, CallbackEditBeds, CallbackEditMinPrice, CallbackEditPrice:
		return true
	}
	return false
}

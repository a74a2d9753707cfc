package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"renthunt/internal/domain"
	"renthunt/internal/keyboard"
	"renthunt/internal/locale"
	"renthunt/internal/messenger"
	"renthunt/internal/repository"

	"go.uber.org/zap"
)

// MaxPhotos is the number of photos attached to one listing
const MaxPhotos = 3

// ErrRequestNotFilled is returned when a search is started before every filter is set
var ErrRequestNotFilled = errors.New("request is not filled")

// Mode selects which matches a dispatch may deliver
type Mode int

const (
	// ModeFresh delivers from the full match set
	ModeFresh Mode = iota
	// ModeContinuation skips listings already delivered for the request
	ModeContinuation
)

func (m Mode) String() string {
	if m == ModeContinuation {
		return "continuation"
	}
	return "fresh"
}

// DispatchConfig holds dispatch settings
type DispatchConfig struct {
	CatalogURL  string
	SendTimeout time.Duration
}

// DispatchService pushes matching listings to a user
type DispatchService struct {
	directory Directory
	requests  repository.RequestRepository
	messenger messenger.Messenger
	bundle    *locale.Bundle
	cfg       DispatchConfig
	logger    *zap.Logger
}

// NewDispatchService creates a new dispatch service
func NewDispatchService(
	directory Directory,
	requests repository.RequestRepository,
	msgr messenger.Messenger,
	bundle *locale.Bundle,
	cfg DispatchConfig,
	logger *zap.Logger,
) *DispatchService {
	return &DispatchService{
		directory: directory,
		requests:  requests,
		messenger: msgr,
		bundle:    bundle,
		cfg:       cfg,
		logger:    logger,
	}
}

// Dispatch sends every matching listing not yet in the working set and
// returns the ids that were delivered. Failed listings are skipped.
func (s *DispatchService) Dispatch(ctx context.Context, req *domain.Request, user *domain.User, mode Mode) ([]int64, error) {
	if !req.IsFilled() {
		return nil, ErrRequestNotFilled
	}

	var seen []int64
	if mode == ModeContinuation {
		seen = append(seen, req.Properties...)
	}
	known := make(map[int64]struct{}, len(seen))
	for _, id := range seen {
		known[id] = struct{}{}
	}

	listings, err := s.directory.FindMatchingListings(ctx, domain.ListingQuery{
		Areas:      req.Areas,
		Beds:       req.Beds,
		MinPrice:   *req.MinPrice,
		MaxPrice:   *req.Price,
		ExcludeIDs: seen,
	})
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}

	log := s.logger.With(
		zap.Int64("user_id", user.UserID),
		zap.Int64("chat_id", user.ChatID),
		zap.Int64("request_id", req.ID),
		zap.Stringer("mode", mode),
	)

	var delivered []int64
	for _, l := range listings {
		if _, ok := known[l.ID]; ok {
			continue
		}
		if !validLink(l.ChatLink) {
			log.Debug("Skipping listing with invalid link",
				zap.Int64("listing_id", l.ID),
				zap.String("link", l.ChatLink),
			)
			continue
		}
		if err := s.deliver(ctx, log, user, l); err != nil {
			log.Warn("Failed to deliver listing",
				zap.Int64("listing_id", l.ID),
				zap.Error(err),
			)
			continue
		}
		delivered = append(delivered, l.ID)
		seen = append(seen, l.ID)
		known[l.ID] = struct{}{}
	}

	if len(delivered) == 0 {
		return nil, nil
	}

	if err := s.requests.SetProperties(ctx, req.ID, seen); err != nil {
		return delivered, fmt.Errorf("persist delivered listings: %w", err)
	}
	req.Properties = seen

	log.Info("Listings delivered", zap.Int("count", len(delivered)))
	return delivered, nil
}

// deliver sends the listing text and then its photos. Once the text is out the
// listing counts as delivered; a failed album is only logged.
func (s *DispatchService) deliver(ctx context.Context, log *zap.Logger, user *domain.User, l domain.Listing) error {
	if s.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SendTimeout)
		defer cancel()
	}

	text, err := s.bundle.Listing(user.Locale, l, s.cfg.CatalogURL)
	if err != nil {
		return err
	}

	msg := messenger.Message{Text: text, HTML: true}
	if !user.IsTrial {
		msgs := s.bundle.Messages(user.Locale)
		msg.Keyboard = keyboard.Grid{{{Text: msgs.Write, URL: l.ChatLink}}}
	}
	if _, err := s.messenger.SendMessage(ctx, user.ChatID, msg); err != nil {
		return err
	}

	photos := l.Photos
	if len(photos) > MaxPhotos {
		photos = photos[:MaxPhotos]
	}
	if len(photos) > 0 {
		if err := s.messenger.SendPhotos(ctx, user.ChatID, photos); err != nil {
			log.Warn("Failed to send listing photos",
				zap.Int64("listing_id", l.ID),
				zap.Int("photos", len(photos)),
				zap.Error(err),
			)
		}
	}
	return nil
}

func validLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

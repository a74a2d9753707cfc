package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"renthunt/internal/domain"
	"renthunt/internal/locale"
	"renthunt/internal/lock"
	"renthunt/internal/messenger"
	"renthunt/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TierResolver classifies an email into an access tier
type TierResolver interface {
	Resolve(ctx context.Context, email string) (domain.Tier, error)
}

// Dispatcher delivers matching listings for a request
type Dispatcher interface {
	Dispatch(ctx context.Context, req *domain.Request, user *domain.User, mode Mode) ([]int64, error)
}

// SweepStats summarizes one sweep
type SweepStats struct {
	Users     int
	Removed   int64
	Notified  int64
	Delivered int64
}

// SweepService re-checks every user with a search and pushes new listings
type SweepService struct {
	users       repository.UserRepository
	requests    repository.RequestRepository
	access      TierResolver
	dispatcher  Dispatcher
	messenger   messenger.Messenger
	bundle      *locale.Bundle
	locks       *lock.Keyed
	links       Links
	concurrency int
	logger      *zap.Logger
}

// NewSweepService creates a new sweep service. locks must be shared with the
// dialog handler so a sweep never overlaps an inbound event of the same user.
func NewSweepService(
	users repository.UserRepository,
	requests repository.RequestRepository,
	access TierResolver,
	dispatcher Dispatcher,
	msgr messenger.Messenger,
	bundle *locale.Bundle,
	locks *lock.Keyed,
	links Links,
	concurrency int,
	logger *zap.Logger,
) *SweepService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SweepService{
		users:       users,
		requests:    requests,
		access:      access,
		dispatcher:  dispatcher,
		messenger:   msgr,
		bundle:      bundle,
		locks:       locks,
		links:       links,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run processes every user that has a request. A failing user is logged and
// does not stop the others.
func (s *SweepService) Run(ctx context.Context) (SweepStats, error) {
	users, err := s.users.ListWithRequest(ctx)
	if err != nil {
		return SweepStats{}, fmt.Errorf("list users: %w", err)
	}

	var removed, notified, delivered atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, u := range users {
		key := lock.Key{UserID: u.UserID, ChatID: u.ChatID}
		g.Go(func() error {
			res := s.sweepUser(ctx, key)
			if res.removed {
				removed.Add(1)
			}
			if res.delivered > 0 {
				notified.Add(1)
				delivered.Add(int64(res.delivered))
			}
			return nil
		})
	}
	_ = g.Wait()

	stats := SweepStats{
		Users:     len(users),
		Removed:   removed.Load(),
		Notified:  notified.Load(),
		Delivered: delivered.Load(),
	}
	s.logger.Info("Sweep finished",
		zap.Int("users", stats.Users),
		zap.Int64("removed", stats.Removed),
		zap.Int64("notified", stats.Notified),
		zap.Int64("delivered", stats.Delivered),
	)
	return stats, ctx.Err()
}

type sweepResult struct {
	removed   bool
	delivered int
}

func (s *SweepService) sweepUser(ctx context.Context, key lock.Key) sweepResult {
	if ctx.Err() != nil {
		return sweepResult{}
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	log := s.logger.With(zap.Int64("user_id", key.UserID), zap.Int64("chat_id", key.ChatID))

	// The user may have changed or left since the list was read
	user, err := s.users.Find(ctx, key.UserID, key.ChatID)
	if err != nil {
		log.Error("Failed to load user", zap.Error(err))
		return sweepResult{}
	}
	if user == nil || user.RequestID == nil {
		return sweepResult{}
	}

	tier, err := s.access.Resolve(ctx, user.Email)
	if err != nil {
		log.Error("Failed to resolve tier", zap.Error(err))
		return sweepResult{}
	}

	if !tier.Active() {
		notice := RevokedNotice(s.bundle, user.Locale, tier, s.links)
		if _, err := s.messenger.SendMessage(ctx, user.ChatID, notice); err != nil {
			log.Warn("Failed to send access notice", zap.Error(err))
		}
		if err := s.users.Delete(ctx, user.UserID, user.ChatID); err != nil {
			log.Error("Failed to remove user", zap.Error(err))
			return sweepResult{}
		}
		log.Info("User removed", zap.Stringer("tier", tier))
		return sweepResult{removed: true}
	}

	isTrial := tier == domain.TierTrial
	if user.IsTrial != isTrial {
		user.IsTrial = isTrial
		if err := s.users.Save(ctx, user); err != nil {
			log.Warn("Failed to save trial flag", zap.Error(err))
		}
	}

	req, err := s.requests.Find(ctx, *user.RequestID)
	if errors.Is(err, domain.ErrRequestNotFound) {
		return sweepResult{}
	}
	if err != nil {
		log.Error("Failed to load request", zap.Error(err))
		return sweepResult{}
	}
	if !req.IsFilled() {
		return sweepResult{}
	}

	ids, err := s.dispatcher.Dispatch(ctx, req, user, ModeContinuation)
	if err != nil {
		log.Error("Dispatch failed", zap.Error(err))
	}
	if len(ids) == 0 {
		return sweepResult{}
	}

	msg := messenger.Message{Text: s.bundle.Messages(user.Locale).FoundOptions}
	if _, err := s.messenger.SendMessage(ctx, user.ChatID, msg); err != nil {
		log.Warn("Failed to send found notice", zap.Error(err))
	}
	return sweepResult{delivered: len(ids)}
}

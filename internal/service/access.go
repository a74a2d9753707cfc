package service

import (
	"context"
	"fmt"

	"renthunt/internal/domain"
)

// Directory is the external customer and listing lookup
type Directory interface {
	// FindIdentity returns nil when no customer has the email
	FindIdentity(ctx context.Context, email string) (*domain.Identity, error)
	FindMatchingListings(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error)
}

// AccessService classifies customers into access tiers
type AccessService struct {
	directory Directory
}

// NewAccessService creates a new access service
func NewAccessService(directory Directory) *AccessService {
	return &AccessService{directory: directory}
}

// Resolve looks the email up and returns its tier. It has no side effects.
func (s *AccessService) Resolve(ctx context.Context, email string) (domain.Tier, error) {
	identity, err := s.directory.FindIdentity(ctx, email)
	if err != nil {
		return domain.TierNotFound, fmt.Errorf("resolve tier: %w", err)
	}
	return TierOf(identity), nil
}

// TierOf classifies a directory record. The trial flag wins over validity and plan.
func TierOf(identity *domain.Identity) domain.Tier {
	switch {
	case identity == nil:
		return domain.TierNotFound
	case identity.Trial:
		return domain.TierTrial
	case identity.AccessValid && identity.Plan == domain.PlanVIP:
		return domain.TierVip
	default:
		return domain.TierExpired
	}
}

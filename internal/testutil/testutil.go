package testutil

import (
	"testing"

	"renthunt/internal/domain"
	"renthunt/internal/locale"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestBundle loads the embedded locales with ru as fallback
func NewTestBundle(t *testing.T) *locale.Bundle {
	t.Helper()
	bundle, err := locale.Load("ru")
	require.NoError(t, err)
	return bundle
}

// NewTestUser creates a user in the given dialog state
func NewTestUser(userID int64, state domain.DialogState) *domain.User {
	return &domain.User{
		ID:         userID,
		UserID:     userID,
		ChatID:     userID * 10,
		Locale:     "ru",
		NextAction: state,
		Email:      "user@example.com",
	}
}

// NewFilledRequest creates a request with every filter set
func NewFilledRequest(id int64, properties ...int64) *domain.Request {
	minPrice, price := 100, 1000
	return &domain.Request{
		ID:         id,
		Areas:      []string{"Чангу"},
		Beds:       []int{1, 2},
		MinPrice:   &minPrice,
		Price:      &price,
		Properties: properties,
	}
}

// NewTestListing creates a listing with a valid contact link
func NewTestListing(id int64, photos ...string) domain.Listing {
	return domain.Listing{
		ID:       id,
		AdID:     "ad",
		Title:    "Villa",
		Area:     "Чангу",
		Beds:     2,
		Price:    500,
		ChatLink: "https://t.me/owner",
		Photos:   photos,
	}
}

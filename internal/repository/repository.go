package repository

import (
	"context"

	"renthunt/internal/domain"
)

// UserRepository defines user data operations
type UserRepository interface {
	// FindOrCreate returns the user of a chat, creating it with the given locale
	FindOrCreate(ctx context.Context, userID, chatID int64, locale string) (*domain.User, error)
	// Find returns nil when the user does not exist
	Find(ctx context.Context, userID, chatID int64) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, userID, chatID int64) error
	ListWithRequest(ctx context.Context) ([]domain.User, error)
}

// RequestRepository defines search request data operations
type RequestRepository interface {
	Create(ctx context.Context, userID int64) (*domain.Request, error)
	Find(ctx context.Context, id int64) (*domain.Request, error)
	// FindLatestByUser returns nil when the user has no request
	FindLatestByUser(ctx context.Context, userID int64) (*domain.Request, error)
	UpdateFilters(ctx context.Context, request *domain.Request) error
	SetProperties(ctx context.Context, id int64, properties []int64) error
}

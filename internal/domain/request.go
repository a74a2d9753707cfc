package domain

import (
	"errors"
	"time"
)

// ErrRequestNotFound is returned when a request does not exist or was soft-deleted
var ErrRequestNotFound = errors.New("request not found")

// Request represents one search session of a user. UserID is the Telegram
// user id.
type Request struct {
	ID         int64
	GUID       string
	UserID     int64
	City       string
	Categories []string
	Areas      []string
	Beds       []int
	MinPrice   *int
	Price      *int
	Properties []int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsFilled reports whether every search filter was collected
func (r *Request) IsFilled() bool {
	return r != nil &&
		r.Areas != nil &&
		r.Beds != nil &&
		r.MinPrice != nil &&
		r.Price != nil
}

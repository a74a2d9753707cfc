package testutil

import (
	"context"
	"sync"

	"renthunt/internal/domain"
	"renthunt/internal/keyboard"
	"renthunt/internal/messenger"
)

// Sent is a message recorded by FakeMessenger
type Sent struct {
	ID      int
	ChatID  int64
	Message messenger.Message
}

// Edit is a keyboard edit recorded by FakeMessenger
type Edit struct {
	ChatID    int64
	MessageID int
	Grid      keyboard.Grid
}

// Deleted is a deletion recorded by FakeMessenger
type Deleted struct {
	ChatID    int64
	MessageID int
}

// Album is a media group recorded by FakeMessenger
type Album struct {
	ChatID int64
	URLs   []string
}

// FakeMessenger records every outbound call. The hooks inject failures.
type FakeMessenger struct {
	mu      sync.Mutex
	nextID  int
	Sent    []Sent
	Edits   []Edit
	Deleted []Deleted
	Albums  []Album

	SendErr   func(chatID int64, msg messenger.Message) error
	PhotosErr func(chatID int64, urls []string) error
	DeleteErr error
}

// NewFakeMessenger creates a messenger whose message ids start at 100
func NewFakeMessenger() *FakeMessenger {
	return &FakeMessenger{nextID: 100}
}

func (f *FakeMessenger) SendMessage(_ context.Context, chatID int64, msg messenger.Message) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		if err := f.SendErr(chatID, msg); err != nil {
			return 0, err
		}
	}
	f.nextID++
	f.Sent = append(f.Sent, Sent{ID: f.nextID, ChatID: chatID, Message: msg})
	return f.nextID, nil
}

func (f *FakeMessenger) EditKeyboard(_ context.Context, chatID int64, messageID int, grid keyboard.Grid) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Edits = append(f.Edits, Edit{ChatID: chatID, MessageID: messageID, Grid: grid})
	return nil
}

func (f *FakeMessenger) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deleted = append(f.Deleted, Deleted{ChatID: chatID, MessageID: messageID})
	return nil
}

func (f *FakeMessenger) SendPhotos(_ context.Context, chatID int64, urls []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PhotosErr != nil {
		if err := f.PhotosErr(chatID, urls); err != nil {
			return err
		}
	}
	f.Albums = append(f.Albums, Album{ChatID: chatID, URLs: append([]string(nil), urls...)})
	return nil
}

// Last returns the most recent sent message
func (f *FakeMessenger) Last() Sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Sent) == 0 {
		return Sent{}
	}
	return f.Sent[len(f.Sent)-1]
}

// Texts returns the text of every sent message
func (f *FakeMessenger) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Sent))
	for _, s := range f.Sent {
		out = append(out, s.Message.Text)
	}
	return out
}

// Reset forgets everything recorded so far
func (f *FakeMessenger) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sent, f.Edits, f.Deleted, f.Albums = nil, nil, nil, nil
}

// FakeDirectory serves identities by email and a fixed listing table
type FakeDirectory struct {
	mu         sync.Mutex
	Identities map[string]*domain.Identity
	Listings   []domain.Listing
	Queries    []domain.ListingQuery
	Err        error
}

// NewFakeDirectory creates an empty directory
func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{Identities: make(map[string]*domain.Identity)}
}

func (d *FakeDirectory) FindIdentity(_ context.Context, email string) (*domain.Identity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	identity, ok := d.Identities[email]
	if !ok {
		return nil, nil
	}
	cp := *identity
	return &cp, nil
}

// FindMatchingListings applies the query filters to the listing table
func (d *FakeDirectory) FindMatchingListings(_ context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Queries = append(d.Queries, q)
	if d.Err != nil {
		return nil, d.Err
	}

	excluded := make(map[int64]bool, len(q.ExcludeIDs))
	for _, id := range q.ExcludeIDs {
		excluded[id] = true
	}

	var out []domain.Listing
	for _, l := range d.Listings {
		if excluded[l.ID] || l.Price < q.MinPrice || l.Price > q.MaxPrice {
			continue
		}
		if len(q.Areas) > 0 && !containsString(q.Areas, l.Area) {
			continue
		}
		if len(q.Beds) > 0 && !containsInt(q.Beds, l.Beds) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, n := range list {
		if n == v {
			return true
		}
	}
	return false
}

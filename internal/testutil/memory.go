package testutil

import (
	"context"
	"sync"
	"time"

	"renthunt/internal/domain"
	"renthunt/internal/lock"
)

// MemoryUserRepo keeps users in memory
type MemoryUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[lock.Key]domain.User
}

// NewMemoryUserRepo creates an empty repository
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[lock.Key]domain.User)}
}

func (r *MemoryUserRepo) FindOrCreate(_ context.Context, userID, chatID int64, locale string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := lock.Key{UserID: userID, ChatID: chatID}
	if u, ok := r.users[key]; ok {
		return cloneUser(u), nil
	}
	r.nextID++
	u := domain.User{ID: r.nextID, UserID: userID, ChatID: chatID, Locale: locale, NextAction: domain.StateIdle}
	r.users[key] = u
	return cloneUser(u), nil
}

func (r *MemoryUserRepo) Find(_ context.Context, userID, chatID int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[lock.Key{UserID: userID, ChatID: chatID}]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepo) Save(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := lock.Key{UserID: user.UserID, ChatID: user.ChatID}
	if _, ok := r.users[key]; !ok {
		return nil
	}
	r.users[key] = *cloneUser(*user)
	return nil
}

func (r *MemoryUserRepo) Delete(_ context.Context, userID, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, lock.Key{UserID: userID, ChatID: chatID})
	return nil
}

func (r *MemoryUserRepo) ListWithRequest(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if u.RequestID != nil {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

// Put stores a user as is
func (r *MemoryUserRepo) Put(user domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[lock.Key{UserID: user.UserID, ChatID: user.ChatID}] = *cloneUser(user)
}

func cloneUser(u domain.User) *domain.User {
	cp := u
	cp.MessageForDelete = append([]int(nil), u.MessageForDelete...)
	if u.PendingDeleteID != nil {
		id := *u.PendingDeleteID
		cp.PendingDeleteID = &id
	}
	if u.RequestID != nil {
		id := *u.RequestID
		cp.RequestID = &id
	}
	return &cp
}

// MemoryRequestRepo keeps requests in memory
type MemoryRequestRepo struct {
	mu       sync.Mutex
	nextID   int64
	requests map[int64]domain.Request
}

// NewMemoryRequestRepo creates an empty repository
func NewMemoryRequestRepo() *MemoryRequestRepo {
	return &MemoryRequestRepo{requests: make(map[int64]domain.Request)}
}

func (r *MemoryRequestRepo) Create(_ context.Context, userID int64) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now()
	req := domain.Request{
		ID:         r.nextID,
		UserID:     userID,
		City:       "Бали",
		Categories: []string{"Вилла", "Комната", "Гестхаус", "Апартаменты", "Дом"},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.requests[req.ID] = req
	return cloneRequest(req), nil
}

func (r *MemoryRequestRepo) Find(_ context.Context, id int64) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return cloneRequest(req), nil
}

func (r *MemoryRequestRepo) FindLatestByUser(_ context.Context, userID int64) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.Request
	for _, req := range r.requests {
		if req.UserID == userID && (latest == nil || req.ID > latest.ID) {
			latest = cloneRequest(req)
		}
	}
	return latest, nil
}

func (r *MemoryRequestRepo) UpdateFilters(_ context.Context, request *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.requests[request.ID]
	if !ok {
		return domain.ErrRequestNotFound
	}
	updated := cloneRequest(*request)
	stored.Areas = updated.Areas
	stored.Beds = updated.Beds
	stored.MinPrice = updated.MinPrice
	stored.Price = updated.Price
	stored.UpdatedAt = time.Now()
	r.requests[request.ID] = stored
	return nil
}

func (r *MemoryRequestRepo) SetProperties(_ context.Context, id int64, properties []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.requests[id]
	if !ok {
		return domain.ErrRequestNotFound
	}
	stored.Properties = append([]int64(nil), properties...)
	r.requests[id] = stored
	return nil
}

// Put stores a request as is
func (r *MemoryRequestRepo) Put(req domain.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.ID > r.nextID {
		r.nextID = req.ID
	}
	r.requests[req.ID] = *cloneRequest(req)
}

func cloneRequest(req domain.Request) *domain.Request {
	cp := req
	if req.Areas != nil {
		cp.Areas = append([]string{}, req.Areas...)
	}
	if req.Beds != nil {
		cp.Beds = append([]int{}, req.Beds...)
	}
	if req.Properties != nil {
		cp.Properties = append([]int64{}, req.Properties...)
	}
	if req.MinPrice != nil {
		v := *req.MinPrice
		cp.MinPrice = &v
	}
	if req.Price != nil {
		v := *req.Price
		cp.Price = &v
	}
	return &cp
}

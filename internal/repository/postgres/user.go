package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"renthunt/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const userColumns = `id, user_id, chat_id, locale, current_action, next_action,
	pending_delete_id, request_id, email, is_trial, message_for_delete`

type userRow struct {
	ID               int64          `db:"id"`
	UserID           int64          `db:"user_id"`
	ChatID           int64          `db:"chat_id"`
	Locale           string         `db:"locale"`
	CurrentAction    string         `db:"current_action"`
	NextAction       string         `db:"next_action"`
	PendingDeleteID  sql.NullInt64  `db:"pending_delete_id"`
	RequestID        sql.NullInt64  `db:"request_id"`
	Email            sql.NullString `db:"email"`
	IsTrial          bool           `db:"is_trial"`
	MessageForDelete pq.Int64Array  `db:"message_for_delete"`
}

func (r userRow) toDomain() *domain.User {
	u := &domain.User{
		ID:            r.ID,
		UserID:        r.UserID,
		ChatID:        r.ChatID,
		Locale:        r.Locale,
		CurrentAction: domain.Action(r.CurrentAction),
		NextAction:    domain.DialogState(r.NextAction),
		Email:         r.Email.String,
		IsTrial:       r.IsTrial,
	}
	if u.NextAction == "" {
		u.NextAction = domain.StateIdle
	}
	if r.PendingDeleteID.Valid {
		id := int(r.PendingDeleteID.Int64)
		u.PendingDeleteID = &id
	}
	if r.RequestID.Valid {
		id := r.RequestID.Int64
		u.RequestID = &id
	}
	for _, id := range r.MessageForDelete {
		u.MessageForDelete = append(u.MessageForDelete, int(id))
	}
	return u
}

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// FindOrCreate creates the user if it does not exist and returns it
func (r *UserRepo) FindOrCreate(ctx context.Context, userID, chatID int64, locale string) (*domain.User, error) {
	query := `
		INSERT INTO users (user_id, chat_id, locale)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, chat_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, userID, chatID, locale); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	user, err := r.Find(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d in chat %d vanished after insert", userID, chatID)
	}
	return user, nil
}

// Find returns the user of a chat or nil
func (r *UserRepo) Find(ctx context.Context, userID, chatID int64) (*domain.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 AND chat_id = $2`
	err := r.db.GetContext(ctx, &row, query, userID, chatID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return row.toDomain(), nil
}

// Save writes every mutable user column
func (r *UserRepo) Save(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET locale = $3,
			current_action = $4,
			next_action = $5,
			pending_delete_id = $6,
			request_id = $7,
			email = $8,
			is_trial = $9,
			message_for_delete = $10,
			updated_at = NOW()
		WHERE user_id = $1 AND chat_id = $2
	`

	var pendingDelete interface{}
	if user.PendingDeleteID != nil {
		pendingDelete = int64(*user.PendingDeleteID)
	}
	var requestID interface{}
	if user.RequestID != nil {
		requestID = *user.RequestID
	}
	var email interface{}
	if user.Email != "" {
		email = user.Email
	}
	toDelete := make(pq.Int64Array, 0, len(user.MessageForDelete))
	for _, id := range user.MessageForDelete {
		toDelete = append(toDelete, int64(id))
	}

	_, err := r.db.ExecContext(ctx, query,
		user.UserID,
		user.ChatID,
		user.Locale,
		string(user.CurrentAction),
		string(user.NextAction),
		pendingDelete,
		requestID,
		email,
		user.IsTrial,
		toDelete,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Delete removes the user of a chat
func (r *UserRepo) Delete(ctx context.Context, userID, chatID int64) error {
	query := `DELETE FROM users WHERE user_id = $1 AND chat_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, chatID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ListWithRequest returns users that have a search request
func (r *UserRepo) ListWithRequest(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE request_id IS NOT NULL ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, *row.toDomain())
	}
	return users, nil
}

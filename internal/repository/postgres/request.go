package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"renthunt/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const requestColumns = `id, guid, user_id, city, categories, areas, beds, properties,
	min_price, price, created_at, updated_at`

type requestRow struct {
	ID         int64          `db:"id"`
	GUID       string         `db:"guid"`
	UserID     int64          `db:"user_id"`
	City       string         `db:"city"`
	Categories pq.StringArray `db:"categories"`
	Areas      pq.StringArray `db:"areas"`
	Beds       pq.Int64Array  `db:"beds"`
	Properties pq.Int64Array  `db:"properties"`
	MinPrice   sql.NullInt64  `db:"min_price"`
	Price      sql.NullInt64  `db:"price"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r requestRow) toDomain() *domain.Request {
	req := &domain.Request{
		ID:         r.ID,
		GUID:       r.GUID,
		UserID:     r.UserID,
		City:       r.City,
		Categories: []string(r.Categories),
		MinPrice:   nullableInt(r.MinPrice),
		Price:      nullableInt(r.Price),
		Properties: []int64(r.Properties),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.Areas != nil {
		req.Areas = []string(r.Areas)
	}
	if r.Beds != nil {
		req.Beds = make([]int, 0, len(r.Beds))
		for _, b := range r.Beds {
			req.Beds = append(req.Beds, int(b))
		}
	}
	return req
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func intArg(p *int) interface{} {
	if p == nil {
		return nil
	}
	return int64(*p)
}

// RequestRepo implements repository.RequestRepository
type RequestRepo struct {
	db *sqlx.DB
}

// NewRequestRepo creates a new request repository
func NewRequestRepo(db *sqlx.DB) *RequestRepo {
	return &RequestRepo{db: db}
}

// Create starts an empty request for the user
func (r *RequestRepo) Create(ctx context.Context, userID int64) (*domain.Request, error) {
	var row requestRow
	query := `
		INSERT INTO requests (guid, user_id)
		VALUES ($1, $2)
		RETURNING ` + requestColumns

	if err := r.db.GetContext(ctx, &row, query, uuid.New().String(), userID); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return row.toDomain(), nil
}

// Find returns a live request by id
func (r *RequestRepo) Find(ctx context.Context, id int64) (*domain.Request, error) {
	var row requestRow
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1 AND deleted_at IS NULL`
	err := r.db.GetContext(ctx, &row, query, id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find request: %w", err)
	}
	return row.toDomain(), nil
}

// FindLatestByUser returns the newest live request of a user or nil
func (r *RequestRepo) FindLatestByUser(ctx context.Context, userID int64) (*domain.Request, error) {
	var row requestRow
	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY id DESC
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &row, query, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest request: %w", err)
	}
	return row.toDomain(), nil
}

// UpdateFilters stores areas, beds and the price range
func (r *RequestRepo) UpdateFilters(ctx context.Context, request *domain.Request) error {
	query := `
		UPDATE requests
		SET areas = $2, beds = $3, min_price = $4, price = $5, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	var areas interface{}
	if request.Areas != nil {
		areas = pq.StringArray(request.Areas)
	}
	var beds interface{}
	if request.Beds != nil {
		arr := make(pq.Int64Array, 0, len(request.Beds))
		for _, b := range request.Beds {
			arr = append(arr, int64(b))
		}
		beds = arr
	}

	res, err := r.db.ExecContext(ctx, query,
		request.ID,
		areas,
		beds,
		intArg(request.MinPrice),
		intArg(request.Price),
	)
	if err != nil {
		return fmt.Errorf("update request filters: %w", err)
	}
	return expectOne(res)
}

// SetProperties replaces the delivered listing ids
func (r *RequestRepo) SetProperties(ctx context.Context, id int64, properties []int64) error {
	query := `
		UPDATE requests
		SET properties = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id, pq.Int64Array(properties))
	if err != nil {
		return fmt.Errorf("set request properties: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

// Package directory reads customers and property listings from Airtable.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"renthunt/internal/domain"

	"go.uber.org/zap"
)

// Airtable field names
const (
	FieldEmail       = "Email"
	FieldAccessValid = "Доступ действителен"
	FieldPlan        = "Plan"
	FieldTrial       = "TRIAL"
	FieldNumber      = "Номер"
	FieldAdID        = "ad_id"
	FieldTitle       = "Заголовок"
	FieldTitleEn     = "Title eng"
	FieldArea        = "Район"
	FieldDistrict    = "District"
	FieldBeds        = "Количество спален"
	FieldPrice       = "Цена долларов в месяц"
	FieldChatLink    = "Телеграм ссылка"
	FieldPhotos      = "Фото"
)

const (
	accessValidMark = "✅"
	trialMark       = "TRIAL"

	defaultBaseURL = "https://api.airtable.com/v0"
	pageSize       = 100
)

// ErrMissingField is returned when a record lacks a required field
var ErrMissingField = errors.New("directory: missing required field")

// Config configures the Airtable client
type Config struct {
	Token           string
	BaseID          string
	UsersTable      string
	PropertiesTable string
	// BaseURL overrides the API endpoint, used by tests
	BaseURL    string
	HTTPClient *http.Client
}

// Client queries the Airtable REST API
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates an Airtable client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, http: client, logger: logger}
}

type record struct {
	ID     string                     `json:"id"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset"`
}

// FindIdentity looks up a customer by email. It returns nil when no record matches.
func (c *Client) FindIdentity(ctx context.Context, email string) (*domain.Identity, error) {
	records, err := c.list(ctx, c.cfg.UsersTable, identityFormula(email), 1)
	if err != nil {
		return nil, fmt.Errorf("find identity: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	identity := decodeIdentity(records[0])
	if identity.Email == "" {
		identity.Email = strings.ToLower(email)
	}
	return &identity, nil
}

// FindMatchingListings returns listings matching the query in directory order.
// Records without a listing number are skipped.
func (c *Client) FindMatchingListings(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
	records, err := c.list(ctx, c.cfg.PropertiesTable, listingsFormula(q), 0)
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}

	listings := make([]domain.Listing, 0, len(records))
	for _, r := range records {
		l, err := decodeListing(r)
		if err != nil {
			c.logger.Warn("Skipping malformed listing",
				zap.String("record_id", r.ID),
				zap.Error(err),
			)
			continue
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// listRequest is the body of a listRecords call. The formula travels in the
// body so a long exclusion list cannot overflow the URL.
type listRequest struct {
	FilterByFormula string `json:"filterByFormula"`
	PageSize        int    `json:"pageSize"`
	MaxRecords      int    `json:"maxRecords,omitempty"`
	Offset          string `json:"offset,omitempty"`
}

// list fetches every page of a table filtered by formula. limit 0 means all records.
func (c *Client) list(ctx context.Context, table, formula string, limit int) ([]record, error) {
	endpoint := c.cfg.BaseURL + "/" + url.PathEscape(c.cfg.BaseID) + "/" + url.PathEscape(table) + "/listRecords"

	var out []record
	body := listRequest{FilterByFormula: formula, PageSize: pageSize, MaxRecords: limit}
	for {
		page, err := c.fetch(ctx, endpoint, body)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Records...)

		if page.Offset == "" || (limit > 0 && len(out) >= limit) {
			return out, nil
		}
		body.Offset = page.Offset
	}
}

func (c *Client) fetch(ctx context.Context, endpoint string, body listRequest) (*listResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request airtable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("airtable status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page listResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode airtable response: %w", err)
	}
	return &page, nil
}

func decodeIdentity(r record) domain.Identity {
	return domain.Identity{
		Email:       strings.ToLower(stringField(r, FieldEmail)),
		AccessValid: stringField(r, FieldAccessValid) == accessValidMark,
		Plan:        stringField(r, FieldPlan),
		Trial:       stringField(r, FieldTrial) == trialMark,
	}
}

func decodeListing(r record) (domain.Listing, error) {
	id, ok := intField(r, FieldNumber)
	if !ok {
		return domain.Listing{}, fmt.Errorf("%w: %s", ErrMissingField, FieldNumber)
	}

	beds, _ := intField(r, FieldBeds)
	price, _ := intField(r, FieldPrice)

	return domain.Listing{
		ID:       id,
		AdID:     stringField(r, FieldAdID),
		Title:    stringField(r, FieldTitle),
		TitleEn:  stringField(r, FieldTitleEn),
		Area:     stringField(r, FieldArea),
		District: stringField(r, FieldDistrict),
		Beds:     int(beds),
		Price:    int(price),
		ChatLink: strings.TrimSpace(stringField(r, FieldChatLink)),
		Photos:   photoURLs(r),
	}, nil
}

// stringField reads a text field; single-item lookup arrays are unwrapped
func stringField(r record, name string) string {
	raw, ok := r.Fields[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// intField reads a numeric field stored either as number or as text
func intField(r record, name string) (int64, bool) {
	raw, ok := r.Fields[name]
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int64(f), true
	}
	s := strings.TrimSpace(stringField(r, name))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSuffix(s, "+"), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type attachment struct {
	URL        string `json:"url"`
	Thumbnails struct {
		Large struct {
			URL string `json:"url"`
		} `json:"large"`
	} `json:"thumbnails"`
}

func photoURLs(r record) []string {
	raw, ok := r.Fields[FieldPhotos]
	if !ok {
		return nil
	}
	var attachments []attachment
	if err := json.Unmarshal(raw, &attachments); err != nil {
		return nil
	}
	urls := make([]string, 0, len(attachments))
	for _, a := range attachments {
		switch {
		case a.Thumbnails.Large.URL != "":
			urls = append(urls, a.Thumbnails.Large.URL)
		case a.URL != "":
			urls = append(urls, a.URL)
		}
	}
	return urls
}

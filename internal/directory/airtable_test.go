package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"renthunt/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{
		Token:           "secret",
		BaseID:          "app123",
		UsersTable:      "Users",
		PropertiesTable: "Properties",
		BaseURL:         server.URL,
		HTTPClient:      server.Client(),
	}, zap.NewNop())
}

// readList decodes the body of a listRecords call
func readList(t *testing.T, r *http.Request) listRequest {
	t.Helper()
	assert.Equal(t, http.MethodPost, r.Method)
	assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

	var body listRequest
	assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestClient_FindIdentity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := readList(t, r)
		assert.Equal(t, "/app123/Users/listRecords", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "LOWER({Email}) = 'vip@example.com'", body.FilterByFormula)
		assert.Equal(t, 1, body.MaxRecords)

		w.Write([]byte(`{"records":[{"id":"rec1","fields":{
			"Email":"VIP@example.com",
			"Доступ действителен":"✅",
			"Plan":"VIP"
		}}]}`))
	})

	identity, err := client.FindIdentity(context.Background(), "VIP@example.com")
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, domain.Identity{
		Email:       "vip@example.com",
		AccessValid: true,
		Plan:        "VIP",
		Trial:       false,
	}, *identity)
}

func TestClient_FindIdentity_Trial(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"records":[{"id":"rec1","fields":{"TRIAL":"TRIAL","Plan":["BASIC"]}}]}`))
	})

	identity, err := client.FindIdentity(context.Background(), "trial@example.com")
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.True(t, identity.Trial)
	assert.False(t, identity.AccessValid)
	assert.Equal(t, "BASIC", identity.Plan)
	assert.Equal(t, "trial@example.com", identity.Email)
}

func TestClient_FindIdentity_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"records":[]}`))
	})

	identity, err := client.FindIdentity(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, identity)
}

func TestClient_FindIdentity_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"AUTHENTICATION_REQUIRED"}`))
	})

	identity, err := client.FindIdentity(context.Background(), "x@example.com")
	assert.Error(t, err)
	assert.Nil(t, identity)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_FindMatchingListings_Paginates(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		body := readList(t, r)
		assert.Equal(t, "/app123/Properties/listRecords", r.URL.Path)
		assert.Equal(t, pageSize, body.PageSize)
		assert.Zero(t, body.MaxRecords)
		switch body.Offset {
		case "":
			w.Write([]byte(`{"records":[
				{"id":"rec1","fields":{"Номер":12,"Район":"Чангу","District":"Canggu","Title eng":"Sea villa",
				 "Заголовок":"Вилла у моря","Количество спален":2,"Цена долларов в месяц":800,
				 "Телеграм ссылка":"https://t.me/owner1","ad_id":"a12",
				 "Фото":[{"url":"https://img/1.jpg","thumbnails":{"large":{"url":"https://img/1-large.jpg"}}},{"url":"https://img/2.jpg"}]}},
				{"id":"rec2","fields":{"Район":"Убуд"}}
			],"offset":"page2"}`))
		case "page2":
			w.Write([]byte(`{"records":[
				{"id":"rec3","fields":{"Номер":"17","Цена долларов в месяц":"650","Количество спален":"5+"}}
			]}`))
		default:
			t.Errorf("unexpected offset %q", body.Offset)
		}
	})

	listings, err := client.FindMatchingListings(context.Background(), domain.ListingQuery{
		Areas:    []string{"Чангу"},
		Beds:     []int{2},
		MinPrice: 100,
		MaxPrice: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, listings, 2)

	assert.Equal(t, int64(12), listings[0].ID)
	assert.Equal(t, "a12", listings[0].AdID)
	assert.Equal(t, "Вилла у моря", listings[0].Title)
	assert.Equal(t, "Sea villa", listings[0].TitleEn)
	assert.Equal(t, "Чангу", listings[0].Area)
	assert.Equal(t, "Canggu", listings[0].District)
	assert.Equal(t, 2, listings[0].Beds)
	assert.Equal(t, 800, listings[0].Price)
	assert.Equal(t, []string{"https://img/1-large.jpg", "https://img/2.jpg"}, listings[0].Photos)

	assert.Equal(t, int64(17), listings[1].ID)
	assert.Equal(t, 650, listings[1].Price)
	assert.Equal(t, 5, listings[1].Beds)
}

func TestClient_FindMatchingListings_LongExclusionList(t *testing.T) {
	excluded := make([]int64, 0, 1000)
	for id := int64(1); id <= 1000; id++ {
		excluded = append(excluded, id)
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := readList(t, r)
		assert.Empty(t, r.URL.RawQuery)
		assert.Less(t, len(r.URL.RequestURI()), 100)
		assert.Contains(t, body.FilterByFormula, "{Номер} = 1000")
		w.Write([]byte(`{"records":[{"id":"rec1","fields":{"Номер":1001,"Район":"Чангу"}}]}`))
	})

	listings, err := client.FindMatchingListings(context.Background(), domain.ListingQuery{
		Areas:      []string{"Чангу"},
		MinPrice:   0,
		MaxPrice:   5000,
		ExcludeIDs: excluded,
	})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, int64(1001), listings[0].ID)
}

func TestListingsFormula(t *testing.T) {
	formula := listingsFormula(domain.ListingQuery{
		Areas:      []string{"Чангу", "Убуд"},
		Beds:       []int{1},
		MinPrice:   100,
		MaxPrice:   500,
		ExcludeIDs: []int64{5, 9},
	})

	assert.Equal(t,
		"AND(OR({Район} = 'Чангу', {Район} = 'Убуд'), {Количество спален} = 1, "+
			"{Цена долларов в месяц} >= 100, {Цена долларов в месяц} <= 500, {Телеграм ссылка} != '', "+
			"NOT(OR({Номер} = 5, {Номер} = 9)))",
		formula,
	)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `'o\'brien@example.com'`, quote("o'brien@example.com"))
	assert.Equal(t, `'a\\b'`, quote(`a\b`))
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"renthunt/internal/domain"
	"renthunt/internal/messenger"
	"renthunt/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDispatchService(t *testing.T, dir Directory, requests *testutil.MockRequestRepository, msgr *testutil.FakeMessenger) *DispatchService {
	t.Helper()
	return NewDispatchService(dir, requests, msgr, testutil.NewTestBundle(t), DispatchConfig{
		CatalogURL: "https://example.com/catalog?id={id}",
	}, testutil.NewTestLogger())
}

func listings(ids ...int64) []domain.Listing {
	out := make([]domain.Listing, 0, len(ids))
	for _, id := range ids {
		out = append(out, testutil.NewTestListing(id))
	}
	return out
}

func TestDispatchService_Dedup(t *testing.T) {
	tests := []struct {
		name              string
		mode              Mode
		expectedDelivered []int64
		expectedLedger    []int64
	}{
		{
			name:              "fresh search delivers the full match set",
			mode:              ModeFresh,
			expectedDelivered: []int64{5, 9, 12, 17},
			expectedLedger:    []int64{5, 9, 12, 17},
		},
		{
			name:              "continuation skips delivered listings",
			mode:              ModeContinuation,
			expectedDelivered: []int64{12, 17},
			expectedLedger:    []int64{5, 9, 12, 17},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.NewFakeDirectory()
			dir.Listings = listings(5, 9, 12, 17)
			requests := new(testutil.MockRequestRepository)
			requests.On("SetProperties", mock.Anything, int64(1), tt.expectedLedger).Return(nil)
			msgr := testutil.NewFakeMessenger()

			service := newDispatchService(t, dir, requests, msgr)
			req := testutil.NewFilledRequest(1, 5, 9)
			user := testutil.NewTestUser(7, domain.StateConfirm)

			delivered, err := service.Dispatch(context.Background(), req, user, tt.mode)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedDelivered, delivered)
			assert.Equal(t, tt.expectedLedger, req.Properties)
			assert.Len(t, msgr.Sent, len(tt.expectedDelivered))
			requests.AssertExpectations(t)
		})
	}
}

func TestDispatchService_ExcludesWorkingSetInQuery(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	requests := new(testutil.MockRequestRepository)
	service := newDispatchService(t, dir, requests, testutil.NewFakeMessenger())

	req := testutil.NewFilledRequest(1, 5, 9)
	_, err := service.Dispatch(context.Background(), req, testutil.NewTestUser(7, domain.StateConfirm), ModeContinuation)
	require.NoError(t, err)

	require.Len(t, dir.Queries, 1)
	assert.Equal(t, domain.ListingQuery{
		Areas:      []string{"Чангу"},
		Beds:       []int{1, 2},
		MinPrice:   100,
		MaxPrice:   1000,
		ExcludeIDs: []int64{5, 9},
	}, dir.Queries[0])
}

func TestDispatchService_PhotoCap(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	dir.Listings = []domain.Listing{
		testutil.NewTestListing(1, "https://img/1", "https://img/2", "https://img/3", "https://img/4", "https://img/5"),
		testutil.NewTestListing(2),
	}
	requests := new(testutil.MockRequestRepository)
	requests.On("SetProperties", mock.Anything, int64(1), []int64{1, 2}).Return(nil)
	msgr := testutil.NewFakeMessenger()

	service := newDispatchService(t, dir, requests, msgr)

	delivered, err := service.Dispatch(context.Background(), testutil.NewFilledRequest(1), testutil.NewTestUser(7, domain.StateConfirm), ModeFresh)

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, delivered)
	require.Len(t, msgr.Albums, 1)
	assert.Equal(t, []string{"https://img/1", "https://img/2", "https://img/3"}, msgr.Albums[0].URLs)
}

func TestDispatchService_ContactButtonOnlyForPaidUsers(t *testing.T) {
	tests := []struct {
		name        string
		isTrial     bool
		expectedBtn bool
	}{
		{name: "vip gets contact button", isTrial: false, expectedBtn: true},
		{name: "trial gets no contact button", isTrial: true, expectedBtn: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.NewFakeDirectory()
			dir.Listings = listings(3)
			requests := new(testutil.MockRequestRepository)
			requests.On("SetProperties", mock.Anything, int64(1), []int64{3}).Return(nil)
			msgr := testutil.NewFakeMessenger()

			service := newDispatchService(t, dir, requests, msgr)
			user := testutil.NewTestUser(7, domain.StateConfirm)
			user.IsTrial = tt.isTrial

			_, err := service.Dispatch(context.Background(), testutil.NewFilledRequest(1), user, ModeFresh)
			require.NoError(t, err)

			require.Len(t, msgr.Sent, 1)
			msg := msgr.Sent[0].Message
			assert.True(t, msg.HTML)
			assert.Contains(t, msg.Text, "https://example.com/catalog?id=ad")
			if tt.expectedBtn {
				require.Len(t, msg.Keyboard, 1)
				assert.Equal(t, "https://t.me/owner", msg.Keyboard[0][0].URL)
			} else {
				assert.Empty(t, msg.Keyboard)
			}
		})
	}
}

func TestDispatchService_SkipsInvalidLinksAndFailedSends(t *testing.T) {
	bad := testutil.NewTestListing(2)
	bad.ChatLink = "t.me/owner"
	ftp := testutil.NewTestListing(3)
	ftp.ChatLink = "ftp://files.example.com"
	unsent := testutil.NewTestListing(4)
	unsent.Title = "blocked"

	dir := testutil.NewFakeDirectory()
	dir.Listings = []domain.Listing{testutil.NewTestListing(1), bad, ftp, unsent, testutil.NewTestListing(5)}

	requests := new(testutil.MockRequestRepository)
	requests.On("SetProperties", mock.Anything, int64(1), []int64{1, 5}).Return(nil)

	msgr := testutil.NewFakeMessenger()
	msgr.SendErr = func(_ int64, msg messenger.Message) error {
		if strings.Contains(msg.Text, "blocked") {
			return errors.New("too many requests")
		}
		return nil
	}

	service := newDispatchService(t, dir, requests, msgr)

	delivered, err := service.Dispatch(context.Background(), testutil.NewFilledRequest(1), testutil.NewTestUser(7, domain.StateConfirm), ModeFresh)

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 5}, delivered)
	requests.AssertExpectations(t)
}

func TestDispatchService_FailedAlbumStillCountsAsDelivered(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	dir.Listings = []domain.Listing{testutil.NewTestListing(4, "https://img/broken")}

	requests := testutil.NewMemoryRequestRepo()
	req := testutil.NewFilledRequest(1)
	requests.Put(*req)

	msgr := testutil.NewFakeMessenger()
	msgr.PhotosErr = func(int64, []string) error { return errors.New("wrong file identifier") }

	service := NewDispatchService(dir, requests, msgr, testutil.NewTestBundle(t), DispatchConfig{}, testutil.NewTestLogger())
	user := testutil.NewTestUser(7, domain.StateConfirm)

	delivered, err := service.Dispatch(context.Background(), req, user, ModeContinuation)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, delivered)

	stored, err := requests.Find(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, stored.Properties)

	// Later runs must not resend the listing
	for i := 0; i < 2; i++ {
		again, err := service.Dispatch(context.Background(), stored, user, ModeContinuation)
		require.NoError(t, err)
		assert.Empty(t, again)
	}
	assert.Len(t, msgr.Sent, 1)
}

func TestDispatchService_NoDeliveriesSkipsWrite(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	dir.Listings = listings(5)
	requests := new(testutil.MockRequestRepository)
	msgr := testutil.NewFakeMessenger()
	msgr.SendErr = func(int64, messenger.Message) error { return errors.New("bot was blocked by the user") }

	service := newDispatchService(t, dir, requests, msgr)

	delivered, err := service.Dispatch(context.Background(), testutil.NewFilledRequest(1), testutil.NewTestUser(7, domain.StateConfirm), ModeFresh)

	assert.NoError(t, err)
	assert.Empty(t, delivered)
	requests.AssertNotCalled(t, "SetProperties", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchService_RequestNotFilled(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	service := newDispatchService(t, dir, new(testutil.MockRequestRepository), testutil.NewFakeMessenger())

	req := testutil.NewFilledRequest(1)
	req.Price = nil

	_, err := service.Dispatch(context.Background(), req, testutil.NewTestUser(7, domain.StateConfirm), ModeFresh)

	assert.ErrorIs(t, err, ErrRequestNotFilled)
	assert.Empty(t, dir.Queries)
}

func TestValidLink(t *testing.T) {
	assert.True(t, validLink("https://t.me/owner"))
	assert.True(t, validLink("http://wa.me/628123"))
	assert.False(t, validLink(""))
	assert.False(t, validLink("t.me/owner"))
	assert.False(t, validLink("ftp://example.com"))
	assert.False(t, validLink("https://"))
}

package locale

import (
	"testing"

	"renthunt/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadBundle(t *testing.T) *Bundle {
	t.Helper()
	b, err := Load("ru")
	require.NoError(t, err)
	return b
}

func TestLoad(t *testing.T) {
	b := loadBundle(t)

	assert.True(t, b.Supported("ru"))
	assert.True(t, b.Supported("en"))
	assert.False(t, b.Supported("de"))
	assert.Equal(t, "ru", b.Resolve("de"))
	assert.Equal(t, "ru", b.Default())
	assert.Len(t, b.Areas("en"), len(b.Areas("ru")))
	assert.NotEmpty(t, b.Beds())

	for _, locale := range []string{"ru", "en"} {
		msgs := b.Messages(locale)
		assert.NotEmpty(t, msgs.Start, locale)
		assert.NotEmpty(t, msgs.Next, locale)
		assert.NotEmpty(t, msgs.Details, locale)
	}
}

func TestLoad_UnsupportedFallback(t *testing.T) {
	b, err := Load("de")
	assert.Error(t, err)
	assert.Nil(t, b)
}

func TestAreaProjection_BothDirectionsAgree(t *testing.T) {
	b := loadBundle(t)

	canonical := b.CanonicalAreaList()
	for _, locale := range []string{"ru", "en"} {
		localized := b.LocalizeAreas(locale, canonical)
		assert.Equal(t, b.Areas(locale), localized)
		assert.Equal(t, canonical, b.CanonicalAreas(locale, localized))
	}
}

func TestAreaProjection(t *testing.T) {
	b := loadBundle(t)

	assert.Equal(t, []string{"Canggu", "Ubud"}, b.LocalizeAreas("en", []string{"Чангу", "Убуд"}))
	assert.Equal(t, []string{"Чангу", "Убуд"}, b.CanonicalAreas("en", []string{"Canggu", "Ubud"}))
	assert.Equal(t, []string{"Чангу"}, b.CanonicalAreas("ru", []string{"Чангу", "Atlantis"}))
	assert.Empty(t, b.LocalizeAreas("en", nil))
}

func TestBedProjection(t *testing.T) {
	b := loadBundle(t)

	assert.Equal(t, []int{1, 3, 5}, b.BedNumbers([]string{"1", "3", "5+"}))
	assert.Equal(t, []string{"1", "3", "5+"}, b.BedLabels([]int{1, 3, 5}))
	assert.Equal(t, []string{"2"}, b.BedLabels([]int{0, 2, 99}))
}

func TestDetails(t *testing.T) {
	b := loadBundle(t)
	minPrice, price := 300, 500
	req := &domain.Request{
		Areas:    []string{"Чангу", "Убуд"},
		Beds:     []int{1, 2},
		MinPrice: &minPrice,
		Price:    &price,
	}

	text, err := b.Details("en", req)
	require.NoError(t, err)
	assert.Contains(t, text, "Canggu, Ubud")
	assert.Contains(t, text, "1, 2")
	assert.Contains(t, text, "300–500")

	text, err = b.Details("ru", req)
	require.NoError(t, err)
	assert.Contains(t, text, "Чангу, Убуд")
}

func TestListing(t *testing.T) {
	b := loadBundle(t)
	listing := domain.Listing{
		ID:       7,
		AdID:     "ad-7",
		Title:    "Вилла <у океана>",
		TitleEn:  "Villa <by the ocean>",
		Area:     "Чангу",
		District: "Canggu Batu Bolong",
		Beds:     2,
		Price:    900,
	}

	text, err := b.Listing("ru", listing, "https://example.com/catalog?id={id}")
	require.NoError(t, err)
	assert.Contains(t, text, "Вилла &lt;у океана&gt;")
	assert.Contains(t, text, "Район: Чангу")
	assert.Contains(t, text, "https://example.com/catalog?id=ad-7")
	assert.Contains(t, text, "900")
	assert.NotContains(t, text, "Villa")

	text, err = b.Listing("en", listing, "https://example.com/catalog?id={id}")
	require.NoError(t, err)
	assert.Contains(t, text, "Villa &lt;by the ocean&gt;")
	assert.Contains(t, text, "Area: Canggu Batu Bolong")
	assert.NotContains(t, text, "Вилла")
}

func TestListing_EnglishFallbacks(t *testing.T) {
	b := loadBundle(t)
	listing := domain.Listing{ID: 8, AdID: "ad-8", Title: "Вилла", Area: "Убуд", Beds: 1, Price: 400}

	text, err := b.Listing("en", listing, "https://example.com/catalog?id={id}")
	require.NoError(t, err)
	assert.Contains(t, text, "Area: Ubud")
	assert.NotContains(t, text, "<b>")
	assert.NotContains(t, text, "Вилла")
}

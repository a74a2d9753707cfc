package locale

import (
	"bytes"
	"fmt"
	"strings"

	"renthunt/internal/domain"
)

type detailsView struct {
	Areas    string
	Beds     string
	MinPrice string
	Price    string
}

type listingView struct {
	Title    string
	Area     string
	Beds     int
	Price    int
	Link     string
	LinkText string
}

// Details renders the search summary of a request
func (b *Bundle) Details(locale string, req *domain.Request) (string, error) {
	locale = b.Resolve(locale)
	view := detailsView{
		Areas:    joinLabels(b.LocalizeAreas(locale, req.Areas)),
		Beds:     joinLabels(b.BedLabels(req.Beds)),
		MinPrice: formatInt(req.MinPrice),
		Price:    formatInt(req.Price),
	}

	var buf bytes.Buffer
	if err := b.details[locale].Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render details: %w", err)
	}
	return buf.String(), nil
}

// Listing renders a property card. catalogURL may contain an {id} placeholder
// replaced by the listing's ad id.
func (b *Bundle) Listing(locale string, l domain.Listing, catalogURL string) (string, error) {
	locale = b.Resolve(locale)
	view := listingView{
		Title:    l.Title,
		Area:     l.Area,
		Beds:     l.Beds,
		Price:    l.Price,
		Link:     strings.ReplaceAll(catalogURL, "{id}", l.AdID),
		LinkText: b.messages[locale].Link,
	}
	if locale != b.canonical {
		view.Title = l.TitleEn
		view.Area = l.District
		// Records without a District fall back to the projected catalog label
		if view.Area == "" {
			view.Area = strings.Join(b.LocalizeAreas(locale, []string{l.Area}), "")
		}
		if view.Area == "" {
			view.Area = l.Area
		}
	}

	var buf bytes.Buffer
	if err := b.listing[locale].Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render listing: %w", err)
	}
	return buf.String(), nil
}

// Package locale holds the string tables, the area/bed catalog and the text
// templates used to render listings and search previews.
package locale

import (
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var files embed.FS

// Messages is the string table of one locale
type Messages struct {
	Start                        string `yaml:"start"`
	ChooseLocale                 string `yaml:"chooseLocale"`
	Checking                     string `yaml:"checking"`
	InvalidEmail                 string `yaml:"invalidEmail"`
	NotFound                     string `yaml:"notFound"`
	Expired                      string `yaml:"expired"`
	GoToWebsite                  string `yaml:"goToWebsite"`
	WriteToSupport               string `yaml:"writeToSupport"`
	WriteAnotherEmail            string `yaml:"writeAnotherEmail"`
	ChooseAreas                  string `yaml:"chooseAreas"`
	AreaIsNotImportant           string `yaml:"areaIsNotImportant"`
	AreaNeedConsult              string `yaml:"areaNeedConsult"`
	Consult                      string `yaml:"consult"`
	NumberOfBeds                 string `yaml:"numberOfBeds"`
	Next                         string `yaml:"next"`
	SelectAtLeastOne             string `yaml:"selectAtLeastOne"`
	MinPrice                     string `yaml:"minPrice"`
	Price                        string `yaml:"price"`
	PriceBelowMin                string `yaml:"priceBelowMin"`
	Finish                       string `yaml:"finish"`
	Details                      string `yaml:"details"`
	Agree                        string `yaml:"agree"`
	NotFoundOptions              string `yaml:"notFoundOptions"`
	MaybeYouCanFindSomethingElse string `yaml:"maybeYouCanFindSomethingElse"`
	ShowTheFollowingAds          string `yaml:"showTheFollowingAds"`
	FoundOptions                 string `yaml:"foundOptions"`
	Write                        string `yaml:"write"`
	Link                         string `yaml:"link"`
	Listing                      string `yaml:"listing"`
	ChoseEditOption              string `yaml:"choseEditOption"`
	EditAreas                    string `yaml:"editAreas"`
	EditBeds                     string `yaml:"editBeds"`
	EditPrice                    string `yaml:"editPrice"`
	Error                        string `yaml:"error"`
}

type catalog struct {
	Canonical string              `yaml:"canonical"`
	Areas     map[string][]string `yaml:"areas"`
	Beds      []string            `yaml:"beds"`
}

// Bundle gives access to every locale
type Bundle struct {
	fallback  string
	canonical string
	messages  map[string]Messages
	areas     map[string][]string
	beds      []string
	details   map[string]*template.Template
	listing   map[string]*template.Template
}

// Load parses the embedded tables. fallback is used for unknown locales.
func Load(fallback string) (*Bundle, error) {
	var cat catalog
	if err := readYAML("data/catalog.yaml", &cat); err != nil {
		return nil, err
	}

	canonicalAreas, ok := cat.Areas[cat.Canonical]
	if !ok {
		return nil, fmt.Errorf("catalog: no areas for canonical locale %q", cat.Canonical)
	}

	b := &Bundle{
		fallback:  fallback,
		canonical: cat.Canonical,
		messages:  make(map[string]Messages),
		areas:     cat.Areas,
		beds:      cat.Beds,
		details:   make(map[string]*template.Template),
		listing:   make(map[string]*template.Template),
	}

	for locale, list := range cat.Areas {
		if len(list) != len(canonicalAreas) {
			return nil, fmt.Errorf("catalog: locale %q has %d areas, canonical has %d", locale, len(list), len(canonicalAreas))
		}

		var msgs Messages
		if err := readYAML("data/"+locale+".yaml", &msgs); err != nil {
			return nil, err
		}
		b.messages[locale] = msgs

		details, err := template.New(locale + "-details").Parse(msgs.Details)
		if err != nil {
			return nil, fmt.Errorf("locale %s: parse details template: %w", locale, err)
		}
		listing, err := template.New(locale + "-listing").Parse(msgs.Listing)
		if err != nil {
			return nil, fmt.Errorf("locale %s: parse listing template: %w", locale, err)
		}
		b.details[locale] = details
		b.listing[locale] = listing
	}

	if !b.Supported(fallback) {
		return nil, fmt.Errorf("fallback locale %q is not supported", fallback)
	}
	return b, nil
}

func readYAML(name string, out interface{}) error {
	data, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// Supported reports whether a locale has a string table
func (b *Bundle) Supported(locale string) bool {
	_, ok := b.messages[locale]
	return ok
}

// Resolve returns locale if supported, otherwise the fallback
func (b *Bundle) Resolve(locale string) string {
	if b.Supported(locale) {
		return locale
	}
	return b.fallback
}

// Default returns the fallback locale
func (b *Bundle) Default() string {
	return b.fallback
}

// Messages returns the string table of a locale
func (b *Bundle) Messages(locale string) Messages {
	return b.messages[b.Resolve(locale)]
}

// Areas returns area labels of a locale in canonical order
func (b *Bundle) Areas(locale string) []string {
	return b.areas[b.Resolve(locale)]
}

// CanonicalAreaList returns areas in the canonical locale.
func (b *Bundle) CanonicalAreaList() []string {
	return b.areas[b.canonical]
}

// Beds returns bed option labels
func (b *Bundle) Beds() []string {
	return b.beds
}

// LocalizeAreas projects canonical labels into a locale by position.
// Unknown labels are dropped.
func (b *Bundle) LocalizeAreas(locale string, canonical []string) []string {
	return project(b.areas[b.canonical], b.Areas(locale), canonical)
}

// CanonicalAreas projects locale labels back to canonical ones.
func (b *Bundle) CanonicalAreas(locale string, labels []string) []string {
	return project(b.Areas(locale), b.areas[b.canonical], labels)
}

func project(from, to, values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for i, candidate := range from {
			if candidate == v {
				out = append(out, to[i])
				break
			}
		}
	}
	return out
}

// BedLabels maps stored bed counts to option labels
func (b *Bundle) BedLabels(beds []int) []string {
	out := make([]string, 0, len(beds))
	for _, n := range beds {
		if n >= 1 && n <= len(b.beds) {
			out = append(out, b.beds[n-1])
		}
	}
	return out
}

// BedNumbers maps option labels to stored bed counts
func (b *Bundle) BedNumbers(labels []string) []int {
	out := make([]int, 0, len(labels))
	for _, label := range labels {
		for i, candidate := range b.beds {
			if candidate == label {
				out = append(out, i+1)
				break
			}
		}
	}
	return out
}

func formatInt(v *int) string {
	if v == nil {
		return "—"
	}
	return strconv.Itoa(*v)
}

func joinLabels(labels []string) string {
	return strings.Join(labels, ", ")
}

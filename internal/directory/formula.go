package directory

import (
	"fmt"
	"strconv"
	"strings"

	"renthunt/internal/domain"
)

// quote renders a string literal for an Airtable formula
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

func field(name string) string {
	return "{" + name + "}"
}

func identityFormula(email string) string {
	return fmt.Sprintf("LOWER(%s) = %s", field(FieldEmail), quote(strings.ToLower(email)))
}

func listingsFormula(q domain.ListingQuery) string {
	var parts []string

	if len(q.Areas) > 0 {
		areas := make([]string, 0, len(q.Areas))
		for _, a := range q.Areas {
			areas = append(areas, field(FieldArea)+" = "+quote(a))
		}
		parts = append(parts, or(areas))
	}

	if len(q.Beds) > 0 {
		beds := make([]string, 0, len(q.Beds))
		for _, b := range q.Beds {
			beds = append(beds, field(FieldBeds)+" = "+strconv.Itoa(b))
		}
		parts = append(parts, or(beds))
	}

	parts = append(parts,
		field(FieldPrice)+" >= "+strconv.Itoa(q.MinPrice),
		field(FieldPrice)+" <= "+strconv.Itoa(q.MaxPrice),
		field(FieldChatLink)+" != ''",
	)

	if len(q.ExcludeIDs) > 0 {
		ids := make([]string, 0, len(q.ExcludeIDs))
		for _, id := range q.ExcludeIDs {
			ids = append(ids, field(FieldNumber)+" = "+strconv.FormatInt(id, 10))
		}
		parts = append(parts, "NOT("+or(ids)+")")
	}

	return "AND(" + strings.Join(parts, ", ") + ")"
}

func or(terms []string) string {
	if len(terms) == 1 {
		return terms[0]
	}
	return "OR(" + strings.Join(terms, ", ") + ")"
}

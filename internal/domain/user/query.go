package user

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPage is used when the page parameter is absent or malformed.
	DefaultPage = 1
	// DefaultLimit is the user table's page size when none is requested.
	DefaultLimit = 15
	// MaxLimit is the largest page the user listing will serve.
	MaxLimit = 50
)

// SortKey is one field+direction pair of the user listing's sort spec.
// Sorting happens in memory over the joined rows, not in the store.
type SortKey struct {
	Field      string
	Descending bool
}

// Query is the normalized filter/sort/page request for the user listing.
type Query struct {
	Page   int
	Limit  int
	Search string
	Sort   []SortKey
}

// ParseQuery normalizes raw URL query parameters into a Query. Defaults are
// applied here; bounds are enforced by the service.
func ParseQuery(values url.Values) Query {
	return Query{
		Page:   parsePositiveInt(values.Get("page"), DefaultPage),
		Limit:  parsePositiveInt(values.Get("limit"), DefaultLimit),
		Search: values.Get("search"),
		Sort:   parseSort(values.Get("sort")),
	}
}

func parsePositiveInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// parseSort parses a comma-separated list of field:direction pairs. An
// absent spec means the joined rows keep their natural order.
func parseSort(s string) []SortKey {
	if s == "" {
		return nil
	}

	var keys []SortKey
	for _, pair := range strings.Split(s, ",") {
		parts := strings.SplitN(pair, ":", 2)
		field := strings.TrimSpace(parts[0])
		if field == "" {
			continue
		}
		desc := true
		if len(parts) == 2 && strings.TrimSpace(parts[1]) == "asc" {
			desc = false
		}
		keys = append(keys, SortKey{Field: field, Descending: desc})
	}
	return keys
}

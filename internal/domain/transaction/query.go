package transaction

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPage is used when the page parameter is absent or malformed.
	DefaultPage = 1
	// DefaultLimit is used when the limit parameter is absent or malformed.
	DefaultLimit = 10
	// MaxLimit is the largest page size the query engine will serve. The
	// parser does not clamp to it; out-of-range values are rejected later so
	// a malformed URL yields an empty result rather than a silently resized
	// page.
	MaxLimit = 50
)

// SortField is one field+direction pair of a sort specification.
type SortField struct {
	Field      string
	Descending bool
}

// Query is the normalized, validated representation of a client's
// filter/sort/page request. It is built per request from URL query
// parameters and never persisted.
type Query struct {
	Page        int
	Limit       int
	Search      string // matched against userId, case-insensitive substring
	AdminSearch string // matched against handledBy or betId
	Types       []string
	Sources     []string
	DateFrom    *time.Time // inclusive, start of calendar day
	DateTo      *time.Time // inclusive, end of calendar day
	Sort        []SortField
}

// ParseQuery normalizes raw URL query parameters into a Query. Every field
// arrives as an optional string; this parser applies safe defaults and leaves
// bounds enforcement to the query engine.
func ParseQuery(values url.Values) Query {
	q := Query{
		Page:        parsePositiveInt(values.Get("page"), DefaultPage),
		Limit:       parsePositiveInt(values.Get("limit"), DefaultLimit),
		Search:      values.Get("search"),
		AdminSearch: values.Get("adminSearch"),
		Types:       splitList(values.Get("filterType")),
		Sources:     splitList(values.Get("filterSource")),
		Sort:        parseSort(values.Get("sort")),
	}

	// Date bounds are both-or-neither: a single bound is ignored entirely.
	from, okFrom := parseDate(values.Get("dateFrom"))
	to, okTo := parseDate(values.Get("dateTo"))
	if okFrom && okTo {
		fromStart := startOfDay(from)
		toEnd := endOfDay(to)
		q.DateFrom = &fromStart
		q.DateTo = &toEnd
	}

	return q
}

// parsePositiveInt parses s as a positive integer, falling back to def when
// s is absent, malformed, or non-positive.
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

// splitList splits comma-separated input, dropping empty entries. An absent
// or empty value means no restriction on that facet.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseSort parses a comma-separated list of field:direction pairs. Unknown
// fields pass through as-is; the store layer rejects truly invalid ones.
// Direction defaults to descending when omitted or unrecognized. An absent
// spec sorts by creation time, newest first.
func parseSort(s string) []SortField {
	if s == "" {
		return []SortField{{Field: "createdAt", Descending: true}}
	}

	var fields []SortField
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
		fields = append(fields, SortField{Field: field, Descending: desc})
	}

	if len(fields) == 0 {
		return []SortField{{Field: "createdAt", Descending: true}}
	}
	return fields
}

// parseDate accepts calendar dates or full timestamps, mirroring the loose
// date strings the UI serializes into the URL.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

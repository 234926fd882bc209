package transaction

import (
	"context"
	"fmt"
	"time"
)

// Filter describes the set of ledger records a query operates on. All active
// predicates combine with logical AND. Search terms are carried verbatim; the
// store implementation is responsible for escaping them before any pattern
// match.
type Filter struct {
	GuildID     string
	Search      string
	AdminSearch string
	Types       []string
	Sources     []string
	DateFrom    *time.Time
	DateTo      *time.Time
}

// NewFilter builds the store filter for a guild-scoped query descriptor.
func NewFilter(guildID string, q Query) Filter {
	return Filter{
		GuildID:     guildID,
		Search:      q.Search,
		AdminSearch: q.AdminSearch,
		Types:       q.Types,
		Sources:     q.Sources,
		DateFrom:    q.DateFrom,
		DateTo:      q.DateTo,
	}
}

// ErrNotFound is returned when a delete targets a transaction that does not
// exist.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("transaction %s not found", e.ID)
}

// Repository defines the persistence operations the query and count engines
// need. Implementations execute against the document store; counts and
// aggregates always cover the entire filtered set, never a page slice.
type Repository interface {
	// Search returns one page of matching records in sort order.
	Search(ctx context.Context, f Filter, sort []SortField, skip, limit int64) ([]*Transaction, error)

	// Count returns the number of records matching f, ignoring pagination.
	Count(ctx context.Context, f Filter) (int64, error)

	// Totals computes the cash-flow and game-PnL aggregates over every
	// record matching f.
	Totals(ctx context.Context, f Filter) (*Totals, error)

	// CountByType returns per-type record counts over the filtered set.
	// Absent buckets are simply missing; callers densify.
	CountByType(ctx context.Context, f Filter) (map[Type]int64, error)

	// CountBySource returns per-source record counts over the filtered set.
	CountBySource(ctx context.Context, f Filter) (map[Source]int64, error)

	// NetProfitByUser computes each listed user's gambling net profit over
	// the guild's whole ledger: wins and bonuses count toward the user,
	// bets against. Users with no gameplay records are absent from the map.
	NetProfitByUser(ctx context.Context, guildID string, userIDs []string) (map[string]int64, error)

	// Delete removes a record by id within a guild scope.
	// Returns ErrNotFound when no such record exists.
	Delete(ctx context.Context, guildID, id string) error
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/casino-dashboard/internal/auth"
	"github.com/casino-dashboard/internal/domain/transaction"
	"github.com/casino-dashboard/internal/domain/user"
	"github.com/casino-dashboard/internal/roster"
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userRepo        user.Repository
	transactionRepo transaction.Repository
	resolver        roster.Resolver
	logger          *slog.Logger
}

// NewUserService creates a new user listing service
func NewUserService(logger *slog.Logger, userRepo user.Repository, transactionRepo transaction.Repository, resolver roster.Resolver) UserService {
	return &UserServiceImpl{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		resolver:        resolver,
		logger:          logger,
	}
}

func emptyUserPage() *UserPage {
	return &UserPage{Users: []MemberStatus{}}
}

// GetUsers builds the member listing: every registered user of the guild plus
// every roster member who never registered, joined with per-user ledger net
// profit, then searched, sorted, and paginated in memory.
func (s *UserServiceImpl) GetUsers(ctx context.Context, guildID string, sess auth.Session, q user.Query) (*UserPage, error) {
	if !sess.Authenticated() {
		return emptyUserPage(), nil
	}
	if q.Page < 1 || q.Limit < 1 || q.Limit > user.MaxLimit {
		return emptyUserPage(), nil
	}

	registered, err := s.userRepo.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}

	members, err := s.resolver.GuildMembers(ctx, guildID)
	if err != nil {
		if errors.Is(err, roster.ErrUnavailable) {
			// Fail closed: balances without resolvable identities are worse
			// than no listing.
			s.logger.Warn("roster unavailable, returning empty user listing", "guild_id", guildID)
			return emptyUserPage(), nil
		}
		return nil, err
	}

	userIDs := make([]string, 0, len(registered))
	for _, u := range registered {
		userIDs = append(userIDs, u.UserID)
	}
	netProfit, err := s.transactionRepo.NetProfitByUser(ctx, guildID, userIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]roster.Member, len(members))
	for _, m := range members {
		byID[m.UserID] = m
	}

	// Registered users first, in store order, then roster members who never
	// registered.
	rows := make([]MemberStatus, 0, len(registered)+len(members))
	seen := make(map[string]bool, len(registered))
	for _, u := range registered {
		seen[u.UserID] = true
		registeredAt := u.CreatedAt
		row := MemberStatus{
			UserID:       u.UserID,
			Username:     "Unknown",
			Avatar:       roster.DefaultAvatarURL,
			Registered:   true,
			RegisteredAt: &registeredAt,
			Balance:      u.Balance,
			NetProfit:    netProfit[u.UserID],
		}
		if m, ok := byID[u.UserID]; ok {
			row.Username = m.Username
			row.Nickname = m.Nickname
			row.Avatar = m.AvatarURL
		}
		rows = append(rows, row)
	}
	for _, m := range members {
		if seen[m.UserID] {
			continue
		}
		rows = append(rows, MemberStatus{
			UserID:   m.UserID,
			Username: m.Username,
			Nickname: m.Nickname,
			Avatar:   m.AvatarURL,
		})
	}

	rows = filterUsers(rows, q.Search)
	sortUsers(rows, q.Sort)

	page := &UserPage{
		Users: []MemberStatus{},
		Total: len(rows),
	}
	start := (q.Page - 1) * q.Limit
	if start < len(rows) {
		end := start + q.Limit
		if end > len(rows) {
			end = len(rows)
		}
		page.Users = rows[start:end]
	}

	return page, nil
}

// filterUsers keeps rows whose id, username, or nickname contains the search
// term, case-insensitively.
func filterUsers(rows []MemberStatus, search string) []MemberStatus {
	if search == "" {
		return rows
	}
	term := strings.ToLower(search)

	filtered := rows[:0]
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.UserID), term) ||
			strings.Contains(strings.ToLower(row.Username), term) ||
			(row.Nickname != nil && strings.Contains(strings.ToLower(*row.Nickname), term)) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// sortUsers applies the multi-key sort spec. Keys are applied last-first with
// a stable sort so the first key dominates. Rows without a value for a key
// sort after rows with one, whatever the direction.
func sortUsers(rows []MemberStatus, keys []user.SortKey) {
	for i := len(keys) - 1; i >= 0; i-- {
		key := keys[i]
		sort.SliceStable(rows, func(a, b int) bool {
			aNull := fieldIsNull(rows[a], key.Field)
			bNull := fieldIsNull(rows[b], key.Field)
			if aNull || bNull {
				return !aNull && bNull
			}
			cmp := compareField(rows[a], rows[b], key.Field)
			if key.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
	}
}

// fieldIsNull reports whether the row carries no value for the sort field.
func fieldIsNull(row MemberStatus, field string) bool {
	switch field {
	case "nickname":
		return row.Nickname == nil
	case "registeredAt":
		return row.RegisteredAt == nil
	}
	return false
}

// compareField orders two rows by one field; both rows are known non-null for
// it. Unknown fields compare equal, leaving the order untouched.
func compareField(a, b MemberStatus, field string) int {
	switch field {
	case "userId":
		return strings.Compare(a.UserID, b.UserID)
	case "username":
		return strings.Compare(strings.ToLower(a.Username), strings.ToLower(b.Username))
	case "nickname":
		return strings.Compare(strings.ToLower(*a.Nickname), strings.ToLower(*b.Nickname))
	case "balance":
		return compareInt64(a.Balance, b.Balance)
	case "netProfit":
		return compareInt64(a.NetProfit, b.NetProfit)
	case "registered":
		return compareBool(a.Registered, b.Registered)
	case "registeredAt":
		return a.RegisteredAt.Compare(*b.RegisteredAt)
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case !a && b:
		return -1
	case a && !b:
		return 1
	}
	return 0
}

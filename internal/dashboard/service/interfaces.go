package service

import (
	"context"
	"errors"
	"time"

	"github.com/casino-dashboard/internal/auth"
	"github.com/casino-dashboard/internal/domain/guild"
	"github.com/casino-dashboard/internal/domain/transaction"
	"github.com/casino-dashboard/internal/domain/user"
)

// ErrUnauthorized is returned by operations that refuse to run without a
// session credential (settings reads/writes; the query engine instead
// degrades to an empty result).
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when the caller is authenticated but lacks the
// guild permission an operation requires.
var ErrForbidden = errors.New("forbidden")

// Row is a display-ready transaction: the raw ledger record joined with
// resolved roster identities, with explicit fallbacks when a user id has no
// roster match.
type Row struct {
	ID                string                 `json:"id"`
	UserID            string                 `json:"userId"`
	Username          string                 `json:"username"`
	Nickname          *string                `json:"nickname"`
	Avatar            string                 `json:"avatar"`
	Type              transaction.Type       `json:"type"`
	Meta              map[string]interface{} `json:"meta,omitempty"`
	Amount            int64                  `json:"amount"`
	Source            transaction.Source     `json:"source"`
	CreatedAt         time.Time              `json:"createdAt"`
	BetID             string                 `json:"betId,omitempty"`
	HandledBy         string                 `json:"handledBy,omitempty"`
	HandledByUsername string                 `json:"handledByUsername,omitempty"`
}

// TransactionPage is the query engine's result: one page of joined rows plus
// the whole-set count and aggregates.
type TransactionPage struct {
	Transactions []Row `json:"transactions"`
	Total        int64 `json:"total"`
	GamePnL      int64 `json:"gamePnL"`
	CashFlow     int64 `json:"cashFlow"`
}

// DeleteResult reports the outcome of a transaction delete as data rather
// than an error; a missing record is an expected condition.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Permissions describes what the session's user may do in a guild.
type Permissions struct {
	IsAdmin     bool `json:"isAdmin"`
	IsManager   bool `json:"isManager"`
	RateLimited bool `json:"rateLimited,omitempty"`
}

// AccessibleGuild is one entry of the guild picker: a guild the session's
// user may manage through the dashboard.
type AccessibleGuild struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Icon    string `json:"icon,omitempty"`
	Owner   bool   `json:"owner"`
	IsAdmin bool   `json:"isAdmin"`
}

// MemberStatus is one row of the member listing: a roster identity joined
// with the user's registration record and ledger net profit. Unregistered
// members carry a zero balance and no registration date.
type MemberStatus struct {
	UserID       string     `json:"userId"`
	Username     string     `json:"username"`
	Nickname     *string    `json:"nickname"`
	Avatar       string     `json:"avatar"`
	Registered   bool       `json:"registered"`
	RegisteredAt *time.Time `json:"registeredAt,omitempty"`
	Balance      int64      `json:"balance"`
	NetProfit    int64      `json:"netProfit"`
}

// UserPage is one page of the member listing plus the post-filter total.
type UserPage struct {
	Users []MemberStatus `json:"users"`
	Total int            `json:"total"`
}

// VipRoomRow is one row of the VIP room listing: the room record joined with
// the owner's roster identity and the channel's current name.
type VipRoomRow struct {
	OwnerID     string    `json:"ownerId"`
	GuildID     string    `json:"guildId"`
	ChannelID   string    `json:"channelId"`
	ChannelName string    `json:"channelName"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
	Username    string    `json:"username"`
	Nickname    *string   `json:"nickname"`
	Avatar      string    `json:"avatar"`
}

// TransactionService is the transaction ledger query engine exposed to the
// HTTP layer.
type TransactionService interface {
	// GetTransactions executes the filtered, sorted, paginated ledger query
	// and joins the page against the guild roster. Unauthenticated sessions
	// and out-of-bounds pagination yield an empty page with a nil error.
	GetTransactions(ctx context.Context, guildID string, sess auth.Session, q transaction.Query) (*TransactionPage, error)

	// GetTransactionCounts computes dense per-type and per-source counts
	// over the filtered set, independent of pagination.
	GetTransactionCounts(ctx context.Context, guildID string, sess auth.Session, q transaction.Query) (*transaction.FacetCounts, error)

	// DeleteTransaction removes one record. Requires manager or admin
	// permission for the guild.
	DeleteTransaction(ctx context.Context, guildID string, sess auth.Session, id string) (*DeleteResult, error)
}

// PermissionService resolves a session's standing within a guild.
type PermissionService interface {
	// GetPermissions reports admin (Discord ADMINISTRATOR bit) and manager
	// (configured manager role) status. Rate-limit rejections from Discord
	// set RateLimited instead of failing.
	GetPermissions(ctx context.Context, guildID string, sess auth.Session) (*Permissions, error)

	// AccessibleGuilds lists the guilds the session's user may manage:
	// admin guilds plus configured guilds where they hold the manager role.
	AccessibleGuilds(ctx context.Context, sess auth.Session) ([]AccessibleGuild, error)
}

// UserService produces the member listing: roster joined with registration
// records and per-user ledger net profit.
type UserService interface {
	// GetUsers returns one searched, sorted, paginated page of member rows.
	// Unauthenticated sessions, out-of-bounds pagination, and roster outages
	// yield an empty page with a nil error.
	GetUsers(ctx context.Context, guildID string, sess auth.Session, q user.Query) (*UserPage, error)
}

// VipService lists a guild's VIP rooms joined with owner identities and
// channel names.
type VipService interface {
	// GetVips returns every VIP room of a guild. Unauthenticated sessions
	// yield an empty listing with a nil error; roster or channel lookup
	// failures degrade to fallback identities rather than erroring.
	GetVips(ctx context.Context, guildID string, sess auth.Session) ([]VipRoomRow, error)
}

// SettingsService reads and replaces guild configuration documents.
type SettingsService interface {
	// GetConfig returns the guild's configuration, or nil when none exists.
	GetConfig(ctx context.Context, guildID string, sess auth.Session) (*guild.Config, error)

	// ReplaceConfig upserts the guild's configuration. Admin only.
	ReplaceConfig(ctx context.Context, guildID string, sess auth.Session, cfg *guild.Config) error
}

// Package roster defines the externally-owned guild member roster: the
// normalized member identity and the resolver contract the query engine joins
// against.
package roster

import (
	"context"
	"errors"
)

// DefaultAvatarURL is the placeholder shown when a member has no avatar or a
// transaction references a user the roster cannot resolve.
const DefaultAvatarURL = "/default-avatar.jpg"

// ErrUnavailable signals that the roster service could not be reached
// (network, authorization, rate limit). It is distinct from a guild that
// legitimately has zero human members, which resolves to an empty slice with
// a nil error.
var ErrUnavailable = errors.New("roster unavailable")

// Member is a normalized human guild member. Automated accounts are filtered
// out before a Member is ever produced.
type Member struct {
	UserID    string  `json:"userId"`
	Username  string  `json:"username"`
	Nickname  *string `json:"nickname"`
	AvatarURL string  `json:"avatarUrl"`
}

// Resolver returns the live member roster for a guild. Implementations cache
// aggressively; the roster is a join target, never a source of authority.
type Resolver interface {
	GuildMembers(ctx context.Context, guildID string) ([]Member, error)
}

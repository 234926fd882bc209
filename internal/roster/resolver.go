package roster

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/casino-dashboard/internal/cache"
)

// MemberLister is the slice of the Discord client the resolver needs.
type MemberLister interface {
	GuildMembers(ctx context.Context, guildID string) ([]*discordgo.Member, error)
}

// CachedResolver resolves guild member rosters through a short-lived TTL
// cache. Cache misses fetch one page of members from Discord, drop automated
// accounts, and normalize avatars. Upstream failures surface as
// ErrUnavailable so callers can fail closed without mistaking a legitimately
// empty guild for an outage.
type CachedResolver struct {
	client MemberLister
	store  *cache.Store[[]Member]
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedResolver creates a resolver with an explicitly constructed cache.
func NewCachedResolver(logger *slog.Logger, client MemberLister, store *cache.Store[[]Member], ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		client: client,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// GuildMembers returns the human member roster for a guild, from cache when
// fresh. A successful fetch always overwrites the cached entry, extending its
// expiry window.
func (r *CachedResolver) GuildMembers(ctx context.Context, guildID string) ([]Member, error) {
	if members, ok := r.store.Get(guildID); ok {
		return members, nil
	}

	raw, err := r.client.GuildMembers(ctx, guildID)
	if err != nil {
		r.logger.Warn("guild member fetch failed",
			"guild_id", guildID,
			"error", err)
		return nil, ErrUnavailable
	}

	members := normalizeMembers(raw)
	r.store.Set(guildID, members, r.ttl)

	return members, nil
}

// normalizeMembers filters out bot accounts and maps the Discord member shape
// to the roster entry the dashboard joins against.
func normalizeMembers(raw []*discordgo.Member) []Member {
	members := make([]Member, 0, len(raw))
	for _, m := range raw {
		if m.User == nil || m.User.Bot {
			continue
		}

		var nickname *string
		if m.Nick != "" {
			nick := m.Nick
			nickname = &nick
		}

		avatarURL := DefaultAvatarURL
		if m.User.Avatar != "" {
			avatarURL = m.User.AvatarURL("128")
		}

		members = append(members, Member{
			UserID:    m.User.ID,
			Username:  m.User.Username,
			Nickname:  nickname,
			AvatarURL: avatarURL,
		})
	}
	return members
}

package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/casino-dashboard/internal/auth"
	"github.com/casino-dashboard/internal/domain/vip"
	"github.com/casino-dashboard/internal/roster"
)

// ChannelLister is the slice of the Discord client the VIP listing needs.
type ChannelLister interface {
	GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error)
}

// VipServiceImpl implements the VipService interface
type VipServiceImpl struct {
	vipRepo  vip.Repository
	resolver roster.Resolver
	channels ChannelLister
	logger   *slog.Logger
}

// NewVipService creates a new VIP room listing service
func NewVipService(logger *slog.Logger, vipRepo vip.Repository, resolver roster.Resolver, channels ChannelLister) VipService {
	return &VipServiceImpl{
		vipRepo:  vipRepo,
		resolver: resolver,
		channels: channels,
		logger:   logger,
	}
}

// GetVips lists a guild's VIP rooms joined with owner identities and current
// channel names. The room records are authoritative; Discord lookups only
// decorate them, so their failures degrade to fallbacks instead of erroring.
func (s *VipServiceImpl) GetVips(ctx context.Context, guildID string, sess auth.Session) ([]VipRoomRow, error) {
	if !sess.Authenticated() {
		return []VipRoomRow{}, nil
	}

	rooms, err := s.vipRepo.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return []VipRoomRow{}, nil
	}

	byID := make(map[string]roster.Member)
	members, err := s.resolver.GuildMembers(ctx, guildID)
	if err != nil {
		if !errors.Is(err, roster.ErrUnavailable) {
			return nil, err
		}
		s.logger.Warn("roster unavailable, listing VIP rooms with fallback identities", "guild_id", guildID)
	} else {
		for _, m := range members {
			byID[m.UserID] = m
		}
	}

	channelNames := make(map[string]string)
	channels, err := s.channels.GuildChannels(ctx, guildID)
	if err != nil {
		s.logger.Warn("guild channel fetch failed",
			"guild_id", guildID,
			"error", err)
	} else {
		for _, ch := range channels {
			channelNames[ch.ID] = ch.Name
		}
	}

	rows := make([]VipRoomRow, 0, len(rooms))
	for _, room := range rooms {
		row := VipRoomRow{
			OwnerID:     room.OwnerID,
			GuildID:     room.GuildID,
			ChannelID:   room.ChannelID,
			ChannelName: "Unknown",
			ExpiresAt:   room.ExpiresAt,
			CreatedAt:   room.CreatedAt,
			Username:    "Unknown",
			Avatar:      roster.DefaultAvatarURL,
		}
		if m, ok := byID[room.OwnerID]; ok {
			row.Username = m.Username
			row.Nickname = m.Nickname
			row.Avatar = m.AvatarURL
		}
		if name, ok := channelNames[room.ChannelID]; ok {
			row.ChannelName = name
		}
		rows = append(rows, row)
	}

	return rows, nil
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/casino-dashboard/internal/auth"
	"github.com/casino-dashboard/internal/cache"
	"github.com/casino-dashboard/internal/domain/guild"
	"github.com/casino-dashboard/internal/platform/discord"
)

// DiscordAPI is the slice of the Discord client the permission service needs.
type DiscordAPI interface {
	UserGuilds(ctx context.Context, accessToken string) ([]*discordgo.UserGuild, error)
	GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error)
}

// PermissionServiceImpl implements the PermissionService interface. Admin
// status comes from the ADMINISTRATOR bit on the user's own guild list
// (bearer credential); manager status from the member's roles (bot
// credential) against the configured manager role.
type PermissionServiceImpl struct {
	discord     DiscordAPI
	guildRepo   guild.Repository
	rolesCache  *cache.Store[[]string]
	rolesTTL    time.Duration
	guildsCache *cache.Store[[]*discordgo.UserGuild]
	guildsTTL   time.Duration
	logger      *slog.Logger
}

// NewPermissionService creates a new permission service
func NewPermissionService(
	logger *slog.Logger,
	api DiscordAPI,
	guildRepo guild.Repository,
	rolesCache *cache.Store[[]string],
	rolesTTL time.Duration,
	guildsCache *cache.Store[[]*discordgo.UserGuild],
	guildsTTL time.Duration,
) PermissionService {
	return &PermissionServiceImpl{
		discord:     api,
		guildRepo:   guildRepo,
		rolesCache:  rolesCache,
		rolesTTL:    rolesTTL,
		guildsCache: guildsCache,
		guildsTTL:   guildsTTL,
		logger:      logger,
	}
}

// GetPermissions reports the session user's standing in a guild. A Discord
// rate-limit rejection sets RateLimited and returns whatever was resolved so
// far; other Discord failures degrade to no permissions rather than erroring.
func (s *PermissionServiceImpl) GetPermissions(ctx context.Context, guildID string, sess auth.Session) (*Permissions, error) {
	perms := &Permissions{}

	if !sess.Authenticated() || sess.UserID == "" {
		return perms, nil
	}

	userGuilds, err := s.userGuilds(ctx, sess)
	if err != nil {
		if errors.Is(err, discord.ErrRateLimited) {
			perms.RateLimited = true
			return perms, nil
		}
		s.logger.Error("Failed to fetch user guilds", "guild_id", guildID, "error", err)
		return perms, nil
	}

	for _, g := range userGuilds {
		if g.ID == guildID {
			perms.IsAdmin = g.Permissions&discordgo.PermissionAdministrator != 0
			break
		}
	}

	cfg, err := s.guildRepo.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if cfg == nil || cfg.ManagerRoleID == "" {
		return perms, nil
	}

	roles, err := s.memberRoles(ctx, guildID, sess.UserID)
	if err != nil {
		if errors.Is(err, discord.ErrRateLimited) {
			perms.RateLimited = true
			return perms, nil
		}
		s.logger.Error("Failed to fetch member roles",
			"guild_id", guildID,
			"user_id", sess.UserID,
			"error", err)
		return perms, nil
	}

	for _, role := range roles {
		if role == cfg.ManagerRoleID {
			perms.IsManager = true
			break
		}
	}

	return perms, nil
}

// AccessibleGuilds lists the guilds the dashboard should offer the session's
// user: every guild where they hold the ADMINISTRATOR bit, plus configured
// guilds where they hold the manager role. Guilds whose role lookup fails are
// skipped rather than failing the whole listing.
func (s *PermissionServiceImpl) AccessibleGuilds(ctx context.Context, sess auth.Session) ([]AccessibleGuild, error) {
	if !sess.Authenticated() || sess.UserID == "" {
		return nil, ErrUnauthorized
	}

	userGuilds, err := s.userGuilds(ctx, sess)
	if err != nil {
		return nil, err
	}

	configured, err := s.guildRepo.ListWithManagerRole(ctx)
	if err != nil {
		return nil, err
	}
	managerRoles := make(map[string]string, len(configured))
	for _, cfg := range configured {
		managerRoles[cfg.GuildID] = cfg.ManagerRoleID
	}

	accessible := make([]AccessibleGuild, 0, len(userGuilds))
	for _, g := range userGuilds {
		isAdmin := g.Permissions&discordgo.PermissionAdministrator != 0
		include := isAdmin

		if managerRole, ok := managerRoles[g.ID]; ok && !include {
			roles, err := s.memberRoles(ctx, g.ID, sess.UserID)
			if err != nil {
				if errors.Is(err, discord.ErrRateLimited) {
					return nil, err
				}
				// Membership lookup can legitimately fail when the bot is
				// not in the guild; skip it rather than fail the listing.
				s.logger.Warn("Skipping guild with failed role lookup",
					"guild_id", g.ID,
					"user_id", sess.UserID,
					"error", err)
				continue
			}
			for _, role := range roles {
				if role == managerRole {
					include = true
					break
				}
			}
		}

		if include {
			accessible = append(accessible, AccessibleGuild{
				ID:      g.ID,
				Name:    g.Name,
				Icon:    g.Icon,
				Owner:   g.Owner,
				IsAdmin: isAdmin,
			})
		}
	}

	return accessible, nil
}

// userGuilds returns the session user's guild list, cached per user id so a
// dashboard page issuing several permission-checked requests costs one
// Discord call.
func (s *PermissionServiceImpl) userGuilds(ctx context.Context, sess auth.Session) ([]*discordgo.UserGuild, error) {
	if guilds, ok := s.guildsCache.Get(sess.UserID); ok {
		return guilds, nil
	}

	guilds, err := s.discord.UserGuilds(ctx, sess.AccessToken)
	if err != nil {
		return nil, err
	}

	s.guildsCache.Set(sess.UserID, guilds, s.guildsTTL)
	return guilds, nil
}

// memberRoles returns the member's role ids, cached per guild+user.
func (s *PermissionServiceImpl) memberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	key := guildID + ":" + userID
	if roles, ok := s.rolesCache.Get(key); ok {
		return roles, nil
	}

	member, err := s.discord.GuildMember(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}

	s.rolesCache.Set(key, member.Roles, s.rolesTTL)
	return member.Roles, nil
}

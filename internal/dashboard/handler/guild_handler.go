package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"

	"github.com/casino-dashboard/internal/dashboard/middleware"
	"github.com/casino-dashboard/internal/dashboard/service"
	"github.com/casino-dashboard/internal/domain/guild"
	"github.com/casino-dashboard/internal/platform/discord"
	"github.com/casino-dashboard/internal/roster"
)

// GuildFetcher is the slice of the Discord client the guild header needs.
type GuildFetcher interface {
	Guild(ctx context.Context, guildID string) (*discordgo.Guild, error)
}

// GuildHandler handles guild-scoped requests that are not ledger queries:
// the guild picker, the member roster, the caller's permissions, and
// configuration CRUD.
type GuildHandler struct {
	resolver          roster.Resolver
	guilds            GuildFetcher
	permissionService service.PermissionService
	settingsService   service.SettingsService
	logger            *slog.Logger
}

// NewGuildHandler creates a new guild handler
func NewGuildHandler(logger *slog.Logger, resolver roster.Resolver, guilds GuildFetcher, permissionService service.PermissionService, settingsService service.SettingsService) *GuildHandler {
	return &GuildHandler{
		resolver:          resolver,
		guilds:            guilds,
		permissionService: permissionService,
		settingsService:   settingsService,
		logger:            logger,
	}
}

// Guilds lists the guilds the session's user may manage, for the dashboard's
// guild picker.
func (h *GuildHandler) Guilds(c *gin.Context) {
	sess := middleware.GetSession(c)

	guilds, err := h.permissionService.AccessibleGuilds(c.Request.Context(), sess)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			RespondUnauthorized(c, "")
		case errors.Is(err, discord.ErrRateLimited):
			RespondServiceUnavailable(c, "")
		default:
			h.logger.Error("Failed to list accessible guilds", "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, guilds)
}

// Info serves the guild's display name for the dashboard header. A failed
// lookup degrades to a null name rather than an error; the header simply
// falls back to the guild id.
func (h *GuildHandler) Info(c *gin.Context) {
	guildID := c.Param("guildId")
	sess := middleware.GetSession(c)

	if !sess.Authenticated() {
		RespondUnauthorized(c, "")
		return
	}

	var name *string
	g, err := h.guilds.Guild(c.Request.Context(), guildID)
	if err != nil {
		h.logger.Warn("Failed to fetch guild", "guild_id", guildID, "error", err)
	} else {
		name = &g.Name
	}

	RespondOK(c, gin.H{"id": guildID, "name": name})
}

// Members serves the guild's human member roster for the UI's user pickers.
func (h *GuildHandler) Members(c *gin.Context) {
	guildID := c.Param("guildId")
	sess := middleware.GetSession(c)

	if !sess.Authenticated() {
		RespondUnauthorized(c, "")
		return
	}

	members, err := h.resolver.GuildMembers(c.Request.Context(), guildID)
	if err != nil {
		if errors.Is(err, roster.ErrUnavailable) {
			RespondServiceUnavailable(c, "Member roster temporarily unavailable")
			return
		}
		h.logger.Error("Failed to resolve guild members", "guild_id", guildID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, members)
}

// Permissions reports the session user's admin/manager standing in a guild.
func (h *GuildHandler) Permissions(c *gin.Context) {
	guildID := c.Param("guildId")
	sess := middleware.GetSession(c)

	perms, err := h.permissionService.GetPermissions(c.Request.Context(), guildID, sess)
	if err != nil {
		h.logger.Error("Failed to get permissions", "guild_id", guildID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, perms)
}

// GetConfig serves the guild's configuration document.
func (h *GuildHandler) GetConfig(c *gin.Context) {
	guildID := c.Param("guildId")
	sess := middleware.GetSession(c)

	cfg, err := h.settingsService.GetConfig(c.Request.Context(), guildID, sess)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			RespondUnauthorized(c, "")
			return
		}
		h.logger.Error("Failed to get guild configuration", "guild_id", guildID, "error", err)
		RespondInternalError(c)
		return
	}
	if cfg == nil {
		RespondNotFound(c, "Guild configuration not found")
		return
	}

	RespondOK(c, cfg)
}

// ReplaceConfig replaces the guild's configuration document. Admin only.
func (h *GuildHandler) ReplaceConfig(c *gin.Context) {
	guildID := c.Param("guildId")
	sess := middleware.GetSession(c)

	var cfg guild.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		h.logger.Error("Invalid configuration body", "guild_id", guildID, "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.settingsService.ReplaceConfig(c.Request.Context(), guildID, sess, &cfg); err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			RespondUnauthorized(c, "")
		case errors.Is(err, service.ErrForbidden):
			RespondForbidden(c, "Admin permission required")
		default:
			h.logger.Error("Failed to replace guild configuration", "guild_id", guildID, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, gin.H{"success": true})
}

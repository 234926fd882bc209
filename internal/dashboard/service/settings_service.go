package service

import (
	"context"
	"log/slog"

	"github.com/casino-dashboard/internal/auth"
	"github.com/casino-dashboard/internal/domain/guild"
)

// SettingsServiceImpl implements the SettingsService interface. Configuration
// documents are read and replaced whole; there is no partial update.
type SettingsServiceImpl struct {
	guildRepo   guild.Repository
	permissions PermissionService
	logger      *slog.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(logger *slog.Logger, guildRepo guild.Repository, permissions PermissionService) SettingsService {
	return &SettingsServiceImpl{
		guildRepo:   guildRepo,
		permissions: permissions,
		logger:      logger,
	}
}

// GetConfig returns the guild's configuration document, or nil when the
// guild has never been configured. Requires a session credential.
func (s *SettingsServiceImpl) GetConfig(ctx context.Context, guildID string, sess auth.Session) (*guild.Config, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthorized
	}

	return s.guildRepo.Get(ctx, guildID)
}

// ReplaceConfig upserts the guild's configuration. Only guild admins may
// change settings.
func (s *SettingsServiceImpl) ReplaceConfig(ctx context.Context, guildID string, sess auth.Session, cfg *guild.Config) error {
	if !sess.Authenticated() {
		return ErrUnauthorized
	}

	perms, err := s.permissions.GetPermissions(ctx, guildID, sess)
	if err != nil {
		return err
	}
	if !perms.IsAdmin {
		return ErrForbidden
	}

	cfg.GuildID = guildID
	if err := s.guildRepo.Replace(ctx, cfg); err != nil {
		return err
	}

	s.logger.Info("Guild configuration replaced",
		"guild_id", guildID,
		"updated_by", sess.UserID)
	return nil
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/casino-dashboard/internal/auth"
	"github.com/casino-dashboard/internal/cache"
	"github.com/casino-dashboard/internal/domain/guild"
	"github.com/casino-dashboard/internal/platform/discord"
)

type MockDiscordAPI struct {
	mock.Mock
}

func (m *MockDiscordAPI) UserGuilds(ctx context.Context, accessToken string) ([]*discordgo.UserGuild, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*discordgo.UserGuild), args.Error(1)
}

func (m *MockDiscordAPI) GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Member), args.Error(1)
}

type MockGuildRepository struct {
	mock.Mock
}

func (m *MockGuildRepository) Get(ctx context.Context, guildID string) (*guild.Config, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*guild.Config), args.Error(1)
}

func (m *MockGuildRepository) ListWithManagerRole(ctx context.Context) ([]*guild.Config, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*guild.Config), args.Error(1)
}

func (m *MockGuildRepository) Replace(ctx context.Context, cfg *guild.Config) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func newPermissionService(api DiscordAPI, repo guild.Repository) PermissionService {
	return NewPermissionService(testLogger(), api, repo,
		cache.New[[]string](), time.Minute,
		cache.New[[]*discordgo.UserGuild](), time.Minute)
}

func TestGetPermissions_Unauthenticated(t *testing.T) {
	api := new(MockDiscordAPI)
	svc := newPermissionService(api, new(MockGuildRepository))

	perms, err := svc.GetPermissions(context.Background(), "guild-1", auth.Session{})

	require.NoError(t, err)
	assert.Equal(t, &Permissions{}, perms)
	api.AssertNotCalled(t, "UserGuilds")
}

func TestGetPermissions_AdminFromGuildList(t *testing.T) {
	api := new(MockDiscordAPI)
	api.On("UserGuilds", mock.Anything, "token").Return([]*discordgo.UserGuild{
		{ID: "guild-other", Permissions: 0},
		{ID: "guild-1", Permissions: discordgo.PermissionAdministrator},
	}, nil)

	repo := new(MockGuildRepository)
	repo.On("Get", mock.Anything, "guild-1").Return(nil, nil)

	svc := newPermissionService(api, repo)
	perms, err := svc.GetPermissions(context.Background(), "guild-1", authedSession())

	require.NoError(t, err)
	assert.True(t, perms.IsAdmin)
	assert.False(t, perms.IsManager)
}

func TestGetPermissions_AdminBitOnOtherGuildDoesNotCount(t *testing.T) {
	api := new(MockDiscordAPI)
	api.On("UserGuilds", mock.Anything, "token").Return([]*discordgo.UserGuild{
		{ID: "guild-other", Permissions: discordgo.PermissionAdministrator},
	}, nil)

	repo := new(MockGuildRepository)
	repo.On("Get", mock.Anything, "guild-1").Return(nil, nil)

	svc := newPermissionService(api, repo)
	perms, err := svc.GetPermissions(context.Background(), "guild-1", authedSession())

	require.NoError(t, err)
	assert.False(t, perms.IsAdmin)
}

func TestGetPermissions_ManagerFromConfiguredRole(t *testing.T) {
	api := new(MockDiscordAPI)
	api.On("UserGuilds", mock.Anything, "token").Return([]*discordgo.UserGuild{
		{ID: "guild-1", Permissions: 0},
	}, nil)
	api.On("GuildMember", mock.Anything, "guild-1", "user-1").Return(&discordgo.Member{
		Roles: []string{"role-a", "role-manager"},
	}, nil)

	repo := new(MockGuildRepository)
	repo.On("Get", mock.Anything, "guild-1").Return(&guild.Config{
		GuildID:       "guild-1",
		ManagerRoleID: "role-manager",
	}, nil)

	svc := newPermissionService(api, repo)
	perms, err := svc.GetPermissions(context.Background(), "guild-1", authedSession())

	require.NoError(t, err)
	assert.False(t, perms.IsAdmin)
	assert.True(t, perms.IsManager)
}

func TestGetPermissions_NoManagerRoleConfigured(t *testing.T) {
	api := new(MockDiscordAPI)
	api.On("UserGuilds", mock.Anything, "token").Return([]*discordgo.UserGuild{
		{ID: "guild-1", Permissions: 0},
	}, nil)

	repo := new(MockGuildRepository)
	repo.On("Get", mock.Anything, "guild-1").Return(&guild.Config{GuildID: "guild-1"}, nil)

	svc := newPermissionService(api, repo)
	perms, err := svc.GetPermissions(context.Background(), "guild-1", authedSession())

	require.NoError(t, err)
	assert.False(t, perms.IsManager)
	api.AssertNotCalled(t, "GuildMember")
}

func TestGetPermissions_RateLimitedFlagInsteadOfError(t *testing.T) {
	api := new(MockDiscordAPI)
	api.On("UserGuilds", mock.Anything, "token").Return(nil, discord.ErrRateLimited)

	svc := newPermissionService(api, new(MockGuildRepository))
	perms, err := svc.GetPermissions(context.Background(), "guild-1", authedSession())

	require.NoError(t, err)
	assert.True(t, perms.RateLimited)
	assert.False(t, perms.IsAdmin)
	assert.False(t, perms.IsManager)
}

func TestGetPermissions_RateLimitedRoleLookupKeepsAdmin(t *testing.T) {
	api := new(MockDiscordAPI)
	api.On("UserGuilds", mock.Anything, "token").Return([]*discordgo.UserGuild{
		{ID: "guild-1", Permissions: discordgo.PermissionAdministrator},
	}, nil)
	api.On("GuildMember", mock.Anything, "guild-1", "user-1").Return(nil, discord.ErrRateLimited)

	repo := new(MockGuildRepository)
	repo.On("Get", mock.Anything, "guild-1").Return(&guild.Config{
		GuildID:       "guild-1",
		ManagerRoleID: "role-manager",
	}, nil)

	svc := newPermissionService(api, repo)
	perms, err := svc.GetPermissions(context.Background(), "guild-1", authedSession())

	require.NoError(t, err)
	assert.True(t, perms.IsAdmin)
	assert.True(t, perms.RateLimited)
	assert.False(t, perms.IsManager)
}

func TestGetPermissions_DiscordFailureDegradesToNoPermissions(t *testing.T) {
	api := new(MockDiscordAPI)
	api.On("UserGuilds", mock.Anything, "token").Return(nil, errors.New("discord down"))

	svc := newPermissionService(api, new(MockGuildRepository))
	perms, err := svc.GetPermissions(context.Background(), "guild-1", authedSession())

	require.NoError(t, err)
	assert.Equal(t, &Permissions{}, perms)
}

func TestGetPermissions_StoreFailurePropagates(t *testing.T) {
	storeErr := errors.New("connection refused")

	api := new(MockDiscordAPI)
	api.On("UserGuilds", mock.Anything, "token").Return([]*discordgo.UserGuild{}, nil)

	repo := new(MockGuildRepository)
	repo.On("Get", mock.Anything, "guild-1").Return(nil, storeErr)

	svc := newPermissionService(api, repo)
	perms, err := svc.GetPermissions(context.Background(), "guild-1", authedSession())

	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, perms)
}

func TestGetPermissions_MemberRolesCached(t *testing.T) {
	api := new(MockDiscordAPI)
	api.On("UserGuilds", mock.Anything, "token").Return([]*discordgo.UserGuild{
		{ID: "guild-1", Permissions: 0},
	}, nil).Once()
	api.On("GuildMember", mock.Anything, "guild-1", "user-1").Return(&discordgo.Member{
		Roles: []string{"role-manager"},
	}, nil).Once()

	repo := new(MockGuildRepository)
	repo.On("Get", mock.Anything, "guild-1").Return(&guild.Config{
		GuildID:       "guild-1",
		ManagerRoleID: "role-manager",
	}, nil).Twice()

	svc := newPermissionService(api, repo)

	// Two permission checks, one role fetch.
	for i := 0; i < 2; i++ {
		perms, err := svc.GetPermissions(context.Background(), "guild-1", authedSession())
		require.NoError(t, err)
		assert.True(t, perms.IsManager)
	}

	api.AssertExpectations(t)
}

func TestGetPermissions_UserGuildsCached(t *testing.T) {
	api := new(MockDiscordAPI)
	api.On("UserGuilds", mock.Anything, "token").Return([]*discordgo.UserGuild{
		{ID: "guild-1", Permissions: discordgo.PermissionAdministrator},
	}, nil).Once()

	repo := new(MockGuildRepository)
	repo.On("Get", mock.Anything, "guild-1").Return(nil, nil).Twice()

	svc := newPermissionService(api, repo)

	// Two permission checks, one guild-list fetch.
	for i := 0; i < 2; i++ {
		perms, err := svc.GetPermissions(context.Background(), "guild-1", authedSession())
		require.NoError(t, err)
		assert.True(t, perms.IsAdmin)
	}

	api.AssertExpectations(t)
}

func TestAccessibleGuilds_Unauthenticated(t *testing.T) {
	api := new(MockDiscordAPI)
	svc := newPermissionService(api, new(MockGuildRepository))

	guilds, err := svc.AccessibleGuilds(context.Background(), auth.Session{})

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, guilds)
	api.AssertNotCalled(t, "UserGuilds")
}

func TestAccessibleGuilds_AdminGuildsOnly(t *testing.T) {
	api := new(MockDiscordAPI)
	api.On("UserGuilds", mock.Anything, "token").Return([]*discordgo.UserGuild{
		{ID: "guild-1", Name: "Casino", Icon: "icon-1", Owner: true, Permissions: discordgo.PermissionAdministrator},
		{ID: "guild-2", Name: "Other", Permissions: 0},
	}, nil)

	repo := new(MockGuildRepository)
	repo.On("ListWithManagerRole", mock.Anything).Return([]*guild.Config{}, nil)

	svc := newPermissionService(api, repo)
	guilds, err := svc.AccessibleGuilds(context.Background(), authedSession())

	require.NoError(t, err)
	assert.Equal(t, []AccessibleGuild{
		{ID: "guild-1", Name: "Casino", Icon: "icon-1", Owner: true, IsAdmin: true},
	}, guilds)
	api.AssertNotCalled(t, "GuildMember")
}

func TestAccessibleGuilds_ManagerRoleIncludesGuild(t *testing.T) {
	api := new(MockDiscordAPI)
	api.On("UserGuilds", mock.Anything, "token").Return([]*discordgo.UserGuild{
		{ID: "guild-1", Name: "Casino", Permissions: 0},
		{ID: "guild-2", Name: "Other", Permissions: 0},
	}, nil)
	api.On("GuildMember", mock.Anything, "guild-1", "user-1").Return(&discordgo.Member{
		Roles: []string{"role-manager"},
	}, nil)

	repo := new(MockGuildRepository)
	repo.On("ListWithManagerRole", mock.Anything).Return([]*guild.Config{
		{GuildID: "guild-1", ManagerRoleID: "role-manager"},
	}, nil)

	svc := newPermissionService(api, repo)
	guilds, err := svc.AccessibleGuilds(context.Background(), authedSession())

	require.NoError(t, err)
	require.Len(t, guilds, 1)
	assert.Equal(t, "guild-1", guilds[0].ID)
	assert.False(t, guilds[0].IsAdmin)
}

func TestAccessibleGuilds_FailedRoleLookupSkipsGuild(t *testing.T) {
	api := new(MockDiscordAPI)
	api.On("UserGuilds", mock.Anything, "token").Return([]*discordgo.UserGuild{
		{ID: "guild-1", Name: "Casino", Permissions: discordgo.PermissionAdministrator},
		{ID: "guild-2", Name: "Botless", Permissions: 0},
	}, nil)
	api.On("GuildMember", mock.Anything, "guild-2", "user-1").Return(nil, errors.New("missing access"))

	repo := new(MockGuildRepository)
	repo.On("ListWithManagerRole", mock.Anything).Return([]*guild.Config{
		{GuildID: "guild-2", ManagerRoleID: "role-manager"},
	}, nil)

	svc := newPermissionService(api, repo)
	guilds, err := svc.AccessibleGuilds(context.Background(), authedSession())

	require.NoError(t, err)
	require.Len(t, guilds, 1)
	assert.Equal(t, "guild-1", guilds[0].ID)
}

func TestAccessibleGuilds_RateLimitPropagates(t *testing.T) {
	api := new(MockDiscordAPI)
	api.On("UserGuilds", mock.Anything, "token").Return([]*discordgo.UserGuild{
		{ID: "guild-1", Permissions: 0},
	}, nil)
	api.On("GuildMember", mock.Anything, "guild-1", "user-1").Return(nil, discord.ErrRateLimited)

	repo := new(MockGuildRepository)
	repo.On("ListWithManagerRole", mock.Anything).Return([]*guild.Config{
		{GuildID: "guild-1", ManagerRoleID: "role-manager"},
	}, nil)

	svc := newPermissionService(api, repo)
	guilds, err := svc.AccessibleGuilds(context.Background(), authedSession())

	assert.ErrorIs(t, err, discord.ErrRateLimited)
	assert.Nil(t, guilds)
}

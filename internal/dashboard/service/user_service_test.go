package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/casino-dashboard/internal/auth"
	"github.com/casino-dashboard/internal/domain/user"
	"github.com/casino-dashboard/internal/roster"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) ListByGuild(ctx context.Context, guildID string) ([]*user.User, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func defaultUserQuery() user.Query {
	return user.Query{Page: user.DefaultPage, Limit: user.DefaultLimit}
}

func TestGetUsers_UnauthenticatedIsEmpty(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(testLogger(), userRepo, new(MockTransactionRepository), new(MockResolver))

	page, err := svc.GetUsers(context.Background(), "guild-1", auth.Session{}, defaultUserQuery())

	require.NoError(t, err)
	assert.Equal(t, &UserPage{Users: []MemberStatus{}}, page)
	userRepo.AssertNotCalled(t, "ListByGuild")
}

func TestGetUsers_PaginationBounds(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
	}{
		{"ZeroPage", 0, 10},
		{"ZeroLimit", 1, 0},
		{"LimitOverMax", 1, user.MaxLimit + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepository)
			svc := NewUserService(testLogger(), userRepo, new(MockTransactionRepository), new(MockResolver))

			q := user.Query{Page: tt.page, Limit: tt.limit}
			page, err := svc.GetUsers(context.Background(), "guild-1", authedSession(), q)

			require.NoError(t, err)
			assert.Equal(t, &UserPage{Users: []MemberStatus{}}, page)
			userRepo.AssertNotCalled(t, "ListByGuild")
		})
	}
}

func TestGetUsers_JoinsRegistrationRosterAndLedger(t *testing.T) {
	registeredAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	nick := "Ali"

	userRepo := new(MockUserRepository)
	userRepo.On("ListByGuild", mock.Anything, "guild-1").Return([]*user.User{
		{UserID: "user-known", GuildID: "guild-1", Balance: 500, CreatedAt: registeredAt},
		{UserID: "user-departed", GuildID: "guild-1", Balance: 80, CreatedAt: registeredAt},
	}, nil)

	txRepo := new(MockTransactionRepository)
	txRepo.On("NetProfitByUser", mock.Anything, "guild-1", []string{"user-known", "user-departed"}).
		Return(map[string]int64{"user-known": -120}, nil)

	resolver := new(MockResolver)
	resolver.On("GuildMembers", mock.Anything, "guild-1").Return([]roster.Member{
		{UserID: "user-known", Username: "alice", Nickname: &nick, AvatarURL: "https://cdn.example/alice.png"},
		{UserID: "user-visitor", Username: "bob", AvatarURL: "https://cdn.example/bob.png"},
	}, nil)

	svc := NewUserService(testLogger(), userRepo, txRepo, resolver)
	page, err := svc.GetUsers(context.Background(), "guild-1", authedSession(), defaultUserQuery())

	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Users, 3)

	// Registered users come first, in store order.
	known := page.Users[0]
	assert.Equal(t, "user-known", known.UserID)
	assert.Equal(t, "alice", known.Username)
	require.NotNil(t, known.Nickname)
	assert.Equal(t, "Ali", *known.Nickname)
	assert.True(t, known.Registered)
	require.NotNil(t, known.RegisteredAt)
	assert.Equal(t, registeredAt, *known.RegisteredAt)
	assert.Equal(t, int64(500), known.Balance)
	assert.Equal(t, int64(-120), known.NetProfit)

	// Registered but no longer in the roster: display fallbacks, real money.
	departed := page.Users[1]
	assert.Equal(t, "user-departed", departed.UserID)
	assert.Equal(t, "Unknown", departed.Username)
	assert.Nil(t, departed.Nickname)
	assert.Equal(t, roster.DefaultAvatarURL, departed.Avatar)
	assert.True(t, departed.Registered)
	assert.Equal(t, int64(80), departed.Balance)
	assert.Zero(t, departed.NetProfit)

	// In the roster but never registered: zero balance, no registration date.
	visitor := page.Users[2]
	assert.Equal(t, "user-visitor", visitor.UserID)
	assert.Equal(t, "bob", visitor.Username)
	assert.False(t, visitor.Registered)
	assert.Nil(t, visitor.RegisteredAt)
	assert.Zero(t, visitor.Balance)
}

func TestGetUsers_RosterOutageFailsClosed(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("ListByGuild", mock.Anything, "guild-1").Return([]*user.User{
		{UserID: "user-1", GuildID: "guild-1", Balance: 100},
	}, nil)

	resolver := new(MockResolver)
	resolver.On("GuildMembers", mock.Anything, "guild-1").Return(nil, roster.ErrUnavailable)

	svc := NewUserService(testLogger(), userRepo, new(MockTransactionRepository), resolver)
	page, err := svc.GetUsers(context.Background(), "guild-1", authedSession(), defaultUserQuery())

	require.NoError(t, err)
	assert.Equal(t, &UserPage{Users: []MemberStatus{}}, page)
}

func TestGetUsers_StoreFailurePropagates(t *testing.T) {
	storeErr := errors.New("connection refused")

	userRepo := new(MockUserRepository)
	userRepo.On("ListByGuild", mock.Anything, "guild-1").Return(nil, storeErr)

	svc := NewUserService(testLogger(), userRepo, new(MockTransactionRepository), new(MockResolver))
	page, err := svc.GetUsers(context.Background(), "guild-1", authedSession(), defaultUserQuery())

	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, page)
}

func TestGetUsers_SearchMatchesIDUsernameNickname(t *testing.T) {
	nick := "HighRoller"

	userRepo := new(MockUserRepository)
	userRepo.On("ListByGuild", mock.Anything, "guild-1").Return([]*user.User{}, nil)

	txRepo := new(MockTransactionRepository)
	txRepo.On("NetProfitByUser", mock.Anything, "guild-1", []string{}).Return(map[string]int64{}, nil)

	resolver := new(MockResolver)
	resolver.On("GuildMembers", mock.Anything, "guild-1").Return([]roster.Member{
		{UserID: "1001", Username: "alice"},
		{UserID: "1002", Username: "bob", Nickname: &nick},
		{UserID: "1003", Username: "carol"},
	}, nil)

	svc := NewUserService(testLogger(), userRepo, txRepo, resolver)

	q := defaultUserQuery()
	q.Search = "highroller"
	page, err := svc.GetUsers(context.Background(), "guild-1", authedSession(), q)

	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "bob", page.Users[0].Username)
}

func TestGetUsers_SortAppliesKeysInOrder(t *testing.T) {
	earlier := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	userRepo := new(MockUserRepository)
	userRepo.On("ListByGuild", mock.Anything, "guild-1").Return([]*user.User{
		{UserID: "user-a", GuildID: "guild-1", Balance: 100, CreatedAt: earlier},
		{UserID: "user-b", GuildID: "guild-1", Balance: 300, CreatedAt: later},
		{UserID: "user-c", GuildID: "guild-1", Balance: 300, CreatedAt: earlier},
	}, nil)

	txRepo := new(MockTransactionRepository)
	txRepo.On("NetProfitByUser", mock.Anything, "guild-1", mock.Anything).Return(map[string]int64{}, nil)

	resolver := new(MockResolver)
	resolver.On("GuildMembers", mock.Anything, "guild-1").Return([]roster.Member{}, nil)

	svc := NewUserService(testLogger(), userRepo, txRepo, resolver)

	q := defaultUserQuery()
	q.Sort = []user.SortKey{
		{Field: "balance", Descending: true},
		{Field: "registeredAt", Descending: false},
	}
	page, err := svc.GetUsers(context.Background(), "guild-1", authedSession(), q)

	require.NoError(t, err)
	require.Len(t, page.Users, 3)
	assert.Equal(t, "user-c", page.Users[0].UserID)
	assert.Equal(t, "user-b", page.Users[1].UserID)
	assert.Equal(t, "user-a", page.Users[2].UserID)
}

func TestGetUsers_SortPutsMissingValuesLast(t *testing.T) {
	registeredAt := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	userRepo := new(MockUserRepository)
	userRepo.On("ListByGuild", mock.Anything, "guild-1").Return([]*user.User{
		{UserID: "user-registered", GuildID: "guild-1", CreatedAt: registeredAt},
	}, nil)

	txRepo := new(MockTransactionRepository)
	txRepo.On("NetProfitByUser", mock.Anything, "guild-1", mock.Anything).Return(map[string]int64{}, nil)

	resolver := new(MockResolver)
	resolver.On("GuildMembers", mock.Anything, "guild-1").Return([]roster.Member{
		{UserID: "user-visitor", Username: "bob"},
	}, nil)

	svc := NewUserService(testLogger(), userRepo, txRepo, resolver)

	// The unregistered member has no registration date; it sorts last in both
	// directions.
	for _, descending := range []bool{true, false} {
		q := defaultUserQuery()
		q.Sort = []user.SortKey{{Field: "registeredAt", Descending: descending}}

		page, err := svc.GetUsers(context.Background(), "guild-1", authedSession(), q)

		require.NoError(t, err)
		require.Len(t, page.Users, 2)
		assert.Equal(t, "user-registered", page.Users[0].UserID)
		assert.Equal(t, "user-visitor", page.Users[1].UserID)
	}
}

func TestGetUsers_PaginatesAfterFiltering(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("ListByGuild", mock.Anything, "guild-1").Return([]*user.User{}, nil)

	txRepo := new(MockTransactionRepository)
	txRepo.On("NetProfitByUser", mock.Anything, "guild-1", []string{}).Return(map[string]int64{}, nil)

	members := []roster.Member{
		{UserID: "1", Username: "m1"},
		{UserID: "2", Username: "m2"},
		{UserID: "3", Username: "m3"},
		{UserID: "4", Username: "m4"},
		{UserID: "5", Username: "m5"},
	}
	resolver := new(MockResolver)
	resolver.On("GuildMembers", mock.Anything, "guild-1").Return(members, nil)

	svc := NewUserService(testLogger(), userRepo, txRepo, resolver)

	q := user.Query{Page: 2, Limit: 2}
	page, err := svc.GetUsers(context.Background(), "guild-1", authedSession(), q)

	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Users, 2)
	assert.Equal(t, "m3", page.Users[0].Username)
	assert.Equal(t, "m4", page.Users[1].Username)

	// A page past the end is empty but keeps the total.
	q.Page = 4
	page, err = svc.GetUsers(context.Background(), "guild-1", authedSession(), q)

	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Empty(t, page.Users)
}

package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/casino-dashboard/internal/domain/transaction"
)

func TestFilterDocument_GuildScopeOnly(t *testing.T) {
	doc := filterDocument(transaction.Filter{GuildID: "guild-1"})

	assert.Equal(t, bson.M{"guildId": "guild-1"}, doc)
}

func TestFilterDocument_SearchEscapesMetacharacters(t *testing.T) {
	doc := filterDocument(transaction.Filter{
		GuildID: "guild-1",
		Search:  "a.*b",
	})

	and, ok := doc["$and"].([]bson.M)
	require.True(t, ok)
	require.Len(t, and, 1)

	re, ok := and[0]["userId"].(primitive.Regex)
	require.True(t, ok)
	// Metacharacters must match only their literal selves.
	assert.Equal(t, `a\.\*b`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestFilterDocument_AdminSearchMatchesHandlerOrBet(t *testing.T) {
	doc := filterDocument(transaction.Filter{
		GuildID:     "guild-1",
		AdminSearch: "round(1)",
	})

	and, ok := doc["$and"].([]bson.M)
	require.True(t, ok)
	require.Len(t, and, 1)

	or, ok := and[0]["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 2)

	handledBy, ok := or[0]["handledBy"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, `round\(1\)`, handledBy.Pattern)

	betID, ok := or[1]["betId"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, `round\(1\)`, betID.Pattern)
}

func TestFilterDocument_FacetsUseSetMembership(t *testing.T) {
	doc := filterDocument(transaction.Filter{
		GuildID: "guild-1",
		Types:   []string{"bet", "win"},
		Sources: []string{"casino"},
	})

	and, ok := doc["$and"].([]bson.M)
	require.True(t, ok)
	require.Len(t, and, 2)

	assert.Equal(t, bson.M{"type": bson.M{"$in": []string{"bet", "win"}}}, and[0])
	assert.Equal(t, bson.M{"source": bson.M{"$in": []string{"casino"}}}, and[1])
}

func TestFilterDocument_DateRangeInclusive(t *testing.T) {
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 12, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)

	doc := filterDocument(transaction.Filter{
		GuildID:  "guild-1",
		DateFrom: &from,
		DateTo:   &to,
	})

	assert.Equal(t, bson.M{"$gte": from, "$lte": to}, doc["createdAt"])
	_, hasAnd := doc["$and"]
	assert.False(t, hasAnd)
}

func TestFilterDocument_AllPredicatesCombineWithAnd(t *testing.T) {
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)

	doc := filterDocument(transaction.Filter{
		GuildID:     "guild-1",
		Search:      "user",
		AdminSearch: "admin",
		Types:       []string{"deposit"},
		Sources:     []string{"web"},
		DateFrom:    &from,
		DateTo:      &to,
	})

	assert.Equal(t, "guild-1", doc["guildId"])
	assert.NotNil(t, doc["createdAt"])

	and, ok := doc["$and"].([]bson.M)
	require.True(t, ok)
	assert.Len(t, and, 4)
}

func TestSortDocument(t *testing.T) {
	t.Run("AppendsIDTieBreak", func(t *testing.T) {
		doc := sortDocument([]transaction.SortField{
			{Field: "createdAt", Descending: true},
		})

		assert.Equal(t, bson.D{
			{Key: "createdAt", Value: -1},
			{Key: "_id", Value: -1},
		}, doc)
	})

	t.Run("PreservesOrderAndDirections", func(t *testing.T) {
		doc := sortDocument([]transaction.SortField{
			{Field: "amount", Descending: false},
			{Field: "createdAt", Descending: true},
		})

		assert.Equal(t, bson.D{
			{Key: "amount", Value: 1},
			{Key: "createdAt", Value: -1},
			{Key: "_id", Value: -1},
		}, doc)
	})

	t.Run("NoDoubleTieBreakWhenCallerSortsByID", func(t *testing.T) {
		doc := sortDocument([]transaction.SortField{
			{Field: "_id", Descending: false},
		})

		assert.Equal(t, bson.D{{Key: "_id", Value: 1}}, doc)
	})
}

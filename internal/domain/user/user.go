// Package user defines the registered-user record the bot maintains per
// guild: the chip balance and registration time for members enrolled in the
// ATM system. The dashboard reads these records and joins them with the live
// roster; balance mutations belong to the bot.
package user

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is one registered member of a guild's economy.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID    string             `bson:"userId" json:"userId"`
	GuildID   string             `bson:"guildId" json:"guildId"`
	Balance   int64              `bson:"balance" json:"balance"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Repository reads registered users from the store.
type Repository interface {
	// ListByGuild returns every registered user of a guild.
	ListByGuild(ctx context.Context, guildID string) ([]*User, error)
}

// Package vip defines the VIP room records the bot maintains: private
// channels rented by a member for a period. The dashboard lists them joined
// with the owner's roster identity; creation and expiry are bot concerns.
package vip

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Room is one rented VIP channel.
type Room struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	OwnerID   string             `bson:"ownerId" json:"ownerId"`
	GuildID   string             `bson:"guildId" json:"guildId"`
	ChannelID string             `bson:"channelId" json:"channelId"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Repository reads VIP rooms from the store.
type Repository interface {
	// ListByGuild returns every VIP room of a guild.
	ListByGuild(ctx context.Context, guildID string) ([]*Room, error)
}

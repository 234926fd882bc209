package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/casino-dashboard/internal/domain/vip"
)

const (
	// VipRoomCollectionName is the name of the VIP room collection in MongoDB
	VipRoomCollectionName = "viprooms"
)

// VipRoomRepository implements the vip.Repository interface for MongoDB
type VipRoomRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewVipRoomRepository creates a new MongoDB VIP room repository
func NewVipRoomRepository(logger *slog.Logger, db *mongo.Database) vip.Repository {
	return &VipRoomRepository{
		db:     db,
		logger: logger,
	}
}

// ListByGuild returns every VIP room of a guild.
func (r *VipRoomRepository) ListByGuild(ctx context.Context, guildID string) ([]*vip.Room, error) {
	collection := r.db.Collection(VipRoomCollectionName)

	cursor, err := collection.Find(ctx, bson.M{"guildId": guildID})
	if err != nil {
		r.logger.Error("Failed to list VIP rooms",
			"guild_id", guildID,
			"error", err)
		return nil, fmt.Errorf("failed to list VIP rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []*vip.Room
	if err := cursor.All(ctx, &rooms); err != nil {
		r.logger.Error("Failed to decode VIP rooms",
			"guild_id", guildID,
			"error", err)
		return nil, fmt.Errorf("failed to decode VIP rooms: %w", err)
	}

	return rooms, nil
}

package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/casino-dashboard/internal/domain/user"
)

const (
	// UserCollectionName is the name of the registered-user collection in
	// MongoDB
	UserCollectionName = "users"
)

// UserRepository implements the user.Repository interface for MongoDB
type UserRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewUserRepository creates a new MongoDB user repository
func NewUserRepository(logger *slog.Logger, db *mongo.Database) user.Repository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// ListByGuild returns every registered user of a guild.
func (r *UserRepository) ListByGuild(ctx context.Context, guildID string) ([]*user.User, error) {
	collection := r.db.Collection(UserCollectionName)

	cursor, err := collection.Find(ctx, bson.M{"guildId": guildID})
	if err != nil {
		r.logger.Error("Failed to list registered users",
			"guild_id", guildID,
			"error", err)
		return nil, fmt.Errorf("failed to list registered users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*user.User
	if err := cursor.All(ctx, &users); err != nil {
		r.logger.Error("Failed to decode registered users",
			"guild_id", guildID,
			"error", err)
		return nil, fmt.Errorf("failed to decode registered users: %w", err)
	}

	return users, nil
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/casino-dashboard/internal/domain/guild"
)

const (
	// GuildConfigCollectionName is the name of the guild configuration
	// collection in MongoDB
	GuildConfigCollectionName = "guild_configurations"
)

// GuildConfigRepository implements the guild.Repository interface for MongoDB
type GuildConfigRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewGuildConfigRepository creates a new MongoDB guild configuration repository
func NewGuildConfigRepository(logger *slog.Logger, db *mongo.Database) guild.Repository {
	return &GuildConfigRepository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a guild's configuration document. Returns nil when the guild
// has never been configured.
func (r *GuildConfigRepository) Get(ctx context.Context, guildID string) (*guild.Config, error) {
	collection := r.db.Collection(GuildConfigCollectionName)

	var cfg guild.Config
	err := collection.FindOne(ctx, bson.M{"guildId": guildID}).Decode(&cfg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to get guild configuration",
			"guild_id", guildID,
			"error", err)
		return nil, fmt.Errorf("failed to get guild configuration: %w", err)
	}

	return &cfg, nil
}

// ListWithManagerRole returns every guild configuration with a manager role
// assigned.
func (r *GuildConfigRepository) ListWithManagerRole(ctx context.Context) ([]*guild.Config, error) {
	collection := r.db.Collection(GuildConfigCollectionName)

	filter := bson.M{"managerRoleId": bson.M{"$exists": true, "$ne": ""}}
	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to list configured guilds", "error", err)
		return nil, fmt.Errorf("failed to list configured guilds: %w", err)
	}
	defer cursor.Close(ctx)

	var configs []*guild.Config
	if err := cursor.All(ctx, &configs); err != nil {
		r.logger.Error("Failed to decode configured guilds", "error", err)
		return nil, fmt.Errorf("failed to decode configured guilds: %w", err)
	}

	return configs, nil
}

// Replace upserts the full configuration document for cfg.GuildID.
func (r *GuildConfigRepository) Replace(ctx context.Context, cfg *guild.Config) error {
	collection := r.db.Collection(GuildConfigCollectionName)

	opts := options.Replace().SetUpsert(true)
	_, err := collection.ReplaceOne(ctx, bson.M{"guildId": cfg.GuildID}, cfg, opts)
	if err != nil {
		r.logger.Error("Failed to replace guild configuration",
			"guild_id", cfg.GuildID,
			"error", err)
		return fmt.Errorf("failed to replace guild configuration: %w", err)
	}

	return nil
}

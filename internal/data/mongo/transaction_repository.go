package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/casino-dashboard/internal/domain/transaction"
)

const (
	// TransactionCollectionName is the name of the transaction ledger
	// collection in MongoDB
	TransactionCollectionName = "transactions"
)

// TransactionRepository implements the transaction.Repository interface for
// MongoDB
type TransactionRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewTransactionRepository creates a new MongoDB transaction repository
func NewTransactionRepository(logger *slog.Logger, db *mongo.Database) transaction.Repository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// Search returns one page of records matching the filter, sorted then skipped
// then limited.
func (r *TransactionRepository) Search(ctx context.Context, f transaction.Filter, sort []transaction.SortField, skip, limit int64) ([]*transaction.Transaction, error) {
	collection := r.db.Collection(TransactionCollectionName)

	opts := options.Find().
		SetSort(sortDocument(sort)).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := collection.Find(ctx, filterDocument(f), opts)
	if err != nil {
		r.logger.Error("Failed to search transactions",
			"guild_id", f.GuildID,
			"error", err)
		return nil, fmt.Errorf("failed to search transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*transaction.Transaction
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode transactions",
			"guild_id", f.GuildID,
			"error", err)
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	return records, nil
}

// Count counts all records matching the filter, ignoring pagination
func (r *TransactionRepository) Count(ctx context.Context, f transaction.Filter) (int64, error) {
	collection := r.db.Collection(TransactionCollectionName)

	count, err := collection.CountDocuments(ctx, filterDocument(f))
	if err != nil {
		r.logger.Error("Failed to count transactions",
			"guild_id", f.GuildID,
			"error", err)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

// Totals computes the cash-flow and game-PnL aggregates over the entire
// filtered set in a single grouped pipeline. Signs follow the domain
// contributions: deposits/withdrawals drive cash flow, bet+vip versus
// win+bonus+refund drive house PnL.
func (r *TransactionRepository) Totals(ctx context.Context, f transaction.Filter) (*transaction.Totals, error) {
	collection := r.db.Collection(TransactionCollectionName)

	negatedAmount := bson.M{"$multiply": bson.A{"$amount", -1}}
	pipeline := []bson.M{
		{"$match": filterDocument(f)},
		{"$group": bson.M{
			"_id": nil,
			"gamePnL": bson.M{"$sum": bson.M{"$switch": bson.M{
				"branches": bson.A{
					bson.M{
						"case": bson.M{"$in": bson.A{"$type", bson.A{transaction.TypeBet, transaction.TypeVip}}},
						"then": "$amount",
					},
					bson.M{
						"case": bson.M{"$in": bson.A{"$type", bson.A{transaction.TypeWin, transaction.TypeBonus, transaction.TypeRefund}}},
						"then": negatedAmount,
					},
				},
				"default": 0,
			}}},
			"cashFlow": bson.M{"$sum": bson.M{"$switch": bson.M{
				"branches": bson.A{
					bson.M{
						"case": bson.M{"$eq": bson.A{"$type", transaction.TypeDeposit}},
						"then": "$amount",
					},
					bson.M{
						"case": bson.M{"$eq": bson.A{"$type", transaction.TypeWithdraw}},
						"then": negatedAmount,
					},
				},
				"default": 0,
			}}},
		}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate transaction totals",
			"guild_id", f.GuildID,
			"error", err)
		return nil, fmt.Errorf("failed to aggregate transaction totals: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		GamePnL  int64 `bson:"gamePnL"`
		CashFlow int64 `bson:"cashFlow"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		r.logger.Error("Failed to decode transaction totals",
			"guild_id", f.GuildID,
			"error", err)
		return nil, fmt.Errorf("failed to decode transaction totals: %w", err)
	}

	// An empty filtered set produces no group document at all.
	if len(results) == 0 {
		return &transaction.Totals{}, nil
	}

	return &transaction.Totals{
		CashFlow: results[0].CashFlow,
		GamePnL:  results[0].GamePnL,
	}, nil
}

// CountByType returns per-type record counts over the filtered set
func (r *TransactionRepository) CountByType(ctx context.Context, f transaction.Filter) (map[transaction.Type]int64, error) {
	grouped, err := r.countGroupedBy(ctx, f, "$type")
	if err != nil {
		return nil, err
	}

	counts := make(map[transaction.Type]int64, len(grouped))
	for key, count := range grouped {
		counts[transaction.Type(key)] = count
	}
	return counts, nil
}

// CountBySource returns per-source record counts over the filtered set
func (r *TransactionRepository) CountBySource(ctx context.Context, f transaction.Filter) (map[transaction.Source]int64, error) {
	grouped, err := r.countGroupedBy(ctx, f, "$source")
	if err != nil {
		return nil, err
	}

	counts := make(map[transaction.Source]int64, len(grouped))
	for key, count := range grouped {
		counts[transaction.Source(key)] = count
	}
	return counts, nil
}

// countGroupedBy runs a $match + $group count pipeline bucketed by field.
func (r *TransactionRepository) countGroupedBy(ctx context.Context, f transaction.Filter, field string) (map[string]int64, error) {
	collection := r.db.Collection(TransactionCollectionName)

	pipeline := []bson.M{
		{"$match": filterDocument(f)},
		{"$group": bson.M{
			"_id":   field,
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate facet counts",
			"guild_id", f.GuildID,
			"facet", field,
			"error", err)
		return nil, fmt.Errorf("failed to aggregate facet counts: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Key   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		r.logger.Error("Failed to decode facet counts",
			"guild_id", f.GuildID,
			"facet", field,
			"error", err)
		return nil, fmt.Errorf("failed to decode facet counts: %w", err)
	}

	counts := make(map[string]int64, len(results))
	for _, result := range results {
		counts[result.Key] = result.Count
	}
	return counts, nil
}

// NetProfitByUser computes per-user gambling net profit over the guild's
// whole ledger: win and bonus amounts count toward the user, bet amounts
// against. Cash movements and refunds do not contribute.
func (r *TransactionRepository) NetProfitByUser(ctx context.Context, guildID string, userIDs []string) (map[string]int64, error) {
	if len(userIDs) == 0 {
		return map[string]int64{}, nil
	}

	collection := r.db.Collection(TransactionCollectionName)

	pipeline := []bson.M{
		{"$match": bson.M{
			"guildId": guildID,
			"userId":  bson.M{"$in": userIDs},
		}},
		{"$group": bson.M{
			"_id": "$userId",
			"net": bson.M{"$sum": bson.M{"$switch": bson.M{
				"branches": bson.A{
					bson.M{
						"case": bson.M{"$eq": bson.A{"$type", transaction.TypeBet}},
						"then": bson.M{"$multiply": bson.A{"$amount", -1}},
					},
					bson.M{
						"case": bson.M{"$in": bson.A{"$type", bson.A{transaction.TypeWin, transaction.TypeBonus}}},
						"then": "$amount",
					},
				},
				"default": 0,
			}}},
		}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate net profit",
			"guild_id", guildID,
			"error", err)
		return nil, fmt.Errorf("failed to aggregate net profit: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		UserID string `bson:"_id"`
		Net    int64  `bson:"net"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		r.logger.Error("Failed to decode net profit",
			"guild_id", guildID,
			"error", err)
		return nil, fmt.Errorf("failed to decode net profit: %w", err)
	}

	net := make(map[string]int64, len(results))
	for _, result := range results {
		net[result.UserID] = result.Net
	}
	return net, nil
}

// Delete removes a transaction by id within a guild scope.
// Returns transaction.ErrNotFound when no matching record exists.
func (r *TransactionRepository) Delete(ctx context.Context, guildID, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return transaction.ErrNotFound{ID: id}
	}

	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{"_id": objectID, "guildId": guildID}
	err = collection.FindOneAndDelete(ctx, filter).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return transaction.ErrNotFound{ID: id}
		}
		r.logger.Error("Failed to delete transaction",
			"guild_id", guildID,
			"transaction_id", id,
			"error", err)
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	return nil
}

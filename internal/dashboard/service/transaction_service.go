package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/casino-dashboard/internal/auth"
	"github.com/casino-dashboard/internal/domain/transaction"
	"github.com/casino-dashboard/internal/roster"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	repo        transaction.Repository
	resolver    roster.Resolver
	permissions PermissionService
	logger      *slog.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(logger *slog.Logger, repo transaction.Repository, resolver roster.Resolver, permissions PermissionService) TransactionService {
	return &TransactionServiceImpl{
		repo:        repo,
		resolver:    resolver,
		permissions: permissions,
		logger:      logger,
	}
}

// emptyPage is the silent degrade result for unauthenticated callers, bad
// pagination, and roster outages. Indistinguishable from a legitimately empty
// ledger at this boundary.
func emptyPage() *TransactionPage {
	return &TransactionPage{Transactions: []Row{}}
}

// GetTransactions executes the ledger query: whole-set count and aggregates
// plus one sorted page, then a roster join producing display-ready rows.
func (s *TransactionServiceImpl) GetTransactions(ctx context.Context, guildID string, sess auth.Session, q transaction.Query) (*TransactionPage, error) {
	if !sess.Authenticated() {
		return emptyPage(), nil
	}
	if q.Page < 1 || q.Limit < 1 || q.Limit > transaction.MaxLimit {
		return emptyPage(), nil
	}

	f := transaction.NewFilter(guildID, q)
	skip := int64(q.Page-1) * int64(q.Limit)

	// The page, the count, and the aggregates are independent store queries
	// over the same filter; run them concurrently.
	var (
		records []*transaction.Transaction
		total   int64
		totals  *transaction.Totals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.repo.Search(gctx, f, q.Sort, skip, int64(q.Limit))
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.repo.Totals(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to query transactions", "guild_id", guildID, "error", err)
		return nil, err
	}

	page := &TransactionPage{
		Transactions: []Row{},
		Total:        total,
		GamePnL:      totals.GamePnL,
		CashFlow:     totals.CashFlow,
	}

	// Nothing on this page: skip the roster join entirely.
	if len(records) == 0 {
		return page, nil
	}

	members, err := s.resolver.GuildMembers(ctx, guildID)
	if err != nil {
		if errors.Is(err, roster.ErrUnavailable) {
			// Fail closed: financial rows with unresolvable identities are
			// worse than no rows.
			s.logger.Warn("roster unavailable, returning empty result", "guild_id", guildID)
			return emptyPage(), nil
		}
		return nil, err
	}

	byID := make(map[string]roster.Member, len(members))
	for _, m := range members {
		byID[m.UserID] = m
	}

	rows := make([]Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, joinRow(record, byID))
	}
	page.Transactions = rows

	return page, nil
}

// joinRow shapes one raw record into a display row, falling back to
// "Unknown" / nil nickname / placeholder avatar when the subject has no
// roster entry.
func joinRow(record *transaction.Transaction, byID map[string]roster.Member) Row {
	row := Row{
		ID:        record.ID.Hex(),
		UserID:    record.UserID,
		Username:  "Unknown",
		Avatar:    roster.DefaultAvatarURL,
		Type:      record.Type,
		Meta:      record.Meta,
		Amount:    record.Amount,
		Source:    record.Source,
		CreatedAt: record.CreatedAt,
		BetID:     record.BetID,
		HandledBy: record.HandledBy,
	}

	if m, ok := byID[record.UserID]; ok {
		row.Username = m.Username
		row.Nickname = m.Nickname
		row.Avatar = m.AvatarURL
	}
	if record.HandledBy != "" {
		if handler, ok := byID[record.HandledBy]; ok {
			row.HandledByUsername = handler.Username
		}
	}

	return row
}

// GetTransactionCounts computes per-type and per-source counts over the
// whole filtered set. Every enum member appears in the output, zero-filled
// when no record matches; the roster is never consulted.
func (s *TransactionServiceImpl) GetTransactionCounts(ctx context.Context, guildID string, sess auth.Session, q transaction.Query) (*transaction.FacetCounts, error) {
	counts := transaction.ZeroFacetCounts()

	if !sess.Authenticated() {
		return counts, nil
	}

	f := transaction.NewFilter(guildID, q)

	var (
		byType   map[transaction.Type]int64
		bySource map[transaction.Source]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byType, err = s.repo.CountByType(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		bySource, err = s.repo.CountBySource(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to count transactions by facet", "guild_id", guildID, "error", err)
		return nil, err
	}

	for t, n := range byType {
		if _, ok := counts.Type[t]; ok {
			counts.Type[t] = n
		}
	}
	for src, n := range bySource {
		if _, ok := counts.Source[src]; ok {
			counts.Source[src] = n
		}
	}

	return counts, nil
}

// DeleteTransaction removes one ledger record. Deletes are permission-scoped
// to guild managers and admins, matching the settings operations.
func (s *TransactionServiceImpl) DeleteTransaction(ctx context.Context, guildID string, sess auth.Session, id string) (*DeleteResult, error) {
	if !sess.Authenticated() {
		return &DeleteResult{Success: false, Message: "Unauthorized"}, nil
	}
	if id == "" {
		return &DeleteResult{Success: false, Message: "Transaction ID is required"}, nil
	}

	perms, err := s.permissions.GetPermissions(ctx, guildID, sess)
	if err != nil {
		s.logger.Error("Failed to check permissions for delete", "guild_id", guildID, "error", err)
		return &DeleteResult{Success: false, Message: "Failed to verify permissions"}, nil
	}
	if !perms.IsAdmin && !perms.IsManager {
		return &DeleteResult{Success: false, Message: "Forbidden"}, nil
	}

	if err := s.repo.Delete(ctx, guildID, id); err != nil {
		var notFound transaction.ErrNotFound
		if errors.As(err, &notFound) {
			return &DeleteResult{Success: false, Message: "Transaction not found"}, nil
		}
		s.logger.Error("Failed to delete transaction",
			"guild_id", guildID,
			"transaction_id", id,
			"error", err)
		return &DeleteResult{Success: false, Message: "Failed to delete transaction"}, nil
	}

	s.logger.Info("Transaction deleted",
		"guild_id", guildID,
		"transaction_id", id,
		"deleted_by", sess.UserID)
	return &DeleteResult{Success: true, Message: "Transaction deleted"}, nil
}

package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/casino-dashboard/internal/dashboard/middleware"
	"github.com/casino-dashboard/internal/dashboard/service"
	"github.com/casino-dashboard/internal/domain/transaction"
)

// TransactionHandler handles HTTP requests for the transaction ledger
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// List serves one filtered, sorted page of a guild's ledger plus the
// whole-set count and aggregates. Every query parameter arrives as an
// optional string; an unauthenticated session or out-of-bounds pagination
// produces an empty page, not an error.
func (h *TransactionHandler) List(c *gin.Context) {
	guildID := c.Param("guildId")
	sess := middleware.GetSession(c)
	query := transaction.ParseQuery(c.Request.URL.Query())

	page, err := h.transactionService.GetTransactions(c.Request.Context(), guildID, sess, query)
	if err != nil {
		h.logger.Error("Failed to get transactions", "guild_id", guildID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, page)
}

// Counts serves dense per-type and per-source counts over the filtered set,
// for the UI's filter-chip badges. Pagination and sort parameters are ignored.
func (h *TransactionHandler) Counts(c *gin.Context) {
	guildID := c.Param("guildId")
	sess := middleware.GetSession(c)
	query := transaction.ParseQuery(c.Request.URL.Query())

	counts, err := h.transactionService.GetTransactionCounts(c.Request.Context(), guildID, sess, query)
	if err != nil {
		h.logger.Error("Failed to get transaction counts", "guild_id", guildID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, counts)
}

// Delete removes one transaction. The outcome travels in the body as a
// structured {success, message} result; a missing record is an expected
// condition, not a transport error.
func (h *TransactionHandler) Delete(c *gin.Context) {
	guildID := c.Param("guildId")
	id := c.Param("id")
	sess := middleware.GetSession(c)

	result, err := h.transactionService.DeleteTransaction(c.Request.Context(), guildID, sess, id)
	if err != nil {
		h.logger.Error("Failed to delete transaction",
			"guild_id", guildID,
			"transaction_id", id,
			"error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, result)
}

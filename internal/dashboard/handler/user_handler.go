package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/casino-dashboard/internal/dashboard/middleware"
	"github.com/casino-dashboard/internal/dashboard/service"
	"github.com/casino-dashboard/internal/domain/user"
)

// UserHandler handles HTTP requests for the member listing
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(logger *slog.Logger, userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// List serves one searched, sorted page of the guild's members with their
// registration state, balance, and ledger net profit. An unauthenticated
// session or out-of-bounds pagination produces an empty page, not an error.
func (h *UserHandler) List(c *gin.Context) {
	guildID := c.Param("guildId")
	sess := middleware.GetSession(c)
	query := user.ParseQuery(c.Request.URL.Query())

	page, err := h.userService.GetUsers(c.Request.Context(), guildID, sess, query)
	if err != nil {
		h.logger.Error("Failed to get users", "guild_id", guildID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, page)
}

package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/casino-dashboard/internal/dashboard/middleware"
	"github.com/casino-dashboard/internal/dashboard/service"
)

// VipHandler handles HTTP requests for the VIP room listing
type VipHandler struct {
	vipService service.VipService
	logger     *slog.Logger
}

// NewVipHandler creates a new VIP handler
func NewVipHandler(logger *slog.Logger, vipService service.VipService) *VipHandler {
	return &VipHandler{
		vipService: vipService,
		logger:     logger,
	}
}

// List serves the guild's VIP rooms joined with owner identities and channel
// names. An unauthenticated session produces an empty listing, not an error.
func (h *VipHandler) List(c *gin.Context) {
	guildID := c.Param("guildId")
	sess := middleware.GetSession(c)

	rooms, err := h.vipService.GetVips(c.Request.Context(), guildID, sess)
	if err != nil {
		h.logger.Error("Failed to get VIP rooms", "guild_id", guildID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, rooms)
}

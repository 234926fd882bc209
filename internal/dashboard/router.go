package dashboard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/casino-dashboard/internal/dashboard/handler"
	"github.com/casino-dashboard/internal/dashboard/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	transactionHandler *handler.TransactionHandler,
	guildHandler *handler.GuildHandler,
	userHandler *handler.UserHandler,
	vipHandler *handler.VipHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Session())

	// API v1 endpoints, all scoped to a single guild
	v1 := r.Group("/api/v1")
	{
		// Guild picker for the session's user
		v1.GET("/guilds", guildHandler.Guilds)

		guilds := v1.Group("/guilds/:guildId")
		{
			// Transaction ledger
			guilds.GET("/transactions", transactionHandler.List)
			guilds.GET("/transactions/counts", transactionHandler.Counts)
			guilds.DELETE("/transactions/:id", transactionHandler.Delete)

			// Member and VIP room listings
			guilds.GET("/users", userHandler.List)
			guilds.GET("/vips", vipHandler.List)

			// Guild header, roster, permissions, configuration
			guilds.GET("", guildHandler.Info)
			guilds.GET("/members", guildHandler.Members)
			guilds.GET("/permissions", guildHandler.Permissions)
			guilds.GET("/config", guildHandler.GetConfig)
			guilds.PUT("/config", guildHandler.ReplaceConfig)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}

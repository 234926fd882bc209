package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"github.com/casino-dashboard/internal/cache"
	"github.com/casino-dashboard/internal/config"
	"github.com/casino-dashboard/internal/dashboard"
	"github.com/casino-dashboard/internal/dashboard/service"
	datamongo "github.com/casino-dashboard/internal/data/mongo"
	"github.com/casino-dashboard/internal/logger"
	"github.com/casino-dashboard/internal/platform/discord"
	"github.com/casino-dashboard/internal/platform/persistence"
	"github.com/casino-dashboard/internal/roster"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("dashboard")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize MongoDB with app context
	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize the Discord REST client (bot credential)
	discordClient, err := discord.NewClient(log, &cfg.Discord)
	if err != nil {
		log.Error("Failed to initialize Discord client", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	transactionRepo := datamongo.NewTransactionRepository(log, mongoDB.Database())
	guildConfigRepo := datamongo.NewGuildConfigRepository(log, mongoDB.Database())
	userRepo := datamongo.NewUserRepository(log, mongoDB.Database())
	vipRoomRepo := datamongo.NewVipRoomRepository(log, mongoDB.Database())

	// Initialize the roster resolver with its TTL cache
	memberCache := cache.New[[]roster.Member]()
	memberResolver := roster.NewCachedResolver(log, discordClient, memberCache, cfg.Cache.GuildMembersTTL)

	// Initialize services
	rolesCache := cache.New[[]string]()
	userGuildsCache := cache.New[[]*discordgo.UserGuild]()
	permissionService := service.NewPermissionService(log, discordClient, guildConfigRepo,
		rolesCache, cfg.Cache.MemberRolesTTL,
		userGuildsCache, cfg.Cache.UserGuildsTTL)
	transactionService := service.NewTransactionService(log, transactionRepo, memberResolver, permissionService)
	settingsService := service.NewSettingsService(log, guildConfigRepo, permissionService)
	userService := service.NewUserService(log, userRepo, transactionRepo, memberResolver)
	vipService := service.NewVipService(log, vipRoomRepo, memberResolver, discordClient)

	// Initialize REST server
	server := dashboard.NewServer(log, cfg, transactionService, permissionService, settingsService,
		userService, vipService, memberResolver, discordClient)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	} else {
		log.Info("Server shutdown completed successfully")
	}
}

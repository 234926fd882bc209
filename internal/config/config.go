// Package config provides configuration structures and validation for the
// dashboard backend. It handles environment-based configuration for the HTTP
// server, MongoDB, the Discord API client, and the in-process caches.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all
// components. Each field represents a major subsystem's configuration and is
// validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	MongoDB     MongoDBConfig
	Discord     DiscordConfig
	Cache       CacheConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// DiscordConfig contains Discord REST API configuration. The bot token is the
// service-level credential used for guild member and metadata lookups; end
// user requests carry their own bearer token.
type DiscordConfig struct {
	BotToken       string
	RequestTimeout time.Duration
}

// CacheConfig contains TTL settings for the process-local caches
type CacheConfig struct {
	GuildMembersTTL time.Duration // roster entries per guild
	MemberRolesTTL  time.Duration // role sets per guild+user
	UserGuildsTTL   time.Duration // guild lists per user session
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate Discord config
	if c.Discord.BotToken == "" {
		validationErrors = append(validationErrors, "DISCORD_BOT_TOKEN is required")
	}
	if c.Discord.RequestTimeout <= 0 {
		validationErrors = append(validationErrors, "DISCORD_REQUEST_TIMEOUT must be greater than 0")
	}

	// Validate Cache config
	if c.Cache.GuildMembersTTL <= 0 {
		validationErrors = append(validationErrors, "CACHE_GUILD_MEMBERS_TTL must be greater than 0")
	}
	if c.Cache.MemberRolesTTL <= 0 {
		validationErrors = append(validationErrors, "CACHE_MEMBER_ROLES_TTL must be greater than 0")
	}
	if c.Cache.UserGuildsTTL <= 0 {
		validationErrors = append(validationErrors, "CACHE_USER_GUILDS_TTL must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}

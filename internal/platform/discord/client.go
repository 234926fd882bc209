// Package discord wraps the Discord REST API behind the small surface the
// dashboard needs: guild member listings for the roster, member role lookups
// for permission checks, and the caller's own guild list. All bot-credential
// calls share one session; bearer-credential calls build a throwaway session
// around the user's token.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/casino-dashboard/internal/config"
)

// ErrRateLimited is returned when Discord rejects a call with a rate-limit
// signal. Callers surface it as a distinct "try again later" state.
var ErrRateLimited = errors.New("discord rate limited")

// guildMembersPageLimit is the largest page Discord serves per request.
const guildMembersPageLimit = 1000

// Client performs Discord REST calls with the service-level bot credential.
type Client struct {
	session *discordgo.Session
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient builds a Client from configuration. No gateway connection is
// opened; the client is REST-only.
func NewClient(logger *slog.Logger, cfg *config.DiscordConfig) (*Client, error) {
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	// Fail fast on 429s instead of blocking the request for the retry-after
	// window; the caller decides how to degrade.
	session.ShouldRetryOnRateLimit = false
	session.Client = &http.Client{Timeout: cfg.RequestTimeout}

	return &Client{
		session: session,
		timeout: cfg.RequestTimeout,
		logger:  logger,
	}, nil
}

// GuildMembers lists up to one page (1000) of a guild's members.
func (c *Client) GuildMembers(ctx context.Context, guildID string) ([]*discordgo.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	members, err := c.session.GuildMembers(guildID, "", guildMembersPageLimit, discordgo.WithContext(ctx))
	if err != nil {
		return nil, c.wrapErr("failed to list guild members", err)
	}
	return members, nil
}

// GuildMember fetches a single member, including their role ids.
func (c *Client) GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	member, err := c.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, c.wrapErr("failed to fetch guild member", err)
	}
	return member, nil
}

// Guild fetches guild metadata. Used to verify the bot is present in a guild.
func (c *Client) Guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	guild, err := c.session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, c.wrapErr("failed to fetch guild", err)
	}
	return guild, nil
}

// GuildChannels lists a guild's channels.
func (c *Client) GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	channels, err := c.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, c.wrapErr("failed to list guild channels", err)
	}
	return channels, nil
}

// UserGuilds lists the guilds the holder of accessToken belongs to, with
// their permission bits. This is the only call made with the end user's
// credential rather than the bot's.
func (c *Client) UserGuilds(ctx context.Context, accessToken string) ([]*discordgo.UserGuild, error) {
	userSession, err := discordgo.New("Bearer " + accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create user session: %w", err)
	}
	userSession.ShouldRetryOnRateLimit = false
	userSession.Client = &http.Client{Timeout: c.timeout}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	guilds, err := userSession.UserGuilds(200, "", "", false, discordgo.WithContext(ctx))
	if err != nil {
		return nil, c.wrapErr("failed to list user guilds", err)
	}
	return guilds, nil
}

// wrapErr maps rate-limit rejections to ErrRateLimited and wraps everything
// else with context.
func (c *Client) wrapErr(msg string, err error) error {
	var rateErr *discordgo.RateLimitError
	if errors.As(err, &rateErr) {
		c.logger.Warn("discord rate limited", "retry_after", rateErr.RetryAfter)
		return fmt.Errorf("%s: %w", msg, ErrRateLimited)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

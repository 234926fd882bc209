// Package guild defines the per-guild configuration document the dashboard
// reads and replaces: channel assignments, casino game parameters, VIP room
// pricing, bonus streak rewards, and the manager role.
package guild

import "context"

// Config is a guild's complete dashboard-managed configuration, stored as a
// single document keyed by guild id and replaced wholesale on save.
type Config struct {
	GuildID       string         `bson:"guildId" json:"guildId"`
	ManagerRoleID string         `bson:"managerRoleId,omitempty" json:"managerRoleId,omitempty"`
	Channels      Channels       `bson:"channels" json:"channels"`
	Casino        CasinoSettings `bson:"casino" json:"casino"`
	Vip           VipSettings    `bson:"vip" json:"vip"`
	Bonus         BonusSettings  `bson:"bonus" json:"bonus"`
}

// Channels maps bot features to the channels they operate in.
type Channels struct {
	Atm        ActionLogChannels `bson:"atm" json:"atm"`
	Casino     CasinoChannels    `bson:"casino" json:"casino"`
	Prediction ActionLogChannels `bson:"prediction" json:"prediction"`
}

// ActionLogChannels pairs an action channel with its log channel.
type ActionLogChannels struct {
	Actions string `bson:"actions" json:"actions"`
	Logs    string `bson:"logs" json:"logs"`
}

// CasinoChannels lists the channels casino games may be played in.
type CasinoChannels struct {
	CasinoChannelIDs []string `bson:"casinoChannelIds" json:"casinoChannelIds"`
}

// BetLimits bounds the stake of a single game round.
type BetLimits struct {
	MinBet int64 `bson:"minBet" json:"minBet"`
	MaxBet int64 `bson:"maxBet" json:"maxBet"`
}

// GameSettings configures a simple fixed-multiplier game.
type GameSettings struct {
	WinMultiplier float64 `bson:"winMultiplier" json:"winMultiplier"`
	BetLimits     `bson:",inline"`
}

// TableGameSettings configures games with per-outcome multipliers.
type TableGameSettings struct {
	WinMultipliers map[string]float64 `bson:"winMultipliers" json:"winMultipliers"`
	BetLimits      `bson:",inline"`
}

// SlotsSettings configures the slots game, which also weights its symbols.
type SlotsSettings struct {
	WinMultipliers map[string]float64 `bson:"winMultipliers" json:"winMultipliers"`
	SymbolWeights  map[string]float64 `bson:"symbolWeights" json:"symbolWeights"`
	BetLimits      `bson:",inline"`
}

// RpsSettings configures rock-paper-scissors, where the house takes a cut
// instead of paying a multiplier.
type RpsSettings struct {
	CasinoCut float64 `bson:"casinoCut" json:"casinoCut"`
	BetLimits `bson:",inline"`
}

// JackpotSettings configures the golden jackpot long-shot game.
type JackpotSettings struct {
	WinMultiplier float64 `bson:"winMultiplier" json:"winMultiplier"`
	OneInChance   int64   `bson:"oneInChance" json:"oneInChance"`
	BetLimits     `bson:",inline"`
}

// CasinoSettings holds per-game parameters.
type CasinoSettings struct {
	Dice          GameSettings      `bson:"dice" json:"dice"`
	Coinflip      GameSettings      `bson:"coinflip" json:"coinflip"`
	Slots         SlotsSettings     `bson:"slots" json:"slots"`
	Lottery       TableGameSettings `bson:"lottery" json:"lottery"`
	Roulette      TableGameSettings `bson:"roulette" json:"roulette"`
	Rps           RpsSettings       `bson:"rps" json:"rps"`
	GoldenJackpot JackpotSettings   `bson:"goldenJackpot" json:"goldenJackpot"`
	Blackjack     BetLimits         `bson:"blackjack" json:"blackjack"`
	Prediction    BetLimits         `bson:"prediction" json:"prediction"`
}

// VipSettings prices and scopes VIP rooms.
type VipSettings struct {
	RoleOwnerID              string `bson:"roleOwnerId" json:"roleOwnerId"`
	RoleMemberID             string `bson:"roleMemberId" json:"roleMemberId"`
	PricePerDay              int64  `bson:"pricePerDay" json:"pricePerDay"`
	PricePerCreate           int64  `bson:"pricePerCreate" json:"pricePerCreate"`
	PricePerAdditionalMember int64  `bson:"pricePerAdditionalMember" json:"pricePerAdditionalMember"`
	MaxMembers               int64  `bson:"maxMembers" json:"maxMembers"`
	CategoryID               string `bson:"categoryId" json:"categoryId"`
}

// BonusSettings shapes the daily streak reward curve.
type BonusSettings struct {
	RewardMode       string         `bson:"rewardMode" json:"rewardMode"` // linear or exponential
	BaseReward       int64          `bson:"baseReward" json:"baseReward"`
	StreakIncrement  int64          `bson:"streakIncrement,omitempty" json:"streakIncrement,omitempty"`
	StreakMultiplier float64        `bson:"streakMultiplier,omitempty" json:"streakMultiplier,omitempty"`
	MaxReward        int64          `bson:"maxReward" json:"maxReward"`
	ResetOnMax       bool           `bson:"resetOnMax" json:"resetOnMax"`
	MilestoneBonus   MilestoneBonus `bson:"milestoneBonus" json:"milestoneBonus"`
}

// MilestoneBonus rewards sustained streaks at fixed calendar milestones.
type MilestoneBonus struct {
	Weekly  int64 `bson:"weekly" json:"weekly"`
	Monthly int64 `bson:"monthly" json:"monthly"`
}

// Repository persists guild configuration documents with read/replace
// semantics.
type Repository interface {
	// Get returns the configuration for a guild, or nil when none exists.
	Get(ctx context.Context, guildID string) (*Config, error)

	// ListWithManagerRole returns every configuration that has a manager
	// role assigned. Used to decide which guilds a non-admin may access.
	ListWithManagerRole(ctx context.Context) ([]*Config, error)

	// Replace upserts the full configuration document for cfg.GuildID.
	Replace(ctx context.Context, cfg *Config) error
}

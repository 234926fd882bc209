// Package transaction defines the transaction ledger domain: the immutable
// transaction record, its closed type/source enumerations, the aggregate sign
// conventions, and the normalized query descriptor used to filter the ledger.
package transaction

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Type classifies the economic effect of a transaction. Amounts are stored as
// non-negative magnitudes; direction is derived from the type, never the sign.
type Type string

const (
	TypeDeposit  Type = "deposit"
	TypeWithdraw Type = "withdraw"
	TypeBet      Type = "bet"
	TypeWin      Type = "win"
	TypeRefund   Type = "refund"
	TypeBonus    Type = "bonus"
	TypeVip      Type = "vip"
)

// Source identifies where a transaction originated.
type Source string

const (
	SourceCasino  Source = "casino"
	SourceCommand Source = "command"
	SourceManual  Source = "manual"
	SourceSystem  Source = "system"
	SourceWeb     Source = "web"
)

// Types returns the closed set of transaction types in display order.
func Types() []Type {
	return []Type{TypeDeposit, TypeWithdraw, TypeBet, TypeWin, TypeRefund, TypeBonus, TypeVip}
}

// Sources returns the closed set of transaction sources in display order.
func Sources() []Source {
	return []Source{SourceCasino, SourceCommand, SourceManual, SourceSystem, SourceWeb}
}

// ZeroTypeCounts returns a dense count map with every type present at zero.
// Callers render a fixed set of filter chips and must never see sparse keys.
func ZeroTypeCounts() map[Type]int64 {
	counts := make(map[Type]int64, len(Types()))
	for _, t := range Types() {
		counts[t] = 0
	}
	return counts
}

// ZeroSourceCounts returns a dense count map with every source present at zero.
func ZeroSourceCounts() map[Source]int64 {
	counts := make(map[Source]int64, len(Sources()))
	for _, s := range Sources() {
		counts[s] = 0
	}
	return counts
}

// CashFlowDelta returns the signed contribution of a transaction to the
// cash-flow aggregate: deposits move money in, withdrawals move it out, and
// gameplay types are neutral.
func (t Type) CashFlowDelta(amount int64) int64 {
	switch t {
	case TypeDeposit:
		return amount
	case TypeWithdraw:
		return -amount
	default:
		return 0
	}
}

// GamePnLDelta returns the signed contribution of a transaction to the house
// profit-and-loss aggregate. Bets and VIP purchases flow from user to house
// (positive); wins, bonuses, and refunds flow back (negative).
func (t Type) GamePnLDelta(amount int64) int64 {
	switch t {
	case TypeBet, TypeVip:
		return amount
	case TypeWin, TypeBonus, TypeRefund:
		return -amount
	default:
		return 0
	}
}

// Transaction is a single entry in a guild's financial event log. Records are
// append-only: inserted by the bot, never updated, rarely deleted by an
// operator.
type Transaction struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	GuildID   string                 `bson:"guildId" json:"guildId"`
	UserID    string                 `bson:"userId" json:"userId"`
	Type      Type                   `bson:"type" json:"type"`
	Source    Source                 `bson:"source" json:"source"`
	Amount    int64                  `bson:"amount" json:"amount"`
	Meta      map[string]interface{} `bson:"meta,omitempty" json:"meta,omitempty"`
	BetID     string                 `bson:"betId,omitempty" json:"betId,omitempty"`
	HandledBy string                 `bson:"handledBy,omitempty" json:"handledBy,omitempty"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
}

// Totals holds the two whole-set aggregates computed alongside a page query.
type Totals struct {
	CashFlow int64
	GamePnL  int64
}

// FacetCounts holds per-type and per-source record counts over a filtered
// set. Both maps are dense over their enumerations.
type FacetCounts struct {
	Type   map[Type]int64   `json:"type"`
	Source map[Source]int64 `json:"source"`
}

// ZeroFacetCounts returns FacetCounts with all buckets present at zero.
func ZeroFacetCounts() *FacetCounts {
	return &FacetCounts{
		Type:   ZeroTypeCounts(),
		Source: ZeroSourceCounts(),
	}
}

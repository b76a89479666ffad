package domain

import (
	"time"
)

// RankingKind identifies which top-10 list a ranked row belongs to.
type RankingKind string

const (
	RankingByShares   RankingKind = "by_shares"
	RankingByTurnover RankingKind = "by_turnover"
)

// RankedInstrument represents one row of a ten-most-active list for a
// trading day, either by shares traded or by turnover value. Numeric fields
// are normalized strings; extraction never fabricates missing rows, so a
// day's list may hold fewer than ten entries.
type RankedInstrument struct {
	Date           time.Time `json:"date" validate:"required"`
	Rank           int       `json:"rank" validate:"required,min=1,max=10"`
	InstrumentCode string    `json:"instrument_code" validate:"required"`
	Ticker         string    `json:"ticker"`
	ProductID      string    `json:"product_id"`
	Name           string    `json:"name"`
	Currency       string    `json:"currency" validate:"omitempty,len=3"`
	SharesTraded   string    `json:"shares_traded"`
	TurnoverValue  string    `json:"turnover_value"`
	High           string    `json:"high"`
	Low            string    `json:"low"`
}

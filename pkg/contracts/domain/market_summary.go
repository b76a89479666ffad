package domain

import (
	"time"
)

// MarketSummary represents the aggregate market statistics extracted from a
// single trading day's quotation report. Numeric fields are kept as already
// normalized strings (grouping separators stripped); an empty string means
// the field's anchor was not found on the page.
type MarketSummary struct {
	Date            time.Time `json:"date" validate:"required"`
	TradingVolume   string    `json:"trading_volume"`
	AdvancedStocks  string    `json:"advanced_stocks"`
	DeclinedStocks  string    `json:"declined_stocks"`
	UnchangedStocks string    `json:"unchanged_stocks"`
	TurnoverHKD     string    `json:"turnover_hkd"`
	Deals           string    `json:"deals"`
	MorningClose    string    `json:"morning_close"`
	AfternoonClose  string    `json:"afternoon_close"`
	Change          string    `json:"change"`
	ChangePercent   string    `json:"change_percent"`
}

// IsEmpty reports whether no field at all was extracted for the day.
func (s MarketSummary) IsEmpty() bool {
	return s.TradingVolume == "" && s.AdvancedStocks == "" && s.DeclinedStocks == "" &&
		s.UnchangedStocks == "" && s.TurnoverHKD == "" && s.Deals == "" &&
		s.MorningClose == "" && s.AfternoonClose == "" && s.Change == "" && s.ChangePercent == ""
}

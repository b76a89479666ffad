package exporter

import (
	"fmt"

	"hkexcli/internal/calendar"
	"hkexcli/pkg/contracts/domain"
)

// SummaryHeaders is the fixed column order for market summary files,
// identical between per-date and merged output.
func SummaryHeaders() []string {
	return []string{
		"Date", "Trading_Volume", "Advanced_Stocks", "Declined_Stocks",
		"Unchanged_Stocks", "Turnover_HKD", "Deals", "Morning_Close",
		"Afternoon_Close", "Change", "Change_Percent",
	}
}

// RankedHeaders is the fixed column order for ranked-instrument files.
func RankedHeaders() []string {
	return []string{
		"Date", "Rank", "Instrument_Code", "Ticker", "Product_Id", "Name",
		"Currency", "Shares_Traded", "Turnover_Value", "High", "Low",
	}
}

// SummaryRow materializes a summary record. Absent fields are already empty
// strings, never a literal "null" token.
func SummaryRow(s domain.MarketSummary) []string {
	return []string{
		s.Date.Format(calendar.DateKeyLayout),
		s.TradingVolume,
		s.AdvancedStocks,
		s.DeclinedStocks,
		s.UnchangedStocks,
		s.TurnoverHKD,
		s.Deals,
		s.MorningClose,
		s.AfternoonClose,
		s.Change,
		s.ChangePercent,
	}
}

// RankedRow materializes one ranked-instrument record.
func RankedRow(r domain.RankedInstrument) []string {
	return []string{
		r.Date.Format(calendar.DateKeyLayout),
		formatInt(r.Rank),
		r.InstrumentCode,
		r.Ticker,
		r.ProductID,
		r.Name,
		r.Currency,
		r.SharesTraded,
		r.TurnoverValue,
		r.High,
		r.Low,
	}
}

func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}

// Package extract turns rendered report text into structured records by
// locating section anchors and applying ordered field rules within each
// located span. Partial extraction is a valid, reportable outcome: a field
// whose anchor is absent stays empty instead of failing the date.
package extract

import (
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"hkexcli/internal/fetch"
	"hkexcli/pkg/contracts/domain"
)

// ErrExtractionEmpty reports content with no recognizable section anchors.
// The date is marked extraction-empty and the run continues.
var ErrExtractionEmpty = errors.New("no recognizable section anchors in content")

// maxRankedRows caps each ranking list.
const maxRankedRows = 10

// valuePattern captures the numeric token expected after a field anchor.
// Grouping separators may be ASCII or full-width commas.
var valuePattern = regexp.MustCompile(`[-+]?\d[\d,，]*(?:\.\d+)?%?`)

// rankedRowPattern matches one ranking line: rank, instrument code, ticker,
// product id, display name, currency, shares traded, turnover, high, low.
var rankedRowPattern = regexp.MustCompile(
	`^\s*(\d{1,2})\s+(\d{4,5})\s+([A-Z0-9.\-]+)\s+(\S+)\s+(.+?)\s+([A-Z]{3})\s+(\d[\d,，]*)\s+(\d[\d,，]*(?:\.\d+)?)\s+(\d[\d,，]*(?:\.\d+)?)\s+(\d[\d,，]*(?:\.\d+)?)\s*$`)

// Result is the structured output for one date's content.
type Result struct {
	Summary       *domain.MarketSummary
	ByShares      []domain.RankedInstrument
	ByTurnover    []domain.RankedInstrument
	MissingFields []string
}

// Extractor applies the rule set to raw content.
type Extractor struct {
	logger *slog.Logger
}

// New creates an extractor.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract produces zero or one summary record and zero, one, or two ranking
// lists from the rendered text. It returns ErrExtractionEmpty only when none
// of the section anchors can be located.
func (e *Extractor) Extract(content *fetch.RawContent, date time.Time) (*Result, error) {
	lines := strings.Split(content.Text, "\n")

	summarySpan, summaryFound := locateSection(lines, summarySectionAnchors)
	sharesSpan, sharesFound := locateSection(lines, bySharesSectionAnchors)
	turnoverSpan, turnoverFound := locateSection(lines, byTurnoverSectionAnchors)

	if !summaryFound && !sharesFound && !turnoverFound {
		return nil, ErrExtractionEmpty
	}

	result := &Result{}

	if summaryFound {
		summary, missing := e.extractSummary(summarySpan, date)
		result.Summary = summary
		result.MissingFields = missing
		if len(missing) > 0 {
			e.logger.Debug("summary fields missing",
				slog.String("date", content.DateKey),
				slog.Any("fields", missing))
		}
	}
	if sharesFound {
		result.ByShares = e.extractRanking(sharesSpan, date)
	}
	if turnoverFound {
		result.ByTurnover = e.extractRanking(turnoverSpan, date)
	}

	return result, nil
}

// locateSection returns the lines between the first occurrence of any of
// the given anchors and the next section anchor of any kind.
func locateSection(lines []string, anchors []string) ([]string, bool) {
	start := -1
	for i, line := range lines {
		if containsAny(line, anchors) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, false
	}

	end := len(lines)
	for i := start; i < len(lines); i++ {
		if containsAny(lines[i], summarySectionAnchors) ||
			containsAny(lines[i], bySharesSectionAnchors) ||
			containsAny(lines[i], byTurnoverSectionAnchors) {
			end = i
			break
		}
	}
	return lines[start:end], true
}

// extractSummary runs the ordered rule set over the summary span. Each rule
// claims the first unconsumed line containing one of its anchors and takes
// the first numeric token after the anchor. Missing anchors leave the field
// empty and are reported, never raised.
func (e *Extractor) extractSummary(span []string, date time.Time) (*domain.MarketSummary, []string) {
	summary := &domain.MarketSummary{Date: date}
	consumed := make([]bool, len(span))
	var missing []string

	for _, rule := range summaryRules {
		value, ok := applyRule(span, consumed, rule)
		if !ok {
			missing = append(missing, rule.Field)
			continue
		}
		assignField(summary, rule.Field, value)
	}

	return summary, missing
}

// applyRule finds the rule's anchor on an unconsumed line and captures the
// normalized value immediately after it.
func applyRule(span []string, consumed []bool, rule FieldRule) (string, bool) {
	for i, line := range span {
		if consumed[i] {
			continue
		}
		for _, anchor := range rule.Anchors {
			idx := strings.Index(line, anchor)
			if idx < 0 {
				continue
			}
			rest := line[idx+len(anchor):]
			match := valuePattern.FindString(rest)
			if match == "" {
				continue
			}
			consumed[i] = true
			return NormalizeNumber(match), true
		}
	}
	return "", false
}

func assignField(summary *domain.MarketSummary, field, value string) {
	switch field {
	case fieldTradingVolume:
		summary.TradingVolume = value
	case fieldAdvancedStocks:
		summary.AdvancedStocks = value
	case fieldDeclinedStocks:
		summary.DeclinedStocks = value
	case fieldUnchangedStocks:
		summary.UnchangedStocks = value
	case fieldTurnover:
		summary.TurnoverHKD = value
	case fieldDeals:
		summary.Deals = value
	case fieldMorningClose:
		summary.MorningClose = value
	case fieldAfternoonClose:
		summary.AfternoonClose = value
	case fieldChange:
		summary.Change = value
	case fieldChangePercent:
		summary.ChangePercent = value
	}
}

// extractRanking collects well-formed rows with contiguous ranks starting
// at 1. Malformed lines are skipped; a gap in rank order ends the list. The
// list is never padded to ten rows.
func (e *Extractor) extractRanking(span []string, date time.Time) []domain.RankedInstrument {
	var rows []domain.RankedInstrument
	expected := 1

	for _, line := range span {
		m := rankedRowPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rank, err := strconv.Atoi(m[1])
		if err != nil || rank != expected {
			if rank > expected {
				break
			}
			continue
		}

		rows = append(rows, domain.RankedInstrument{
			Date:           date,
			Rank:           rank,
			InstrumentCode: m[2],
			Ticker:         m[3],
			ProductID:      m[4],
			Name:           strings.TrimSpace(m[5]),
			Currency:       m[6],
			SharesTraded:   NormalizeNumber(m[7]),
			TurnoverValue:  NormalizeNumber(m[8]),
			High:           NormalizeNumber(m[9]),
			Low:            NormalizeNumber(m[10]),
		})
		expected++
		if len(rows) == maxRankedRows {
			break
		}
	}

	return rows
}

// NormalizeNumber strips grouping separators (ASCII and full-width commas)
// and presentation suffixes so "12,345", "12，345", and "12345" all yield
// the same stripped numeric string.
func NormalizeNumber(s string) string {
	replacer := strings.NewReplacer(",", "", "，", "", "%", "", "$", "")
	return strings.TrimSpace(replacer.Replace(s))
}

func containsAny(line string, anchors []string) bool {
	for _, anchor := range anchors {
		if strings.Contains(line, anchor) {
			return true
		}
	}
	return false
}

// Package calendar enumerates the trading dates for a run's month scope.
// It is pure calendar math: no network, no file I/O. Weekly off days and
// explicitly configured holidays are excluded; everything else in the
// configured months is a trading date.
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateKeyLayout is the canonical dateKey format used across the pipeline.
const DateKeyLayout = "2006-01-02"

// TradingDate is a single open-market calendar date within a run's scope.
type TradingDate struct {
	Date time.Time
	Key  string
}

// Month identifies one year-month of the scope.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a "YYYY-MM" scope entry.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// Scope holds the resolved calendar configuration for one run.
type Scope struct {
	months    []Month
	holidays  map[string]struct{}
	weeklyOff map[time.Weekday]struct{}
}

// NewScope builds a Scope from raw configuration strings. Any malformed
// month, holiday, or weekday is a configuration error: the caller must treat
// it as fatal before any fetch begins.
func NewScope(months, holidays, weeklyOff []string) (*Scope, error) {
	if len(months) == 0 {
		return nil, fmt.Errorf("scope requires at least one month")
	}

	s := &Scope{
		holidays:  make(map[string]struct{}, len(holidays)),
		weeklyOff: make(map[time.Weekday]struct{}, len(weeklyOff)),
	}

	for _, m := range months {
		parsed, err := ParseMonth(m)
		if err != nil {
			return nil, err
		}
		s.months = append(s.months, parsed)
	}
	sort.Slice(s.months, func(i, j int) bool {
		if s.months[i].Year != s.months[j].Year {
			return s.months[i].Year < s.months[j].Year
		}
		return s.months[i].Month < s.months[j].Month
	})

	for _, h := range holidays {
		t, err := time.Parse(DateKeyLayout, strings.TrimSpace(h))
		if err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", h, err)
		}
		s.holidays[t.Format(DateKeyLayout)] = struct{}{}
	}

	for _, w := range weeklyOff {
		day, err := parseWeekday(w)
		if err != nil {
			return nil, err
		}
		s.weeklyOff[day] = struct{}{}
	}

	return s, nil
}

// TradingDates returns the ordered, duplicate-free set of trading dates for
// the scope. A holiday that falls on an already-excluded weekly off day is
// simply skipped once; it never double-counts or errors.
func (s *Scope) TradingDates() []TradingDate {
	var dates []TradingDate
	for _, m := range s.months {
		first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
		for d := first; d.Month() == m.Month; d = d.AddDate(0, 0, 1) {
			if _, off := s.weeklyOff[d.Weekday()]; off {
				continue
			}
			key := d.Format(DateKeyLayout)
			if _, holiday := s.holidays[key]; holiday {
				continue
			}
			dates = append(dates, TradingDate{Date: d, Key: key})
		}
	}
	return dates
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon":
		return time.Monday, nil
	case "tuesday", "tue":
		return time.Tuesday, nil
	case "wednesday", "wed":
		return time.Wednesday, nil
	case "thursday", "thu":
		return time.Thursday, nil
	case "friday", "fri":
		return time.Friday, nil
	case "saturday", "sat":
		return time.Saturday, nil
	}
	return time.Sunday, fmt.Errorf("invalid weekday %q", s)
}

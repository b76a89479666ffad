// Package target maps trading dates to the date-parameterized report
// locators they are fetched from. Building and parsing are deterministic
// inverses so a failed fetch can always be logged against a readable date.
package target

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"hkexcli/internal/calendar"
)

// FetchTarget addresses one trading date's report page.
type FetchTarget struct {
	Locator string
	DateKey string
	Date    time.Time
}

// Builder constructs locators of the form
// {base}/{locale}/{product-line}/{report-family}/d{YY}{MM}{DD}{segment}.htm.
type Builder struct {
	BaseURL      string
	Locale       string
	ProductLine  string
	ReportFamily string
	Segment      string
}

var locatorPattern = regexp.MustCompile(`/d(\d{2})(\d{2})(\d{2})([a-z])\.htm$`)

// Build returns the fetch target for a trading date. No side effects.
func (b Builder) Build(td calendar.TradingDate) FetchTarget {
	locator := fmt.Sprintf("%s/%s/%s/%s/d%02d%02d%02d%s.htm",
		strings.TrimRight(b.BaseURL, "/"),
		b.Locale,
		b.ProductLine,
		b.ReportFamily,
		td.Date.Year()%100,
		int(td.Date.Month()),
		td.Date.Day(),
		b.Segment,
	)
	return FetchTarget{Locator: locator, DateKey: td.Key, Date: td.Date}
}

// ParseLocator recovers the dateKey embedded in a locator. Two-digit years
// are resolved into the 2000s, which covers the report family's history.
func ParseLocator(locator string) (string, error) {
	m := locatorPattern.FindStringSubmatch(locator)
	if m == nil {
		return "", fmt.Errorf("locator %q does not match report pattern", locator)
	}

	dateKey := fmt.Sprintf("20%s-%s-%s", m[1], m[2], m[3])
	if _, err := time.Parse(calendar.DateKeyLayout, dateKey); err != nil {
		return "", fmt.Errorf("locator %q embeds invalid date: %w", locator, err)
	}
	return dateKey, nil
}

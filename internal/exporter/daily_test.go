package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hkexcli/pkg/contracts/domain"
)

func setupSink(t *testing.T, dedupe bool) (*DailySink, string) {
	t.Helper()
	dir := t.TempDir()
	sink, err := NewDailySink(dir, dedupe)
	require.NoError(t, err)
	return sink, dir
}

func summaryRowFor(dateKey string) []string {
	date, _ := time.Parse("2006-01-02", dateKey)
	return SummaryRow(domain.MarketSummary{
		Date:           date,
		TradingVolume:  "171434722375",
		AdvancedStocks: "1033",
		TurnoverHKD:    "130507434176",
	})
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(content)), "\n")
}

func TestWritePerDate_OverwriteIsIdempotent(t *testing.T) {
	sink, dir := setupSink(t, false)
	row := summaryRowFor("2025-09-02")

	require.NoError(t, sink.WritePerDate("2025-09-02", KindSummary, [][]string{row}))
	require.NoError(t, sink.WritePerDate("2025-09-02", KindSummary, [][]string{row}))

	lines := readLines(t, filepath.Join(dir, "hkex_summary_2025_09_02.csv"))
	require.Len(t, lines, 2) // header + one record, no self-append
	assert.Equal(t, strings.Join(SummaryHeaders(), ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2025-09-02,171434722375,1033,"))
}

func TestWritePerDate_NullFieldsAreEmptyCells(t *testing.T) {
	sink, dir := setupSink(t, false)
	date := time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC)
	row := SummaryRow(domain.MarketSummary{Date: date, TradingVolume: "123"})

	require.NoError(t, sink.WritePerDate("2025-09-03", KindSummary, [][]string{row}))

	lines := readLines(t, filepath.Join(dir, "hkex_summary_2025_09_03.csv"))
	assert.Equal(t, "2025-09-03,123,,,,,,,,,", lines[1])
	assert.NotContains(t, lines[1], "null")
}

func TestAppendMerged_OneHeaderManyRows(t *testing.T) {
	sink, dir := setupSink(t, false)

	for day := 1; day <= 5; day++ {
		key := fmt.Sprintf("2025-09-%02d", day)
		require.NoError(t, sink.AppendMerged(KindSummary, [][]string{summaryRowFor(key)}))
	}

	lines := readLines(t, filepath.Join(dir, "hkex_summary_merged.csv"))
	require.Len(t, lines, 6) // exactly one header + 5 data rows
	assert.Equal(t, strings.Join(SummaryHeaders(), ","), lines[0])
	for _, line := range lines[1:] {
		assert.False(t, strings.HasPrefix(line, "Date,"), "duplicate header: %s", line)
	}
}

func TestAppendMerged_ReusedFileKeepsSingleHeader(t *testing.T) {
	sink, dir := setupSink(t, false)
	require.NoError(t, sink.AppendMerged(KindSummary, [][]string{summaryRowFor("2025-09-01")}))

	// A later run against the same merged file must not re-write the header.
	sink2, err := NewDailySink(dir, false)
	require.NoError(t, err)
	require.NoError(t, sink2.AppendMerged(KindSummary, [][]string{summaryRowFor("2025-09-02")}))

	lines := readLines(t, filepath.Join(dir, "hkex_summary_merged.csv"))
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(SummaryHeaders(), ","), lines[0])
}

func TestAppendMerged_DedupeByDateKey(t *testing.T) {
	sink, dir := setupSink(t, true)
	require.NoError(t, sink.AppendMerged(KindSummary, [][]string{summaryRowFor("2025-09-01")}))
	require.NoError(t, sink.AppendMerged(KindSummary, [][]string{summaryRowFor("2025-09-01")}))

	// A fresh sink rescans the merged file and still skips the known date.
	sink2, err := NewDailySink(dir, true)
	require.NoError(t, err)
	require.NoError(t, sink2.AppendMerged(KindSummary, [][]string{
		summaryRowFor("2025-09-01"),
		summaryRowFor("2025-09-02"),
	}))

	lines := readLines(t, filepath.Join(dir, "hkex_summary_merged.csv"))
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "2025-09-01,"))
	assert.True(t, strings.HasPrefix(lines[2], "2025-09-02,"))
}

func TestAppendMerged_ConcurrentAppendsStayIntact(t *testing.T) {
	sink, dir := setupSink(t, false)

	var wg sync.WaitGroup
	for day := 1; day <= 20; day++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			key := fmt.Sprintf("2025-09-%02d", day)
			assert.NoError(t, sink.AppendMerged(KindSummary, [][]string{summaryRowFor(key)}))
		}(day)
	}
	wg.Wait()

	lines := readLines(t, filepath.Join(dir, "hkex_summary_merged.csv"))
	require.Len(t, lines, 21)
	expectedCols := len(SummaryHeaders())
	for _, line := range lines {
		assert.Len(t, strings.Split(line, ","), expectedCols, "interleaved row: %s", line)
	}
}

func TestAppendMerged_KindsAreIndependent(t *testing.T) {
	sink, dir := setupSink(t, false)
	date := time.Date(2025, time.September, 2, 0, 0, 0, 0, time.UTC)
	ranked := RankedRow(domain.RankedInstrument{
		Date: date, Rank: 1, InstrumentCode: "00700", Ticker: "TCH",
		ProductID: "0700-HK", Name: "TENCENT HOLDINGS", Currency: "HKD",
		SharesTraded: "22334455", TurnoverValue: "7722334455",
		High: "371.20", Low: "362.00",
	})

	require.NoError(t, sink.AppendMerged(KindSummary, [][]string{summaryRowFor("2025-09-02")}))
	require.NoError(t, sink.AppendMerged(KindMostActiveShares, [][]string{ranked}))

	summaryLines := readLines(t, filepath.Join(dir, "hkex_summary_merged.csv"))
	rankedLines := readLines(t, filepath.Join(dir, "hkex_most_active_by_shares_merged.csv"))
	assert.Equal(t, strings.Join(SummaryHeaders(), ","), summaryLines[0])
	assert.Equal(t, strings.Join(RankedHeaders(), ","), rankedLines[0])
	assert.Equal(t, "2025-09-02,1,00700,TCH,0700-HK,TENCENT HOLDINGS,HKD,22334455,7722334455,371.20,362.00", rankedLines[1])
}

func TestWritePerDate_NoRowsWritesNothing(t *testing.T) {
	sink, dir := setupSink(t, false)
	require.NoError(t, sink.WritePerDate("2025-09-02", KindSummary, nil))

	_, err := os.Stat(filepath.Join(dir, "hkex_summary_2025_09_02.csv"))
	assert.True(t, os.IsNotExist(err))
}

// Package pipeline coordinates one scraping run: enumerate trading dates,
// fetch each date's report through the bounded executor, extract records,
// and hand rows to the output sink. Each date moves through its own state
// machine; one date's failure never aborts the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"hkexcli/internal/calendar"
	"hkexcli/internal/config"
	"hkexcli/internal/exporter"
	"hkexcli/internal/extract"
	"hkexcli/internal/fetch"
	"hkexcli/internal/target"
)

// ErrAllDatesFailed is returned when every processed date ended in a failure
// status. Empty extractions are not failures for this purpose.
var ErrAllDatesFailed = errors.New("all scheduled dates failed")

// RunSummary reports the outcome of one run.
type RunSummary struct {
	RunID           string
	Processed       int
	Succeeded       int
	Failed          int
	ExtractionEmpty int
	FilesWritten    int
	Duration        time.Duration
}

// Runner wires the calendar, executor, extractor, and sink into one run.
type Runner struct {
	cfg       *config.Config
	executor  *fetch.Executor
	extractor *extract.Extractor
	sink      exporter.Sink
	logger    *slog.Logger
}

// NewRunner builds a runner from already-constructed stages.
func NewRunner(cfg *config.Config, executor *fetch.Executor, extractor *extract.Extractor, sink exporter.Sink, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		executor:  executor,
		extractor: extractor,
		sink:      sink,
		logger:    logger,
	}
}

// Run executes the whole pipeline for the configured scope. It always
// returns a summary; the error is non-nil only for fatal configuration
// problems or when every processed date failed. Cancelling ctx stops the
// run between dates: dates not yet started are abandoned in pending.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	runID := uuid.NewString()
	logger := r.logger.With(slog.String("run_id", runID))
	started := time.Now()

	scope, err := calendar.NewScope(r.cfg.Scope.Months, r.cfg.Scope.Holidays, r.cfg.Scope.WeeklyOff)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar scope: %w", err)
	}
	dates := scope.TradingDates()

	builder := target.Builder{
		BaseURL:      r.cfg.Source.BaseURL,
		Locale:       r.cfg.Source.Locale,
		ProductLine:  r.cfg.Source.ProductLine,
		ReportFamily: r.cfg.Source.ReportFamily,
		Segment:      r.cfg.Source.Segment,
	}

	logger.Info("run started",
		slog.Int("scheduled_dates", len(dates)),
		slog.Int("max_concurrent", r.cfg.Fetch.MaxConcurrent),
		slog.Int("requests_per_minute", r.cfg.Fetch.RequestsPerMinute))

	states := make([]*DateState, len(dates))
	var filesWritten atomic.Int64

	var g errgroup.Group
	for i, td := range dates {
		state := NewDateState(td.Key)
		states[i] = state
		tgt := builder.Build(td)

		g.Go(func() error {
			r.processDate(ctx, logger, tgt, state, &filesWritten)
			return nil
		})
	}
	g.Wait()

	summary := r.summarize(runID, states, started, int(filesWritten.Load()))
	logger.Info("run finished",
		slog.Int("processed", summary.Processed),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed),
		slog.Int("extraction_empty", summary.ExtractionEmpty),
		slog.Int("files_written", summary.FilesWritten),
		slog.Duration("duration", summary.Duration))

	if summary.Processed > 0 && summary.Failed == summary.Processed {
		return summary, ErrAllDatesFailed
	}
	return summary, nil
}

// processDate walks one date through fetch, extract, and write. Terminal
// failure statuses are recorded on the state; nothing is returned because
// the run carries on regardless.
func (r *Runner) processDate(ctx context.Context, logger *slog.Logger, tgt target.FetchTarget, state *DateState, filesWritten *atomic.Int64) {
	if ctx.Err() != nil {
		return
	}

	dateAttr := slog.String("date", tgt.DateKey)

	state.Transition(StatusFetching)
	content, err := r.executor.Execute(ctx, tgt)
	if err != nil {
		state.Fail(StatusFetchFailed, err)
		logger.Error("fetch failed", dateAttr, slog.String("error", err.Error()))
		return
	}
	state.Transition(StatusFetched)

	state.Transition(StatusExtracting)
	result, err := r.extractor.Extract(content, tgt.Date)
	if err != nil {
		state.Fail(StatusExtractionEmpty, err)
		logger.Warn("nothing extractable", dateAttr)
		return
	}

	rows := collectRows(result)
	if len(rows) == 0 {
		state.Fail(StatusExtractionEmpty, extract.ErrExtractionEmpty)
		logger.Warn("sections found but no records", dateAttr)
		return
	}
	state.Transition(StatusExtracted)

	state.Transition(StatusWriting)
	written, err := r.writeRows(tgt.DateKey, rows)
	filesWritten.Add(int64(written))
	if err != nil {
		state.Fail(StatusWriteFailed, err)
		logger.Error("write failed", dateAttr, slog.String("error", err.Error()))
		return
	}
	state.Transition(StatusWritten)

	logger.Info("date written", dateAttr,
		slog.Int("files", written),
		slog.Any("missing_fields", result.MissingFields))
}

// collectRows materializes the extraction result into per-kind CSV rows.
func collectRows(result *extract.Result) map[exporter.Kind][][]string {
	rows := make(map[exporter.Kind][][]string)
	if result.Summary != nil && !result.Summary.IsEmpty() {
		rows[exporter.KindSummary] = [][]string{exporter.SummaryRow(*result.Summary)}
	}
	if len(result.ByShares) > 0 {
		ranked := make([][]string, 0, len(result.ByShares))
		for _, ri := range result.ByShares {
			ranked = append(ranked, exporter.RankedRow(ri))
		}
		rows[exporter.KindMostActiveShares] = ranked
	}
	if len(result.ByTurnover) > 0 {
		ranked := make([][]string, 0, len(result.ByTurnover))
		for _, ri := range result.ByTurnover {
			ranked = append(ranked, exporter.RankedRow(ri))
		}
		rows[exporter.KindMostActiveTurnover] = ranked
	}
	return rows
}

// writeRows writes the per-date file and appends to the merged file for
// every kind that produced rows. Returns the number of per-date files
// written before any error.
func (r *Runner) writeRows(dateKey string, rows map[exporter.Kind][][]string) (int, error) {
	written := 0
	for _, kind := range exporter.Kinds() {
		kindRows, ok := rows[kind]
		if !ok {
			continue
		}
		if err := r.sink.WritePerDate(dateKey, kind, kindRows); err != nil {
			return written, fmt.Errorf("per-date write for %s/%s: %w", kind, dateKey, err)
		}
		written++
		if err := r.sink.AppendMerged(kind, kindRows); err != nil {
			return written, fmt.Errorf("merged append for %s/%s: %w", kind, dateKey, err)
		}
	}
	return written, nil
}

// summarize folds the per-date terminal states into a run summary. Dates
// still pending were abandoned by cancellation and do not count as
// processed.
func (r *Runner) summarize(runID string, states []*DateState, started time.Time, filesWritten int) *RunSummary {
	summary := &RunSummary{
		RunID:        runID,
		FilesWritten: filesWritten,
		Duration:     time.Since(started),
	}
	for _, state := range states {
		switch state.Current() {
		case StatusPending:
			continue
		case StatusWritten:
			summary.Succeeded++
		case StatusFetchFailed, StatusWriteFailed:
			summary.Failed++
		case StatusExtractionEmpty:
			summary.ExtractionEmpty++
		}
		summary.Processed++
	}
	return summary
}

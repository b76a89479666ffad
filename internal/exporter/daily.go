package exporter

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Kind identifies an output stream with its own per-date files, merged file,
// and fixed header.
type Kind string

const (
	KindSummary            Kind = "summary"
	KindMostActiveShares   Kind = "most_active_by_shares"
	KindMostActiveTurnover Kind = "most_active_by_turnover"
)

// Kinds lists all output streams in a stable order.
func Kinds() []Kind {
	return []Kind{KindSummary, KindMostActiveShares, KindMostActiveTurnover}
}

// HeadersFor returns the fixed header for a kind.
func HeadersFor(kind Kind) []string {
	if kind == KindSummary {
		return SummaryHeaders()
	}
	return RankedHeaders()
}

// Sink receives extracted rows for one date. Implementations must make
// merged appends safe against concurrent callers; callers rely on the sink,
// not their own discipline, for merged-file row integrity.
type Sink interface {
	WritePerDate(dateKey string, kind Kind, rows [][]string) error
	AppendMerged(kind Kind, rows [][]string) error
}

// DailySink writes one file per processed date (overwritten on rerun) and
// appends normalized rows to a cumulative merged file per kind. The merged
// header is written exactly once, guarded by an existence check, and reused
// merged files never get a duplicate header. With dedupe enabled, rows whose
// dateKey already exists in the merged file are skipped, which makes reruns
// against the same merged file additive without duplication.
type DailySink struct {
	csvWriter *CSVWriter
	dedupe    bool

	mu            sync.Mutex
	headerWritten map[Kind]bool
	seen          map[Kind]map[string]bool
}

// NewDailySink creates a sink rooted at outDir. When dedupe is set, the
// existing merged files are scanned once for already-present dateKeys.
func NewDailySink(outDir string, dedupe bool) (*DailySink, error) {
	s := &DailySink{
		csvWriter:     NewCSVWriter(outDir),
		dedupe:        dedupe,
		headerWritten: make(map[Kind]bool),
		seen:          make(map[Kind]map[string]bool),
	}

	for _, kind := range Kinds() {
		s.seen[kind] = make(map[string]bool)
		if !dedupe {
			continue
		}
		dates, err := s.csvWriter.ReadColumn(mergedFilename(kind), 0)
		if err != nil {
			return nil, fmt.Errorf("failed to scan merged file for %s: %w", kind, err)
		}
		for _, d := range dates {
			s.seen[kind][d] = true
		}
	}

	return s, nil
}

// WritePerDate overwrites the per-date file for dateKey with the header and
// the given rows. Rerunning a date fully replaces the file, never appends.
func (s *DailySink) WritePerDate(dateKey string, kind Kind, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	return s.csvWriter.WriteSimpleCSV(perDateFilename(kind, dateKey), HeadersFor(kind), rows)
}

// AppendMerged appends rows to the kind's merged file under the sink's lock.
func (s *DailySink) AppendMerged(kind Kind, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureMergedHeader(kind); err != nil {
		return err
	}

	out := rows
	if s.dedupe {
		out = make([][]string, 0, len(rows))
		for _, row := range rows {
			if len(row) > 0 && s.seen[kind][row[0]] {
				continue
			}
			out = append(out, row)
		}
	}
	if len(out) == 0 {
		return nil
	}

	if err := s.csvWriter.AppendToCSV(mergedFilename(kind), out); err != nil {
		return err
	}
	for _, row := range out {
		if len(row) > 0 {
			s.seen[kind][row[0]] = true
		}
	}
	return nil
}

// ensureMergedHeader writes the header line if the merged file does not yet
// exist or is empty. Must be called with the lock held.
func (s *DailySink) ensureMergedHeader(kind Kind) error {
	if s.headerWritten[kind] {
		return nil
	}

	existing, err := s.csvWriter.ReadColumn(mergedFilename(kind), 0)
	if err != nil {
		return err
	}
	hasFile := len(existing) > 0
	if !hasFile {
		// ReadColumn skips the header line, so an existing header-only file
		// also reports empty; probe the header row itself.
		hasFile, err = s.mergedFileExists(kind)
		if err != nil {
			return err
		}
	}
	if !hasFile {
		if err := s.csvWriter.WriteSimpleCSV(mergedFilename(kind), HeadersFor(kind), nil); err != nil {
			return err
		}
	}
	s.headerWritten[kind] = true
	return nil
}

func (s *DailySink) mergedFileExists(kind Kind) (bool, error) {
	return fileHasContent(s.csvWriter.resolvePath(mergedFilename(kind)))
}

func perDateFilename(kind Kind, dateKey string) string {
	return fmt.Sprintf("hkex_%s_%s.csv", kind, strings.ReplaceAll(dateKey, "-", "_"))
}

func mergedFilename(kind Kind) string {
	return fmt.Sprintf("hkex_%s_merged.csv", kind)
}

func fileHasContent(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Size() > 0, nil
}

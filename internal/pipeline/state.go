package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// DateStatus is the per-date state machine status.
type DateStatus string

const (
	StatusPending         DateStatus = "pending"
	StatusFetching        DateStatus = "fetching"
	StatusFetched         DateStatus = "fetched"
	StatusFetchFailed     DateStatus = "fetch-failed"
	StatusExtracting      DateStatus = "extracting"
	StatusExtracted       DateStatus = "extracted"
	StatusExtractionEmpty DateStatus = "extraction-empty"
	StatusWriting         DateStatus = "writing"
	StatusWritten         DateStatus = "written"
	StatusWriteFailed     DateStatus = "write-failed"
)

// validTransitions encodes the per-date state machine. No transition ever
// re-enters pending.
var validTransitions = map[DateStatus][]DateStatus{
	StatusPending:    {StatusFetching},
	StatusFetching:   {StatusFetched, StatusFetchFailed},
	StatusFetched:    {StatusExtracting},
	StatusExtracting: {StatusExtracted, StatusExtractionEmpty},
	StatusExtracted:  {StatusWriting},
	StatusWriting:    {StatusWritten, StatusWriteFailed},
}

// DateState tracks one trading date through the run.
type DateState struct {
	mu sync.RWMutex

	DateKey   string
	Status    DateStatus
	StartTime time.Time
	EndTime   *time.Time
	Err       error
}

// NewDateState creates a pending state for a date.
func NewDateState(dateKey string) *DateState {
	return &DateState{
		DateKey: dateKey,
		Status:  StatusPending,
	}
}

// Transition moves the state machine forward. An invalid transition is a
// programming error and is rejected.
func (s *DateState) Transition(to DateStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, allowed := range validTransitions[s.Status] {
		if allowed == to {
			if s.Status == StatusPending {
				s.StartTime = time.Now()
			}
			s.Status = to
			if isTerminal(to) {
				now := time.Now()
				s.EndTime = &now
			}
			return nil
		}
	}
	return fmt.Errorf("invalid transition for %s: %s -> %s", s.DateKey, s.Status, to)
}

// Fail records the error and moves to the given terminal status.
func (s *DateState) Fail(to DateStatus, err error) error {
	if terr := s.Transition(to); terr != nil {
		return terr
	}
	s.mu.Lock()
	s.Err = err
	s.mu.Unlock()
	return nil
}

// Current returns the current status.
func (s *DateState) Current() DateStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Terminal reports whether the date has reached a terminal status.
func (s *DateState) Terminal() bool {
	return isTerminal(s.Current())
}

// Duration returns how long the date spent in the pipeline.
func (s *DateState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.StartTime.IsZero() {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}

func isTerminal(status DateStatus) bool {
	switch status {
	case StatusWritten, StatusFetchFailed, StatusExtractionEmpty, StatusWriteFailed:
		return true
	}
	return false
}

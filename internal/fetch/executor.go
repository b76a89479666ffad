package fetch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"hkexcli/internal/target"
)

// maxRetries bounds transient-failure retries per target.
const maxRetries = 1

// Executor fetches targets with a maximum number of in-flight requests and
// a requests-per-minute ceiling shared across the whole run. The per-minute
// ceiling is the binding constraint when concurrency alone would exceed it.
type Executor struct {
	fetcher ContentFetcher
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// NewExecutor builds an executor. timeout bounds each navigation and must be
// shorter than any outer orchestration deadline.
func NewExecutor(fetcher ContentFetcher, maxConcurrent, requestsPerMinute int, timeout time.Duration, logger *slog.Logger) *Executor {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	return &Executor{
		fetcher: fetcher,
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		timeout: timeout,
		logger:  logger,
	}
}

// Execute retrieves one target, retrying at most once on a transient
// (timeout or transport) failure. A rendered-but-empty page is a success
// here; non-2xx document responses are failures and are not retried. On
// exhausted retries the classified error is returned and the caller moves
// on to the remaining targets.
func (e *Executor) Execute(ctx context.Context, tgt target.FetchTarget) (*RawContent, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, Classify(tgt.Locator, err)
	}
	defer e.sem.Release(1)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, Classify(tgt.Locator, err)
		}

		fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
		text, err := e.fetcher.Fetch(fetchCtx, tgt.Locator)
		cancel()

		if err == nil {
			return &RawContent{DateKey: tgt.DateKey, Text: text, FetchedAt: time.Now()}, nil
		}

		lastErr = err
		var fe *FetchError
		if errors.As(err, &fe) && fe.Retryable() && attempt < maxRetries {
			e.logger.Warn("transient fetch failure, retrying",
				slog.String("date", tgt.DateKey),
				slog.String("kind", string(fe.Kind)),
				slog.Int("attempt", attempt+1))
			continue
		}
		break
	}

	return nil, lastErr
}

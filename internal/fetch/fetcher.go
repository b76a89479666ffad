// Package fetch retrieves rendered report pages under concurrency, rate,
// timeout, and retry discipline. The browser dependency is isolated behind
// the ContentFetcher interface so the executor is testable with canned text.
package fetch

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// ContentFetcher retrieves the fully rendered text content of a locator.
type ContentFetcher interface {
	Fetch(ctx context.Context, locator string) (string, error)
}

// RawContent is the rendered text for one date, handed straight to the
// extractor and never persisted.
type RawContent struct {
	DateKey   string
	Text      string
	FetchedAt time.Time
}

// ChromeFetcher renders report pages in a shared headless Chrome instance,
// one tab per fetch.
type ChromeFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewChromeFetcher starts a Chrome exec allocator. Callers must Close it
// when the run ends.
func NewChromeFetcher(headless bool) *ChromeFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &ChromeFetcher{allocCtx: allocCtx, cancel: cancel}
}

// Close tears down the browser allocator.
func (f *ChromeFetcher) Close() {
	f.cancel()
}

// Fetch navigates a fresh tab to the locator and returns the rendered body
// text. The caller's context deadline bounds the whole navigation. A
// rendered-but-empty page is returned as-is: emptiness is an extraction
// concern, not a fetch failure.
func (f *ChromeFetcher) Fetch(ctx context.Context, locator string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.allocCtx)
	defer cancelTab()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		tabCtx, cancelDeadline = context.WithDeadline(tabCtx, deadline)
		defer cancelDeadline()
	}

	// Capture the document response status off the CDP event stream.
	var status atomic.Int64
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok {
			if resp.Type == network.ResourceTypeDocument {
				status.CompareAndSwap(0, resp.Response.Status)
			}
		}
	})

	var text string
	err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(locator),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Text("body", &text, chromedp.ByQuery),
	)
	if err != nil {
		return "", Classify(locator, err)
	}

	if code := status.Load(); code >= 400 {
		return "", &FetchError{Kind: ErrKindHTTPStatus, Locator: locator, Status: int(code)}
	}

	return text, nil
}

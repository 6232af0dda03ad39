package processing

import (
	"context"
	"strings"
	"time"
)

// Remote is a handle to one submitted or referenced job, identified by its
// monitoring URL. It holds no other mutable state: every poll is an
// independent GET against the same URL, so concurrent callers can each drive
// their own Remote without coordination.
type Remote struct {
	url      string
	c        *Client
	sleepMax time.Duration

	// sleep is replaced in tests to observe wait durations.
	sleep func(context.Context, time.Duration) error
}

// NewRemote returns a handle for the job monitored at url.
func (c *Client) NewRemote(url string) *Remote {
	return &Remote{
		url:      url,
		c:        c,
		sleepMax: c.sleepMax,
		sleep:    sleepContext,
	}
}

// URL returns the monitoring URL.
func (r *Remote) URL() string {
	return r.url
}

// RequestID returns the job identifier, the trailing path segment of the
// monitoring URL.
func (r *Remote) RequestID() string {
	return r.url[strings.LastIndex(r.url, "/")+1:]
}

// Status performs one poll against the monitoring URL and maps the reported
// state onto the status state machine. A missing or unrecognized status is a
// ProtocolError.
func (r *Remote) Status(ctx context.Context) (Status, error) {
	resp, err := r.c.Fetch(ctx, r.url)
	if err != nil {
		return "", err
	}
	raw, ok := resp.stringField("status")
	if !ok {
		return "", &ProtocolError{URL: r.url, Reason: `missing "status" field`}
	}
	return parseStatus(r.url, raw)
}

// Wait polls the job until it reaches a terminal state. The first poll
// happens immediately; afterwards the interval starts at one second and
// grows by a factor of 1.5 per poll, clamped to the sleep ceiling. The loop
// has no iteration cap: the caller bounds it through ctx, which is honored
// both before each poll and during each sleep.
//
// A failed job yields a ProcessingFailedError carrying the title/detail pair
// from the results document when the server provides one.
func (r *Remote) Wait(ctx context.Context) error {
	interval := time.Second
	var last Status

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		status, err := r.Status(ctx)
		if err != nil {
			return err
		}
		if status != last {
			if n := r.c.notifier; n != nil {
				n.StatusChanged(last, status)
			}
			last = status
		}

		if status.Terminal() {
			if status == StatusSuccessful {
				return nil
			}
			return r.failure(ctx)
		}

		if interval > r.sleepMax {
			interval = r.sleepMax
		}
		if err := r.sleep(ctx, interval); err != nil {
			return err
		}
		interval = time.Duration(float64(interval) * 1.5)
	}
}

// failure builds the error for a failed job from the results document. When
// that document cannot be fetched or carries no title/detail, a generic
// message is used; the failure itself is never masked.
func (r *Remote) failure(ctx context.Context) error {
	message := "processing failed"

	if results, err := r.Result(ctx); err == nil {
		if title, ok := results.stringField("title"); ok && title != "" {
			message = title
		}
		if detail, ok := results.stringField("detail"); ok && detail != "" {
			message = message + ": " + detail
		}
	}

	return &ProcessingFailedError{JobURL: r.url, Message: message}
}

// Download waits for the job to complete, resolves its results document and
// downloads the produced artifact. An empty target derives the local file
// name from the asset URL. This is the single entry point sequencing
// poll, resolve and verified transfer.
func (r *Remote) Download(ctx context.Context, target string) (string, error) {
	if err := r.Wait(ctx); err != nil {
		return "", err
	}
	results, err := r.Result(ctx)
	if err != nil {
		return "", err
	}
	return results.Download(ctx, target)
}

// sleepContext sleeps for d unless ctx is canceled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package processing

import (
	"time"

	apihttp "github.com/zakjan/cads-api-client/internal/http"
)

type options struct {
	http            apihttp.Options
	sleepMax        time.Duration
	downloadTimeout time.Duration
	notifier        Notifier
	exactURL        bool
}

func defaultOptions() options {
	return options{
		http:            apihttp.DefaultOptions(),
		sleepMax:        120 * time.Second,
		downloadTimeout: 60 * time.Second,
	}
}

// Option is a functional option for configuring the client.
type Option func(*options)

// WithHTTPOptions replaces the transport configuration (timeouts, retry
// policy, default headers).
func WithHTTPOptions(opts apihttp.Options) Option {
	return func(o *options) {
		o.http = opts
	}
}

// WithAuthHeader adds a header to every request, e.g. an API token.
func WithAuthHeader(name, value string) Option {
	return func(o *options) {
		if o.http.Headers == nil {
			o.http.Headers = map[string]string{}
		}
		o.http.Headers[name] = value
	}
}

// WithSleepMax sets the ceiling for the poll interval while waiting on a job.
// Default: 120s.
func WithSleepMax(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.sleepMax = d
		}
	}
}

// WithDownloadTimeout bounds a whole artifact transfer, so a stalled download
// cannot hang forever even when individual chunks keep arriving.
// Default: 60s.
func WithDownloadTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.downloadTimeout = d
		}
	}
}

// WithNotifier registers a side channel for status transitions and, when the
// notifier also implements TransferNotifier, download progress.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithExactURL disables appending the supported API version to the base URL.
func WithExactURL() Option {
	return func(o *options) {
		o.exactURL = true
	}
}

// Notifier receives job status transitions. The old status is empty on the
// first observation. Implementations are called from the polling goroutine
// and must not block.
type Notifier interface {
	StatusChanged(old, new Status)
}

// TransferNotifier optionally extends a Notifier with download progress.
type TransferNotifier interface {
	TransferStarted(url string, size int64)
	TransferProgress(n int64)
	TransferDone(total int64)
}

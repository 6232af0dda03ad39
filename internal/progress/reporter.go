package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zakjan/cads-api-client/pkg/processing"
)

// Options configures the progress reporter.
type Options struct {
	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the transfer display.
	// Default: 500ms
	UpdateInterval time.Duration
}

// Reporter outputs human-readable job and transfer progress. It implements
// processing.Notifier and processing.TransferNotifier.
type Reporter struct {
	opts Options

	mu         sync.Mutex
	totalSize  int64
	received   atomic.Int64
	startTime  time.Time
	lastUpdate time.Time
	lastBytes  int64
	stopCh     chan struct{}
	running    bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{opts: opts}
}

// StatusChanged reports a job state transition.
func (r *Reporter) StatusChanged(old, new processing.Status) {
	if old == "" {
		fmt.Fprintf(r.opts.Output, "[cads] Job status: %s\n", new)
		return
	}
	fmt.Fprintf(r.opts.Output, "[cads] Job status: %s -> %s\n", old, new)
}

// TransferStarted begins the transfer display. size is -1 when the server
// declared no size.
func (r *Reporter) TransferStarted(url string, size int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.totalSize = size
	r.received.Store(0)
	r.startTime = time.Now()
	r.lastUpdate = r.startTime
	r.lastBytes = 0
	r.stopCh = make(chan struct{})
	r.running = true

	fmt.Fprintf(r.opts.Output, "[cads] Downloading: %s\n", url)
	if size >= 0 {
		fmt.Fprintf(r.opts.Output, "[cads] Total size: %s\n", formatBytes(size))
	}

	go r.updateLoop(r.stopCh)
}

// TransferProgress accounts for transferred bytes.
func (r *Reporter) TransferProgress(n int64) {
	r.received.Add(n)
}

// TransferDone stops the transfer display.
func (r *Reporter) TransferDone(total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	r.running = false
	close(r.stopCh)

	duration := time.Since(r.startTime)
	avgSpeed := float64(total) / maxSeconds(duration)
	fmt.Fprintf(r.opts.Output, "\r[cads] Downloaded %s in %s (%s/s)    \n",
		formatBytes(total),
		formatDuration(duration),
		formatBytes(int64(avgSpeed)),
	)
}

// updateLoop periodically updates the transfer display.
func (r *Reporter) updateLoop(stopCh chan struct{}) {
	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

// printProgress outputs the current transfer state.
func (r *Reporter) printProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	received := r.received.Load()

	elapsed := now.Sub(r.lastUpdate).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	speed := float64(received-r.lastBytes) / elapsed

	r.lastUpdate = now
	r.lastBytes = received

	if r.totalSize > 0 {
		percent := float64(received) / float64(r.totalSize) * 100
		eta := "calculating..."
		if speed > 0 {
			remaining := float64(r.totalSize - received)
			eta = formatDuration(time.Duration(remaining / speed * float64(time.Second)))
		}
		fmt.Fprintf(r.opts.Output, "\r[cads] Progress: %.1f%% | %s / %s | Speed: %s/s | ETA: %s    ",
			percent,
			formatBytes(received),
			formatBytes(r.totalSize),
			formatBytes(int64(speed)),
			eta,
		)
		return
	}

	fmt.Fprintf(r.opts.Output, "\r[cads] Progress: %s | Speed: %s/s    ",
		formatBytes(received),
		formatBytes(int64(speed)),
	)
}

func maxSeconds(d time.Duration) float64 {
	s := d.Seconds()
	if s < 0.1 {
		return 0.1
	}
	return s
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// FormatBytes is exported for use by other packages.
func FormatBytes(b int64) string {
	return formatBytes(b)
}

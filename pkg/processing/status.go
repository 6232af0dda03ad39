package processing

import "fmt"

// Status is the lifecycle state the processing API reports for a job.
type Status string

const (
	StatusAccepted   Status = "accepted"
	StatusRunning    Status = "running"
	StatusSuccessful Status = "successful"
	StatusFailed     Status = "failed"
)

// Terminal reports whether further polling can still change the status.
func (s Status) Terminal() bool {
	return s == StatusSuccessful || s == StatusFailed
}

// parseStatus maps a wire value onto the status state machine. Any value
// outside the four recognized states is a server contract violation, not a
// transient condition.
func parseStatus(url, raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusAccepted, StatusRunning, StatusSuccessful, StatusFailed:
		return s, nil
	}
	return "", &ProtocolError{URL: url, Reason: fmt.Sprintf("unknown status %q", raw)}
}

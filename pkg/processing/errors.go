package processing

import "fmt"

// CommunicationError reports a transport-level failure. The HTTP client has
// already retried the request by the time this surfaces, so callers should
// treat it as fatal for the current operation.
type CommunicationError struct {
	URL string
	Err error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("communication with %s failed: %v", e.URL, e.Err)
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a malformed or unexpected server document: a missing
// required field, an unrecognized status value, an invalid JSON body. It
// signals a contract violation, never a transient condition, and is never
// retried.
type ProtocolError struct {
	URL    string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %s", e.URL, e.Reason)
}

// ProcessingFailedError is returned when the server reports that a job
// failed. Message carries the title/detail pair from the results document
// when the server provided one.
type ProcessingFailedError struct {
	JobURL  string
	Message string
}

func (e *ProcessingFailedError) Error() string {
	return e.Message
}

// LinkResolutionError is returned when a link relation does not resolve to
// exactly one target.
type LinkResolutionError struct {
	URL     string
	Rel     string
	Matches int
}

func (e *LinkResolutionError) Error() string {
	return fmt.Sprintf("link %q in %s not found or not unique (%d matches)", e.Rel, e.URL, e.Matches)
}

// DownloadIntegrityError is returned when a completed transfer does not match
// the metadata the server declared for it, even though the HTTP layer
// reported success. Either the byte counts differ or, when sizes match, the
// checksums do.
type DownloadIntegrityError struct {
	URL          string
	GotSize      int64
	WantSize     int64
	GotChecksum  string
	WantChecksum string
}

func (e *DownloadIntegrityError) Error() string {
	if e.WantChecksum != "" {
		return fmt.Sprintf("download failed: checksum mismatch for %s: got %s, want %s",
			e.URL, e.GotChecksum, e.WantChecksum)
	}
	return fmt.Sprintf("download failed: downloaded %d byte(s) out of %d from %s",
		e.GotSize, e.WantSize, e.URL)
}

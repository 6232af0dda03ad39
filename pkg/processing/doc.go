// Package processing is a client for remote asynchronous job-processing
// APIs: submit a computation, poll the job until it reaches a terminal
// state, then download the produced artifact with integrity verification.
//
// # Submitting
//
// Use [Client.Execute] (or [Process.Execute] after fetching a process
// description) to submit inputs. The returned [StatusInfo] links to the job
// via the "monitor" relation; [StatusInfo.Remote] turns it into a job
// handle. A job fetched directly with [Client.Job] links to itself via
// "self" instead.
//
// # Polling
//
// [Remote.Wait] polls the monitoring URL until the job is successful or
// failed. The interval starts at one second, grows by 1.5x per poll and is
// clamped to the WithSleepMax ceiling (default two minutes). The loop has no
// iteration cap; bound it with a context deadline when unattended. A failed
// job surfaces as [ProcessingFailedError], an unrecognized status as
// [ProtocolError].
//
// # Downloading
//
//	remote, err := statusInfo.Remote()
//	target, err := remote.Download(ctx, "")
//
// [Remote.Download] waits, resolves the results document (link relation
// "results", falling back to the conventional /results path), extracts the
// asset description and streams it to disk. The transferred byte count and,
// when declared, the checksum are verified against the server's metadata;
// a mismatch is a [DownloadIntegrityError] even though HTTP reported
// success.
//
// # Errors
//
// Transport failures are retried inside the HTTP layer and surface as
// [CommunicationError] once retries are exhausted. Malformed documents are
// [ProtocolError] and never retried. All error types work with errors.As.
//
// # Concurrency
//
// A [Remote] holds no mutable state; each handle is driven by one caller,
// and handles for different jobs are independent. Cancellation is checked
// before every poll and during every sleep.
package processing

// Package http provides the retrying HTTP client used for every API call.
//
// This package handles:
//   - Connection pooling
//   - JSON requests against the processing and catalogue APIs
//   - Streaming GET for result downloads
//   - Retry with exponential backoff for transport errors and 5xx responses
//   - Default headers (API auth tokens)
//
// Retries here cover transient transport failures only. Protocol-level
// problems (missing fields, unexpected job states) are classified by
// pkg/processing and are never retried.
//
// # Usage
//
//	client := http.NewClient(http.Options{
//	    Timeout:       30 * time.Second,
//	    RetryAttempts: 5,
//	})
//
//	body, err := client.GetJSON(ctx, url)
//
//	// Stream a download, bounded by ctx
//	rc, err := client.Get(ctx, assetURL)
//	defer rc.Close()
package http

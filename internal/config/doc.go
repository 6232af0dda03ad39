// Package config defines configuration structures for the cads CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (CADS_ prefix)
//   - YAML configuration file
//
// # Structure
//
//	type Config struct {
//	    URL             string
//	    CatalogueURL    string
//	    Key             string
//	    Target          string
//	    Bucket          string
//	    SleepMax        time.Duration
//	    DownloadTimeout time.Duration
//	    Progress        bool
//	    Retry           RetryConfig
//	}
//
//	type RetryConfig struct {
//	    Attempts   int
//	    Backoff    time.Duration
//	    MaxBackoff time.Duration
//	}
package config

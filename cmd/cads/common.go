package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/zakjan/cads-api-client/internal/config"
	apihttp "github.com/zakjan/cads-api-client/internal/http"
	"github.com/zakjan/cads-api-client/internal/progress"
	"github.com/zakjan/cads-api-client/pkg/catalogue"
	"github.com/zakjan/cads-api-client/pkg/processing"
)

// commonFlags holds flags shared by every command. Flag values override
// config file and environment settings when set.
type commonFlags struct {
	configPath *string
	url        *string
	key        *string
	sleepMax   *time.Duration
	timeout    *time.Duration
}

func registerCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		configPath: fs.String("config", "", "Path to YAML config file"),
		url:        fs.String("url", "", "Processing API base URL"),
		key:        fs.String("key", "", "API auth token"),
		sleepMax:   fs.Duration("sleep-max", 0, "Poll interval ceiling"),
		timeout:    fs.Duration("timeout", 0, "Overall timeout for one artifact transfer"),
	}
}

// loadConfig resolves configuration in increasing precedence: defaults,
// config file, environment, command-line flags.
func loadConfig(cf commonFlags) (config.Config, error) {
	cfg := config.Default()

	if *cf.configPath != "" {
		fileCfg, err := config.LoadFromFile(*cf.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = cfg.Merge(fileCfg)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return cfg, err
	}

	cfg = cfg.Merge(config.Config{
		URL:             *cf.url,
		Key:             *cf.key,
		SleepMax:        *cf.sleepMax,
		DownloadTimeout: *cf.timeout,
	})

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newProcessingClient builds a processing client from resolved config.
// The reporter may be nil.
func newProcessingClient(cfg config.Config, reporter *progress.Reporter) *processing.Client {
	opts := []processing.Option{
		processing.WithSleepMax(cfg.SleepMax),
		processing.WithDownloadTimeout(cfg.DownloadTimeout),
		processing.WithHTTPOptions(apihttp.Options{
			MaxIdleConnsPerHost: 10,
			Timeout:             30 * time.Second,
			RetryAttempts:       cfg.Retry.Attempts,
			RetryBackoff:        cfg.Retry.Backoff,
			RetryMaxBackoff:     cfg.Retry.MaxBackoff,
		}),
	}
	if cfg.Key != "" {
		opts = append(opts, processing.WithAuthHeader("PRIVATE-TOKEN", cfg.Key))
	}
	if reporter != nil {
		opts = append(opts, processing.WithNotifier(reporter))
	}
	return processing.NewClient(cfg.URL, opts...)
}

func newCatalogueClient(cfg config.Config, api *processing.Client) *catalogue.Client {
	url := cfg.CatalogueURL
	if url == "" {
		url = cfg.URL
	}
	return catalogue.NewClient(url, api)
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[cads] Received interrupt, shutting down...")
		cancel()
	}()

	return ctx, cancel
}

// parseInputs decodes request inputs from a JSON string, or from a file
// when the argument starts with '@'.
func parseInputs(raw string) (map[string]any, error) {
	data := []byte(raw)
	if strings.HasPrefix(raw, "@") {
		var err error
		data, err = os.ReadFile(raw[1:])
		if err != nil {
			return nil, err
		}
	}
	var inputs map[string]any
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("parse inputs: %w", err)
	}
	return inputs, nil
}

// exitCodeForError maps client error types to exit codes.
func exitCodeForError(err error) int {
	var (
		commErr      *processing.CommunicationError
		protoErr     *processing.ProtocolError
		failedErr    *processing.ProcessingFailedError
		linkErr      *processing.LinkResolutionError
		integrityErr *processing.DownloadIntegrityError
	)
	switch {
	case errors.As(err, &integrityErr):
		return ExitIntegrityError
	case errors.As(err, &failedErr):
		return ExitProcessingFailed
	case errors.As(err, &protoErr), errors.As(err, &linkErr):
		return ExitProtocolError
	case errors.As(err, &commErr):
		return ExitCommunication
	default:
		return ExitGeneralError
	}
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitCodeForError(err)
}

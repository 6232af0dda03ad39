package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/zakjan/cads-api-client/internal/progress"
	"github.com/zakjan/cads-api-client/internal/store"
	"github.com/zakjan/cads-api-client/pkg/processing"
)

// runDownload runs a request to completion and downloads the result. It
// either submits a new request (-process with -inputs) or attaches to an
// existing job (-job). With -bucket, the verified file is also mirrored
// into object storage.
func runDownload(args []string) int {
	fs := flag.NewFlagSet("download", flag.ExitOnError)

	cf := registerCommonFlags(fs)
	process := fs.String("process", "", "Process ID to execute")
	inputs := fs.String("inputs", "{}", "Request inputs as JSON, or @file")
	job := fs.String("job", "", "Attach to an existing job instead of submitting")
	target := fs.String("target", "", "Output file path (derived from the asset URL if empty)")
	bucket := fs.String("bucket", "", "Bucket URL to mirror the downloaded file into")
	report := fs.Bool("progress", false, "Report status changes and transfer progress on stderr")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: cads download [options]

Submit a processing request (or attach to an existing job with -job),
wait for it to finish, and download the result artifact. The download
is verified against the size and checksum the server declares.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *process == "" && *job == "" {
		fmt.Fprintln(os.Stderr, "Error: one of -process or -job is required")
		fs.Usage()
		return ExitInvalidArgs
	}
	if *process != "" && *job != "" {
		fmt.Fprintln(os.Stderr, "Error: -process and -job are mutually exclusive")
		fs.Usage()
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(cf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	if *target == "" {
		*target = cfg.Target
	}
	if *bucket == "" {
		*bucket = cfg.Bucket
	}

	ctx, cancel := signalContext()
	defer cancel()

	var reporter *progress.Reporter
	if *report || cfg.Progress {
		reporter = progress.NewReporter(progress.Options{})
	}

	api := newProcessingClient(cfg, reporter)

	remote, code := resolveRemote(ctx, api, *process, *inputs, *job)
	if code != ExitSuccess {
		return code
	}

	fmt.Fprintf(os.Stderr, "[cads] Job: %s\n", remote.RequestID())

	path, err := remote.Download(ctx, *target)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(os.Stderr, "[cads] Downloaded: %s\n", path)

	if *bucket != "" {
		if code := mirror(ctx, *bucket, path); code != ExitSuccess {
			return code
		}
	}

	return ExitSuccess
}

// resolveRemote turns the -process/-inputs or -job flags into a running job.
func resolveRemote(ctx context.Context, api *processing.Client, process, inputs, job string) (*processing.Remote, int) {
	if job != "" {
		info, err := api.Job(ctx, job)
		if err != nil {
			return nil, fail(err)
		}
		remote, err := info.Remote()
		if err != nil {
			return nil, fail(err)
		}
		return remote, ExitSuccess
	}

	in, err := parseInputs(inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, ExitInvalidArgs
	}

	info, err := api.Execute(ctx, process, in)
	if err != nil {
		return nil, fail(err)
	}
	remote, err := info.Remote()
	if err != nil {
		return nil, fail(err)
	}
	return remote, ExitSuccess
}

// mirror copies a downloaded file into object storage.
func mirror(ctx context.Context, bucketURL, path string) int {
	bkt, err := store.Open(ctx, bucketURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening bucket: %v\n", err)
		return ExitStorageError
	}
	defer bkt.Close()

	key, err := store.PutFile(ctx, bkt, "", path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error uploading to bucket: %v\n", err)
		return ExitStorageError
	}

	fmt.Fprintf(os.Stderr, "[cads] Mirrored: %s/%s\n", bucketURL, key)
	return ExitSuccess
}

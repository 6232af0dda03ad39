package main

import (
	"flag"
	"fmt"
	"os"
)

// runStatus prints the current status of a job.
func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ExitOnError)

	cf := registerCommonFlags(fs)
	job := fs.String("job", "", "Job ID (required)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: cads status [options]

Print the current status of a submitted job.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *job == "" {
		fmt.Fprintln(os.Stderr, "Error: -job is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(cf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext()
	defer cancel()

	api := newProcessingClient(cfg, nil)

	info, err := api.Job(ctx, *job)
	if err != nil {
		return fail(err)
	}
	remote, err := info.Remote()
	if err != nil {
		return fail(err)
	}
	status, err := remote.Status(ctx)
	if err != nil {
		return fail(err)
	}

	fmt.Println(status)
	return ExitSuccess
}

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zakjan/cads-api-client/internal/progress"
)

// runSubmit submits a processing request and prints the job ID. With -wait,
// it also polls the job until it reaches a terminal state.
func runSubmit(args []string) int {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)

	cf := registerCommonFlags(fs)
	process := fs.String("process", "", "Process ID to execute (required)")
	inputs := fs.String("inputs", "{}", "Request inputs as JSON, or @file")
	wait := fs.Bool("wait", false, "Wait for the job to finish")
	report := fs.Bool("progress", false, "Report job status changes on stderr")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: cads submit [options]

Submit a processing request and print the resulting job ID.
The job keeps running on the server; use 'cads status' or
'cads download' to follow up, or pass -wait to block until it finishes.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *process == "" {
		fmt.Fprintln(os.Stderr, "Error: -process is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	in, err := parseInputs(*inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(cf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext()
	defer cancel()

	var reporter *progress.Reporter
	if *report || cfg.Progress {
		reporter = progress.NewReporter(progress.Options{})
	}

	api := newProcessingClient(cfg, reporter)

	status, err := api.Execute(ctx, *process, in)
	if err != nil {
		return fail(err)
	}
	remote, err := status.Remote()
	if err != nil {
		return fail(err)
	}

	fmt.Println(remote.RequestID())

	if *wait {
		if err := remote.Wait(ctx); err != nil {
			return fail(err)
		}
		fmt.Fprintln(os.Stderr, "[cads] Job finished successfully")
	}

	return ExitSuccess
}

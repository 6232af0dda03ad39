package main

import (
	"flag"
	"fmt"
	"os"
)

// runJobs lists submitted jobs.
func runJobs(args []string) int {
	fs := flag.NewFlagSet("jobs", flag.ExitOnError)

	cf := registerCommonFlags(fs)

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: cads jobs [options]

List the IDs of jobs submitted to the API.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
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

	list, err := api.Jobs(ctx)
	if err != nil {
		return fail(err)
	}
	for _, id := range list.JobIDs() {
		fmt.Println(id)
	}

	return ExitSuccess
}

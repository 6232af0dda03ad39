package main

import (
	"flag"
	"fmt"
	"os"
)

// runProcesses lists the processes offered by the API.
func runProcesses(args []string) int {
	fs := flag.NewFlagSet("processes", flag.ExitOnError)

	cf := registerCommonFlags(fs)
	process := fs.String("process", "", "Show a single process instead of listing")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: cads processes [options]

List the IDs of the processes offered by the API.
With -process, fetch and confirm a single process.

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

	if *process != "" {
		proc, err := api.Process(ctx, *process)
		if err != nil {
			return fail(err)
		}
		id, err := proc.ID()
		if err != nil {
			return fail(err)
		}
		fmt.Printf("Process: %s\n", id)
		return ExitSuccess
	}

	list, err := api.Processes(ctx)
	if err != nil {
		return fail(err)
	}
	for _, id := range list.ProcessIDs() {
		fmt.Println(id)
	}

	return ExitSuccess
}

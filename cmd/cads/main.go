package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitInvalidArgs      = 2
	ExitCommunication    = 3
	ExitProtocolError    = 4
	ExitProcessingFailed = 5
	ExitIntegrityError   = 6
	ExitStorageError     = 7
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "collections":
		return runCollections(cmdArgs)
	case "processes":
		return runProcesses(cmdArgs)
	case "submit":
		return runSubmit(cmdArgs)
	case "status":
		return runStatus(cmdArgs)
	case "jobs":
		return runJobs(cmdArgs)
	case "download":
		return runDownload(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: cads <command> [options]

Commands:
  collections  List catalogue collections or show one collection
  processes    List available processes or show one process
  submit       Submit a processing request and print its job ID
  status       Print the current status of a job
  jobs         List submitted jobs
  download     Run a request to completion and download its result

Run 'cads <command> -h' for command-specific help.`)
}

package main

import (
	"flag"
	"fmt"
	"os"
)

// runCollections lists catalogue collections, following pagination links.
// With -collection, shows a single collection and its retrieve process.
func runCollections(args []string) int {
	fs := flag.NewFlagSet("collections", flag.ExitOnError)

	cf := registerCommonFlags(fs)
	collection := fs.String("collection", "", "Show a single collection instead of listing")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: cads collections [options]

List the IDs of all catalogue collections, following pagination links.
With -collection, show that collection and the process that serves it.

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
	cat := newCatalogueClient(cfg, api)

	if *collection != "" {
		col, err := cat.Collection(ctx, *collection)
		if err != nil {
			return fail(err)
		}
		id, err := col.ID()
		if err != nil {
			return fail(err)
		}
		fmt.Printf("Collection: %s\n", id)

		proc, err := col.RetrieveProcess(ctx)
		if err != nil {
			return fail(err)
		}
		procID, err := proc.ID()
		if err != nil {
			return fail(err)
		}
		fmt.Printf("Process: %s\n", procID)
		return ExitSuccess
	}

	page, err := cat.Collections(ctx)
	if err != nil {
		return fail(err)
	}
	for page != nil {
		for _, id := range page.CollectionIDs() {
			fmt.Println(id)
		}
		page, err = page.Next(ctx)
		if err != nil {
			return fail(err)
		}
	}

	return ExitSuccess
}

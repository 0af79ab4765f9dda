package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/txengine/internal/report"
	"github.com/vadiminshakov/txengine/internal/storage/rejects"
)

// listRejects prints journaled rejects as CSV and returns the process exit code.
//
//	txengine rejects --dir wal/rejects [--run <id> | --after <index>]
func listRejects(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("txengine rejects", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("dir", "", "reject journal directory")
	runID := fs.String("run", "", "only show rejects of this run id")
	after := fs.Uint64("after", 0, "only show rejects written after this journal index")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *dir == "" {
		fmt.Fprintln(stderr, "--dir is required")
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		return 2
	}

	if err := printRejects(*dir, *runID, *after, stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func printRejects(dir, runID string, after uint64, w io.Writer) error {
	store, err := rejects.NewWALStore(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	var records []rejects.Record
	if runID != "" {
		records, err = store.RunRejects(runID)
	} else {
		records, err = store.RejectsAfter(after)
	}
	if err != nil {
		return errors.Wrap(err, "read reject journal")
	}

	return report.WriteRejectsCSV(w, records)
}

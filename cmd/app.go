// Package cmd implements the CLI application to manage a trading sandbox.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/subcommands"
	"github.com/quantfolio/sandbox"
)

// Commands lists the subcommands. A main package registers them on a
// commander and Execute()s the user-selected one.
var Commands = []subcommands.Command{
	&initCmd{},
	&buyCmd{},
	&sellCmd{},
	&updateCmd{},
	&summaryCmd{},
	&txCmd{},
	&historyCmd{},
	&riskCmd{},
	&simulateCmd{},
	&assistCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var snapshotFile = flag.String("snapshot-file", "portfolio.json", "Path to the portfolio snapshot file")
var historyFile = flag.String("history-file", "history.jsonl", "Path to the daily value history file (JSONL format)")

// decodePortfolio loads the portfolio from the app snapshot file.
func decodePortfolio() (*sandbox.Portfolio, error) {
	f, err := os.Open(*snapshotFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no portfolio at %q, run 'sbx init' first", *snapshotFile)
		}
		return nil, fmt.Errorf("could not open snapshot file %q: %w", *snapshotFile, err)
	}
	defer f.Close()

	p, err := sandbox.DecodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode snapshot file %q: %w", *snapshotFile, err)
	}
	return p, nil
}

// encodePortfolio saves the portfolio into the app snapshot file.
func encodePortfolio(p *sandbox.Portfolio) error {
	f, err := os.Create(*snapshotFile)
	if err != nil {
		return fmt.Errorf("could not create snapshot file %q: %w", *snapshotFile, err)
	}
	defer f.Close()

	if err := sandbox.EncodeSnapshot(f, p); err != nil {
		return fmt.Errorf("could not write snapshot file %q: %w", *snapshotFile, err)
	}
	return nil
}

// decodeHistory loads the value history from the app history file.
// A missing file is an empty history.
func decodeHistory() (*sandbox.History, error) {
	f, err := os.Open(*historyFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &sandbox.History{}, nil
		}
		return nil, fmt.Errorf("could not open history file %q: %w", *historyFile, err)
	}
	defer f.Close()

	h, err := sandbox.DecodeHistory(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode history file %q: %w", *historyFile, err)
	}
	return h, nil
}

// encodeHistory saves the value history into the app history file.
func encodeHistory(h *sandbox.History) error {
	f, err := os.Create(*historyFile)
	if err != nil {
		return fmt.Errorf("could not create history file %q: %w", *historyFile, err)
	}
	defer f.Close()

	if err := sandbox.EncodeHistory(f, h); err != nil {
		return fmt.Errorf("could not write history file %q: %w", *historyFile, err)
	}
	return nil
}

// recordValue observes today's portfolio values in the history file, so that
// every mutating command leaves a fresh observation for the risk report.
func recordValue(day sandbox.Date, p *sandbox.Portfolio) error {
	h, err := decodeHistory()
	if err != nil {
		return err
	}
	h.AppendOrUpdate(sandbox.NewValueRecord(day, p))
	return encodeHistory(h)
}

// saveAndRecord persists the portfolio and today's value observation.
func saveAndRecord(day sandbox.Date, p *sandbox.Portfolio) subcommands.ExitStatus {
	if err := encodePortfolio(p); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := recordValue(day, p); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

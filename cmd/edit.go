package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/bloodpressure"
	"github.com/google/subcommands"
)

type editCmd struct {
	sys  string
	dia  string
	puls string
	date string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change a reading" }
func (*editCmd) Usage() string {
	return `bp edit [-sys <mmHg>] [-dia <mmHg>] [-puls <bpm>] [-d <date>] <id>

  Changes the reading <id>. Values not given are kept as they are.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sys, "sys", "", "New systolic pressure in mmHg")
	f.StringVar(&c.dia, "dia", "", "New diastolic pressure in mmHg")
	f.StringVar(&c.puls, "puls", "", "New pulse in beats per minute")
	f.StringVar(&c.date, "d", "", "New local date and time, like 2024-01-31T07:45")
}

func (c *editCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one reading id.")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)

	l, closeLedger, err := OpenLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeLedger()

	r, ok := l.Get(id)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: reading %q not found.\n", id)
		return subcommands.ExitFailure
	}

	// Start from the stored values, dates back in local time.
	fields := bloodpressure.FieldsOf(r, l.Location())
	if c.sys != "" {
		fields.Sys = c.sys
	}
	if c.dia != "" {
		fields.Dia = c.dia
	}
	if c.puls != "" {
		fields.Puls = c.puls
	}
	if c.date != "" {
		fields.Date = c.date
	}

	r, err = l.Update(id, fields)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Updated reading %s: %d/%d mmHg, %d BPM, %s.\n", r.ID, r.Sys, r.Dia, r.Puls, r.Status())
	return checkSave(l)
}

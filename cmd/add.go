package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/bloodpressure"
	"github.com/etnz/bloodpressure/date"
	"github.com/google/subcommands"
)

type addCmd struct {
	sys  string
	dia  string
	puls string
	date string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a new reading" }
func (*addCmd) Usage() string {
	return `bp add -sys <mmHg> -dia <mmHg> -puls <bpm> [-d <date>]
bp add <sys> <dia> <puls>

  Records a new reading:
  - sys, dia: systolic and diastolic pressure in mmHg.
  - puls: pulse in beats per minute.
  - d: local date and time of the measure, like 2024-01-31T07:45. Defaults to now.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sys, "sys", "", "Systolic pressure in mmHg (required)")
	f.StringVar(&c.dia, "dia", "", "Diastolic pressure in mmHg (required)")
	f.StringVar(&c.puls, "puls", "", "Pulse in beats per minute (required)")
	f.StringVar(&c.date, "d", "", "Local date and time, like 2024-01-31T07:45. Defaults to now.")
}

func (c *addCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fields := bloodpressure.Fields{Sys: c.sys, Dia: c.dia, Puls: c.puls, Date: c.date}
	switch {
	case f.NArg() == 3 && c.sys == "" && c.dia == "" && c.puls == "":
		fields.Sys, fields.Dia, fields.Puls = f.Arg(0), f.Arg(1), f.Arg(2)
	case f.NArg() != 0:
		fmt.Fprintln(os.Stderr, "Error: expected either -sys, -dia and -puls flags or exactly three arguments.")
		return subcommands.ExitUsageError
	}

	l, closeLedger, err := OpenLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeLedger()

	if fields.Date == "" {
		fields.Date = date.FormatLocal(now(), l.Location())
	}

	r, err := l.Create(fields)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Added reading %s: %d/%d mmHg, %d BPM, %s.\n", r.ID, r.Sys, r.Dia, r.Puls, r.Status())
	return checkSave(l)
}

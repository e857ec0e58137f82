package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/bloodpressure"
	"github.com/etnz/bloodpressure/renderer"
	"github.com/google/subcommands"
)

type lsCmd struct {
	rangeFlags
	limit  int
	status string
	ids    bool
}

func (*lsCmd) Name() string     { return "ls" }
func (*lsCmd) Synopsis() string { return "list readings, most recent first" }
func (*lsCmd) Usage() string {
	return `bp ls [-p <period> | -s <day>] [-d <day>] [-n <count>] [-status <status>,...] [-ids]

  Lists readings, most recent first. Without flags every reading is listed.
`
}

func (c *lsCmd) SetFlags(f *flag.FlagSet) {
	c.rangeFlags.SetFlags(f)
	f.IntVar(&c.limit, "n", 0, "Show only the n most recent readings")
	f.StringVar(&c.status, "status", "", "Show only readings with one of these comma separated statuses: normal, elevated, high")
	f.BoolVar(&c.ids, "ids", false, "Print only the ids, one per line")
}

func (c *lsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.limit < 0 {
		fmt.Fprintln(os.Stderr, "Error: -n must not be negative.")
		return subcommands.ExitUsageError
	}
	q := bloodpressure.Query{Limit: c.limit}
	if c.status != "" {
		for _, name := range strings.Split(c.status, ",") {
			s, err := bloodpressure.ParseStatus(strings.TrimSpace(name))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitUsageError
			}
			q.Statuses = append(q.Statuses, s)
		}
	}

	l, closeLedger, err := OpenLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeLedger()

	if q.Range, err = c.resolve(l.Location()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	readings := l.Select(q)
	if c.ids {
		for _, r := range readings {
			fmt.Fprintln(stdout, r.ID)
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.ReadingsMarkdown(readings, l.Location()))
	return subcommands.ExitSuccess
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/bloodpressure"
	"github.com/etnz/bloodpressure/renderer"
	"github.com/google/subcommands"
)

type printCmd struct {
	rangeFlags
	html   bool
	output string
}

func (*printCmd) Name() string     { return "print" }
func (*printCmd) Synopsis() string { return "print a protocol of the readings" }
func (*printCmd) Usage() string {
	return `bp print [-p <period> | -s <day>] [-d <day>] [-html] [-o <file>]

  Prints a protocol of the readings, to hand over to a doctor. Without range
  flags every reading is printed.
`
}

func (c *printCmd) SetFlags(f *flag.FlagSet) {
	c.rangeFlags.SetFlags(f)
	f.BoolVar(&c.html, "html", false, "Write a standalone HTML page instead of markdown")
	f.StringVar(&c.output, "o", "", "File to write the protocol to")
}

func (c *printCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, closeLedger, err := OpenLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeLedger()

	rng, err := c.resolve(l.Location())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	p := &renderer.Protocol{
		Printed:  today(l.Location()),
		Range:    rng,
		Readings: l.Select(bloodpressure.Query{Range: rng}),
		Location: l.Location(),
	}

	var out string
	if c.html {
		if out, err = renderer.ProtocolHTML(p); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	} else {
		out = renderer.ProtocolMarkdown(p)
	}

	switch {
	case c.output != "":
		if err := os.WriteFile(c.output, []byte(out), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing protocol: %v\n", err)
			return subcommands.ExitFailure
		}
	case c.html:
		fmt.Fprint(stdout, out)
	default:
		printMarkdown(out)
	}
	return subcommands.ExitSuccess
}

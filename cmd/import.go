package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/bloodpressure"
	"github.com/google/subcommands"
)

type importCmd struct {
	path string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "merge readings from a JSON document" }
func (*importCmd) Usage() string {
	return `bp import [-path <jsonpath>] [<file>]

  Merges the readings of a JSON document into the ledger. The document is read
  from <file>, or from the standard input if it is missing or "-".
  Invalid readings are skipped. See "bp topic import".
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.path, "path", "", "JSONPath of the list of readings in the document, like $.entries")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: expected at most one file.")
		return subcommands.ExitUsageError
	}

	var src io.Reader = stdin
	if name := f.Arg(0); name != "" && name != "-" {
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		src = file
	}

	var opts []bloodpressure.ImportOption
	if c.path != "" {
		opts = append(opts, bloodpressure.WithSelector(c.path))
	}

	l, closeLedger, err := OpenLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeLedger()

	n, err := l.ImportFrom(src, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Imported %s.\n", plural(n, "reading"))
	return checkSave(l)
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/bloodpressure"
	"github.com/google/subcommands"
)

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write every reading as a JSON document" }
func (*exportCmd) Usage() string {
	return `bp export [-o <file or directory>]

  Writes every reading, most recent first, as a JSON document that "bp import"
  reads back. Without -o the document is written to the standard output. If -o
  is a directory the file is named blutdruck_daten_YYYY-MM-DD.json.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "File or directory to write the document to")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, closeLedger, err := OpenLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeLedger()

	doc := l.Export()
	if c.output == "" {
		stdout.Write(doc)
		return subcommands.ExitSuccess
	}

	name := c.output
	if info, err := os.Stat(name); err == nil && info.IsDir() {
		name = filepath.Join(name, bloodpressure.ExportFileName(today(l.Location())))
	}
	if err := os.WriteFile(name, doc, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing export: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Exported %s to %s.\n", plural(l.Len(), "reading"), name)
	return subcommands.ExitSuccess
}

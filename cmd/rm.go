package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type rmCmd struct {
	yes bool
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete readings" }
func (*rmCmd) Usage() string {
	return `bp rm [-y] <id>...

  Deletes readings, asking for confirmation unless -y is given.
  Deleting a reading that does not exist is not an error.
`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Do not ask for confirmation")
}

func (c *rmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: expected at least one reading id.")
		return subcommands.ExitUsageError
	}

	l, closeLedger, err := OpenLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeLedger()

	answers := bufio.NewScanner(stdin)
	status := subcommands.ExitSuccess
	for _, id := range f.Args() {
		if !c.yes && !confirm(answers, fmt.Sprintf("Delete reading %s?", id)) {
			fmt.Fprintf(stdout, "Kept reading %s.\n", id)
			continue
		}
		l.Delete(id)
		fmt.Fprintf(stdout, "Deleted reading %s.\n", id)
		if s := checkSave(l); s != subcommands.ExitSuccess {
			status = s
		}
	}
	return status
}

// confirm asks a yes/no question, no being the default.
func confirm(answers *bufio.Scanner, question string) bool {
	fmt.Fprintf(stdout, "%s [y/N] ", question)
	if !answers.Scan() {
		fmt.Fprintln(stdout)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answers.Text())) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

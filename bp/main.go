// Command bp keeps a personal log of blood pressure readings.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/etnz/bloodpressure/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	completion().Complete("bp")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	if err := cmd.Setup(flag.CommandLine); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitUsageError))
	}
	if name := flag.Arg(0); name != "" && !cmd.IsCommand(name) {
		if found, status := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(int(status))
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes bp for shell completion, from the flags of every command.
func completion() *complete.Command {
	c := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: predictFlags(flag.CommandLine),
	}
	c.Flags["storage"] = predict.Set{"file", "sqlite"}
	c.Flags["file"] = predict.Files("*.json")
	c.Flags["db"] = predict.Files("*.db")

	for _, sub := range cmd.Commands {
		fs := flag.NewFlagSet(sub.Name(), flag.ContinueOnError)
		sub.SetFlags(fs)
		c.Sub[sub.Name()] = &complete.Command{Flags: predictFlags(fs)}
	}
	c.Sub["import"].Args = predict.Files("*.json")
	c.Sub["export"].Flags["o"] = predict.Files("*")
	c.Sub["print"].Flags["o"] = predict.Files("*")
	for _, sub := range []string{"ls", "print"} {
		c.Sub[sub].Flags["p"] = predict.Set{"day", "week", "month", "quarter", "year"}
	}
	c.Sub["ls"].Flags["status"] = predict.Set{"normal", "elevated", "high"}
	return c
}

func predictFlags(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[f.Name] = predict.Nothing
			return
		}
		flags[f.Name] = predict.Something
	})
	return flags
}

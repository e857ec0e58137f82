package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"

	"github.com/google/subcommands"
)

// Environment variables passed to extensions. They are the variables bp
// itself reads its configuration from, so an extension sees the same ledger.
const (
	EnvStorage  = "BP_STORAGE"
	EnvFile     = "BP_FILE"
	EnvDB       = "BP_DB"
	EnvTimezone = "BP_TIMEZONE"
	EnvVerbose  = "BP_VERBOSE"
)

// IsCommand reports whether name is a built-in subcommand.
func IsCommand(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, c := range Commands {
		if c.Name() == name {
			return true
		}
	}
	return false
}

// RunExtension looks for a bp-<subcommand> executable in PATH and runs it
// with args and the resolved configuration in its environment.
// found is false when no such executable exists.
func RunExtension(subcommand string, args []string) (found bool, status subcommands.ExitStatus) {
	name := "bp-" + subcommand
	lp, err := exec.LookPath(name)
	if err != nil {
		log.Printf("run-extension name=%s err=%v", name, err)
		return false, subcommands.ExitUsageError
	}

	c := exec.Command(lp, args...)
	c.Stdin = stdin
	c.Stdout = stdout
	c.Stderr = os.Stderr
	c.Env = append(os.Environ(),
		EnvStorage+"="+config.Storage,
		EnvFile+"="+config.File,
		EnvDB+"="+config.DB,
		EnvTimezone+"="+config.Timezone,
		EnvVerbose+"="+strconv.FormatBool(config.Verbose),
	)
	log.Printf("run-extension name=%s path=%s", name, lp)

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, subcommands.ExitStatus(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "Error running %s: %v\n", name, err)
		return true, subcommands.ExitFailure
	}
	return true, subcommands.ExitSuccess
}

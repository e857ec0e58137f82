// Package cmd implements the bp command line application.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/bloodpressure"
	"github.com/etnz/bloodpressure/date"
	"github.com/etnz/bloodpressure/sqlite"
	"github.com/google/subcommands"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
)

// Commands lists every subcommand, in help order.
var Commands = []subcommands.Command{
	&addCmd{},
	&editCmd{},
	&rmCmd{},
	&lsCmd{},
	&importCmd{},
	&exportCmd{},
	&printCmd{},
	&serveCmd{},
	&topicCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		group := "readings"
		switch cmd.(type) {
		case *importCmd, *exportCmd, *printCmd:
			group = "documents"
		case *serveCmd, *topicCmd:
			group = "other"
		}
		c.Register(cmd, group)
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var storageKind = flag.String("storage", "", "Storage of the ledger: file or sqlite (env BP_STORAGE)")
var ledgerFile = flag.String("file", "", "Path to the ledger JSON file (env BP_FILE)")
var dbFile = flag.String("db", "", "Path to the SQLite database (env BP_DB)")
var timezone = flag.String("tz", "", "Time zone dates are entered and shown in, e.g. Europe/Berlin (env BP_TIMEZONE)")
var Verbose = flag.Bool("v", false, "Print log messages (env BP_VERBOSE)")

// flagKeys maps global flags to their configuration key.
var flagKeys = map[string]string{
	"storage": "storage",
	"file":    "file",
	"db":      "db",
	"tz":      "timezone",
	"v":       "verbose",
}

const (
	EnvPrefix     = "BP"
	EnvTestingNow = "BP_TESTING_NOW"
)

// Config is the resolved configuration of one invocation.
type Config struct {
	Storage  string // "file" or "sqlite"
	File     string
	DB       string
	Timezone string
	Addr     string
	Verbose  bool
}

// config is set by Setup.
var config = Config{Storage: "file"}

// now is the clock of the application. Setup fixes it when BP_TESTING_NOW is set.
var now = time.Now

// stdout and stdin are the streams commands print to and read from.
var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

// LoadConfig resolves the configuration: global flags first, then BP_*
// environment variables, then $XDG_CONFIG_HOME/bp/config.yaml, then defaults.
func LoadConfig(flags *flag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetDefault("storage", "file")
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("verbose", false)
	for _, key := range []string{"file", "db", "timezone"} {
		v.SetDefault(key, "")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if dir, err := os.UserConfigDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(dir, "bp"))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("could not read configuration: %w", err)
			}
		}
	}

	if flags != nil {
		flags.Visit(func(f *flag.Flag) {
			if key, ok := flagKeys[f.Name]; ok {
				v.Set(key, f.Value.String())
			}
		})
	}

	cfg := Config{
		Storage:  v.GetString("storage"),
		File:     v.GetString("file"),
		DB:       v.GetString("db"),
		Timezone: v.GetString("timezone"),
		Addr:     v.GetString("addr"),
		Verbose:  v.GetBool("verbose"),
	}
	if cfg.Storage != "file" && cfg.Storage != "sqlite" {
		return Config{}, fmt.Errorf("unknown storage %q, want file or sqlite", cfg.Storage)
	}
	if cfg.File == "" {
		p, err := bloodpressure.DefaultFilePath()
		if err != nil {
			return Config{}, err
		}
		cfg.File = p
	}
	if cfg.DB == "" {
		cfg.DB = filepath.Join(filepath.Dir(cfg.File), "bp.db")
	}
	return cfg, nil
}

// Setup resolves the configuration from the parsed global flags and prepares
// logging and the clock. It must be called before executing a command.
func Setup(flags *flag.FlagSet) error {
	cfg, err := LoadConfig(flags)
	if err != nil {
		return err
	}
	config = cfg
	if !config.Verbose {
		log.SetOutput(io.Discard)
	}

	if fixed := os.Getenv(EnvTestingNow); fixed != "" {
		loc, err := location()
		if err != nil {
			return err
		}
		t, err := date.ParseLocal(fixed, loc)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTestingNow, err)
		}
		now = func() time.Time { return t }
	}
	return nil
}

// location returns the configured time zone.
func location() (*time.Location, error) {
	if config.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", config.Timezone, err)
	}
	return loc, nil
}

// today returns the current day in loc.
func today(loc *time.Location) date.Date { return date.Of(now(), loc) }

// ledgerOptions are the options every ledger of the application is created with.
func ledgerOptions() ([]bloodpressure.Option, error) {
	loc, err := location()
	if err != nil {
		return nil, err
	}
	return []bloodpressure.Option{bloodpressure.WithLocation(loc), bloodpressure.WithClock(now)}, nil
}

// OpenLedger opens the configured ledger. close releases its storage and must
// be called once done.
func OpenLedger() (l *bloodpressure.Ledger, close func() error, err error) {
	opts, err := ledgerOptions()
	if err != nil {
		return nil, nil, err
	}

	var s bloodpressure.Storage
	close = func() error { return nil }
	switch config.Storage {
	case "sqlite":
		db, err := sqlite.Open(config.DB)
		if err != nil {
			return nil, nil, err
		}
		s, close = db, db.Close
	default:
		s = bloodpressure.FileStorage{Path: config.File}
	}

	l, err = bloodpressure.Open(s, opts...)
	if err != nil {
		close()
		return nil, nil, err
	}
	log.Printf("open-ledger storage=%s readings=%d", config.Storage, l.Len())
	return l, close, nil
}

// checkSave reports a failed write of l. The change was applied in memory
// but is not durable, so the command fails.
func checkSave(l *bloodpressure.Ledger) subcommands.ExitStatus {
	if err := l.SaveErr(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: the change was applied but could not be saved: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, or prints it as is when the
// output is not a terminal.
func printMarkdown(md string) {
	if f, ok := stdout.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		log.Printf("render-markdown err=%v", err)
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

// plural returns "1 reading", "2 readings".
func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

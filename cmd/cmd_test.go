package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/bloodpressure"
	"github.com/google/subcommands"
)

// setupApp points the application at a fresh ledger file at a fixed time,
// and captures its output.
func setupApp(t *testing.T) (dir string, out *bytes.Buffer) {
	t.Helper()
	dir = t.TempDir()
	out = new(bytes.Buffer)

	oldConfig, oldNow, oldStdout, oldStdin := config, now, stdout, stdin
	t.Cleanup(func() { config, now, stdout, stdin = oldConfig, oldNow, oldStdout, oldStdin })

	config = Config{Storage: "file", File: filepath.Join(dir, "bp_entries.json"), DB: filepath.Join(dir, "bp.db"), Timezone: "UTC"}
	now = func() time.Time { return time.Date(2024, time.March, 1, 9, 30, 42, 0, time.UTC) }
	stdout = out
	stdin = strings.NewReader("")
	return dir, out
}

// run executes cmd with args the way the commander does.
func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("%s %v: %v", cmd.Name(), args, err)
	}
	return cmd.Execute(context.Background(), f)
}

// ledger opens the configured ledger for inspection.
func ledger(t *testing.T) *bloodpressure.Ledger {
	t.Helper()
	l, closeLedger, err := OpenLedger()
	if err != nil {
		t.Fatalf("OpenLedger() unexpected error: %v", err)
	}
	t.Cleanup(func() { closeLedger() })
	return l
}

func TestAdd(t *testing.T) {
	setupApp(t)

	if status := run(t, &addCmd{}, "-sys", "141", "-dia", "80", "-puls", "72", "-d", "2024-02-29T21:15"); status != subcommands.ExitSuccess {
		t.Fatalf("add returned %v", status)
	}
	if status := run(t, &addCmd{}, "120", "80", "60"); status != subcommands.ExitSuccess {
		t.Fatalf("add with arguments returned %v", status)
	}

	list := ledger(t).List()
	if len(list) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(list))
	}
	// Without -d the reading is dated now, to the minute.
	if want := time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC); !list[0].Date.Equal(want) || list[0].Sys != 120 {
		t.Errorf("expected 120/80 at %v first, got %v", want, list[0])
	}
	if list[1].Sys != 141 || list[1].Status() != bloodpressure.High {
		t.Errorf("expected the 141/80 reading second, got %v", list[1])
	}
}

func TestAdd_Errors(t *testing.T) {
	setupApp(t)

	testCases := []struct {
		name string
		args []string
		want subcommands.ExitStatus
	}{
		{"missing values", []string{"-sys", "120"}, subcommands.ExitFailure},
		{"zero", []string{"-sys", "0", "-dia", "80", "-puls", "60"}, subcommands.ExitFailure},
		{"bad date", []string{"-sys", "120", "-dia", "80", "-puls", "60", "-d", "yesterday"}, subcommands.ExitFailure},
		{"two arguments", []string{"120", "80"}, subcommands.ExitUsageError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if status := run(t, &addCmd{}, tc.args...); status != tc.want {
				t.Errorf("add %v returned %v, want %v", tc.args, status, tc.want)
			}
		})
	}
	if n := ledger(t).Len(); n != 0 {
		t.Errorf("failed adds recorded %d readings", n)
	}
}

func TestEdit(t *testing.T) {
	setupApp(t)
	run(t, &addCmd{}, "-sys", "141", "-dia", "80", "-puls", "72", "-d", "2024-02-29T21:15")
	id := ledger(t).List()[0].ID

	if status := run(t, &editCmd{}, "-puls", "70", id); status != subcommands.ExitSuccess {
		t.Fatalf("edit returned %v", status)
	}
	r, ok := ledger(t).Get(id)
	if !ok {
		t.Fatalf("reading %s disappeared", id)
	}
	want := bloodpressure.Reading{ID: id, Sys: 141, Dia: 80, Puls: 70, Date: time.Date(2024, time.February, 29, 21, 15, 0, 0, time.UTC)}
	if r.ID != want.ID || r.Sys != want.Sys || r.Dia != want.Dia || r.Puls != want.Puls || !r.Date.Equal(want.Date) {
		t.Errorf("edit kept %v, want %v", r, want)
	}

	if status := run(t, &editCmd{}, "-puls", "70", "nope"); status != subcommands.ExitFailure {
		t.Errorf("edit of an unknown id returned %v", status)
	}
	if status := run(t, &editCmd{}); status != subcommands.ExitUsageError {
		t.Errorf("edit without id returned %v", status)
	}
}

func TestRm(t *testing.T) {
	_, out := setupApp(t)
	run(t, &addCmd{}, "120", "80", "60")
	id := ledger(t).List()[0].ID

	stdin = strings.NewReader("n\n")
	run(t, &rmCmd{}, id)
	if ledger(t).Len() != 1 {
		t.Fatalf("rm deleted the reading without confirmation")
	}
	if !strings.Contains(out.String(), "Delete reading "+id+"? [y/N]") {
		t.Errorf("rm did not ask for confirmation:\n%s", out)
	}

	stdin = strings.NewReader("y\n")
	if status := run(t, &rmCmd{}, id); status != subcommands.ExitSuccess {
		t.Fatalf("rm returned %v", status)
	}
	if ledger(t).Len() != 0 {
		t.Fatalf("rm did not delete the confirmed reading")
	}

	if status := run(t, &rmCmd{}, "-y", id); status != subcommands.ExitSuccess {
		t.Errorf("deleting twice returned %v", status)
	}
}

func TestLs(t *testing.T) {
	_, out := setupApp(t)
	run(t, &addCmd{}, "-sys", "120", "-dia", "80", "-puls", "60", "-d", "2024-01-15T08:00")
	run(t, &addCmd{}, "-sys", "141", "-dia", "80", "-puls", "72", "-d", "2024-02-29T21:15")
	run(t, &addCmd{}, "-sys", "125", "-dia", "80", "-puls", "66", "-d", "2024-03-01T07:00")
	list := ledger(t).List()

	testCases := []struct {
		args []string
		want []string
	}{
		{nil, []string{list[0].ID, list[1].ID, list[2].ID}},
		{[]string{"-n", "1"}, []string{list[0].ID}},
		{[]string{"-p", "month"}, []string{list[0].ID}},
		{[]string{"-p", "month", "-d", "2024-02-10"}, []string{list[1].ID}},
		{[]string{"-s", "2024-02-01"}, []string{list[0].ID, list[1].ID}},
		{[]string{"-status", "high,normal"}, []string{list[1].ID, list[2].ID}},
	}
	for _, tc := range testCases {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			out.Reset()
			if status := run(t, &lsCmd{}, append([]string{"-ids"}, tc.args...)...); status != subcommands.ExitSuccess {
				t.Fatalf("ls returned %v", status)
			}
			got := strings.Fields(out.String())
			if strings.Join(got, " ") != strings.Join(tc.want, " ") {
				t.Errorf("ls %v = %v, want %v", tc.args, got, tc.want)
			}
		})
	}

	out.Reset()
	run(t, &lsCmd{})
	for _, want := range []string{"141/80", "2024-02-29 21:15", "high"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("ls output misses %q:\n%s", want, out)
		}
	}

	for _, args := range [][]string{{"-status", "critical"}, {"-s", "2024-04-01"}, {"-p", "decade"}, {"-n", "-1"}} {
		if status := run(t, &lsCmd{}, args...); status != subcommands.ExitUsageError {
			t.Errorf("ls %v returned %v, want a usage error", args, status)
		}
	}
}

func TestImportExport(t *testing.T) {
	dir, out := setupApp(t)
	doc := filepath.Join(dir, "in.json")
	if err := os.WriteFile(doc, []byte(`{"entries":[{"sys":130,"dia":85,"puls":70},{"sys":0,"dia":85,"puls":70}]}`), 0644); err != nil {
		t.Fatal(err)
	}

	if status := run(t, &importCmd{}, "-path", "$.entries", doc); status != subcommands.ExitSuccess {
		t.Fatalf("import returned %v", status)
	}
	if !strings.Contains(out.String(), "Imported 1 reading.") {
		t.Errorf("unexpected import output: %q", out)
	}

	stdin = strings.NewReader("not json")
	if status := run(t, &importCmd{}); status != subcommands.ExitFailure {
		t.Errorf("import of invalid json returned %v", status)
	}

	out.Reset()
	if status := run(t, &exportCmd{}); status != subcommands.ExitSuccess {
		t.Fatalf("export returned %v", status)
	}
	if got, want := out.String(), string(ledger(t).Export()); got != want {
		t.Errorf("export to stdout = %q, want %q", got, want)
	}

	if status := run(t, &exportCmd{}, "-o", dir); status != subcommands.ExitSuccess {
		t.Fatalf("export to a directory returned %v", status)
	}
	data, err := os.ReadFile(filepath.Join(dir, "blutdruck_daten_2024-03-01.json"))
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	// The export imports back into an empty ledger.
	config.File = filepath.Join(dir, "other.json")
	stdin = bytes.NewReader(data)
	run(t, &importCmd{}, "-")
	if got := ledger(t).Export(); !bytes.Equal(got, data) {
		t.Errorf("round trip mismatch:\n%s\n%s", got, data)
	}
}

func TestPrint(t *testing.T) {
	dir, out := setupApp(t)
	run(t, &addCmd{}, "-sys", "141", "-dia", "80", "-puls", "72", "-d", "2024-02-29T21:15")
	run(t, &addCmd{}, "-sys", "120", "-dia", "80", "-puls", "60", "-d", "2024-01-15T08:00")

	out.Reset()
	if status := run(t, &printCmd{}, "-p", "month"); status != subcommands.ExitSuccess {
		t.Fatalf("print returned %v", status)
	}
	got := out.String()
	for _, want := range []string{"# Blood pressure log", "Printed on 2024-03-01.", "Readings from 2024-03-01 to 2024-03-31", "No readings."} {
		if !strings.Contains(got, want) {
			t.Errorf("print output misses %q:\n%s", want, got)
		}
	}

	page := filepath.Join(dir, "log.html")
	if status := run(t, &printCmd{}, "-html", "-o", page); status != subcommands.ExitSuccess {
		t.Fatalf("print -html returned %v", status)
	}
	html, err := os.ReadFile(page)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<title>Blood pressure log 2024-03-01</title>", "29.02. 21:15", "15.01. 08:00"} {
		if !strings.Contains(string(html), want) {
			t.Errorf("print -html misses %q:\n%s", want, html)
		}
	}
}

func TestSQLiteStorage(t *testing.T) {
	setupApp(t)
	config.Storage = "sqlite"

	run(t, &addCmd{}, "120", "80", "60")
	if n := ledger(t).Len(); n != 1 {
		t.Fatalf("expected 1 reading in the database, got %d", n)
	}
	if _, err := os.Stat(config.File); !os.IsNotExist(err) {
		t.Errorf("sqlite storage wrote the JSON file")
	}
}

func TestOpenFailure(t *testing.T) {
	dir, _ := setupApp(t)
	// A directory in place of the ledger file cannot be read.
	config.File = filepath.Join(dir, "blocked")
	if err := os.Mkdir(config.File, 0755); err != nil {
		t.Fatal(err)
	}
	if status := run(t, &addCmd{}, "120", "80", "60"); status != subcommands.ExitFailure {
		t.Errorf("add returned %v on an unreadable ledger", status)
	}
}

type failingStorage struct{}

func (failingStorage) Load() ([]byte, error) { return nil, nil }
func (failingStorage) Save([]byte) error     { return errors.New("disk full") }

func TestCheckSave(t *testing.T) {
	l := bloodpressure.NewLedger(failingStorage{})
	l.Delete("x")
	if status := checkSave(l); status != subcommands.ExitFailure {
		t.Errorf("checkSave() = %v after a failed save, want a failure", status)
	}

	l = bloodpressure.NewLedger(nil)
	l.Delete("x")
	if status := checkSave(l); status != subcommands.ExitSuccess {
		t.Errorf("checkSave() = %v after a successful save", status)
	}
}

func TestTopic(t *testing.T) {
	_, out := setupApp(t)
	if status := run(t, &topicCmd{}, "status"); status != subcommands.ExitSuccess {
		t.Fatalf("topic returned %v", status)
	}
	if !strings.Contains(out.String(), "# Status") {
		t.Errorf("unexpected topic output:\n%s", out)
	}
	out.Reset()
	run(t, &topicCmd{}, "-list")
	if !strings.Contains(out.String(), "import") {
		t.Errorf("topic -list misses import:\n%s", out)
	}
	if status := run(t, &topicCmd{}, "nope"); status != subcommands.ExitFailure {
		t.Errorf("unknown topic returned %v", status)
	}
}

func TestLoadConfig(t *testing.T) {
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	t.Setenv("XDG_DATA_HOME", "/data")
	if err := os.MkdirAll(filepath.Join(cfgHome, "bp"), 0755); err != nil {
		t.Fatal(err)
	}
	yaml := "storage: sqlite\ndb: /var/bp.db\ntimezone: Europe/Berlin\n"
	if err := os.WriteFile(filepath.Join(cfgHome, "bp", "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}
	want := Config{Storage: "sqlite", File: "/data/bp/bp_entries.json", DB: "/var/bp.db", Timezone: "Europe/Berlin", Addr: "127.0.0.1:8080"}
	if cfg != want {
		t.Errorf("LoadConfig() = %+v, want %+v", cfg, want)
	}

	// The environment wins over the file.
	t.Setenv("BP_TIMEZONE", "UTC")
	t.Setenv("BP_VERBOSE", "true")
	if cfg, _ = LoadConfig(nil); cfg.Timezone != "UTC" || !cfg.Verbose {
		t.Errorf("LoadConfig() ignored the environment: %+v", cfg)
	}

	// Flags win over the environment.
	fs := flag.NewFlagSet("bp", flag.ContinueOnError)
	fs.String("storage", "", "")
	fs.String("tz", "", "")
	if err := fs.Parse([]string{"-storage", "file", "-tz", "Asia/Tokyo"}); err != nil {
		t.Fatal(err)
	}
	if cfg, _ = LoadConfig(fs); cfg.Storage != "file" || cfg.Timezone != "Asia/Tokyo" {
		t.Errorf("LoadConfig() ignored the flags: %+v", cfg)
	}

	t.Setenv("BP_STORAGE", "s3")
	if _, err := LoadConfig(nil); err == nil {
		t.Errorf("LoadConfig() accepted an unknown storage")
	}
}

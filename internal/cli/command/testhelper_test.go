package command

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

// testContext creates a CLI context with the global flags parsed from
// args.
func testContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()

	app := &cli.App{
		Name:     "test",
		Flags:    globalFlags(),
		Metadata: map[string]any{},
	}

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range app.Flags {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply flag: %v", err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	return cli.NewContext(app, set, nil)
}

// result captures one application run.
type result struct {
	stdout string
	stderr string
	err    error
}

// runApp runs the cfkv application with args and stdin.
func runApp(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"cfkv"}, args...))
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// mustRun runs the application and fails the test on error.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()

	r := runApp(t, "", args...)
	if r.err != nil {
		t.Fatalf("cfkv %s: %v\nstderr: %s", strings.Join(args, " "), r.err, r.stderr)
	}
	return r.stdout
}

// dataDir returns the global flags for a fresh database directory.
func dataDir(t *testing.T) []string {
	t.Helper()
	return []string{"--data-dir", filepath.Join(t.TempDir(), "db")}
}

// writeConfig writes a YAML configuration file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cfkv.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// decodeEntries parses JSON output of get and mget.
func decodeEntries(t *testing.T, out string) []entry {
	t.Helper()

	var entries []entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode entries: %v\noutput: %s", err, out)
	}
	return entries
}

func withArgs(base []string, args ...string) []string {
	out := make([]string, 0, len(base)+len(args))
	out = append(out, base...)
	return append(out, args...)
}

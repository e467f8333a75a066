package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default; the command tree is
// package state shared by all tests.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func executeSplit(args ...string) (string, string, error) {
	resetFlags(rootCmd)
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func executeCommand(args ...string) (string, error) {
	out, errOut, err := executeSplit(args...)
	return out + errOut, err
}

func summaryLine(pass, fail, incomplete, errors int) string {
	return fmt.Sprintf("Verification Finished with %d pass, %d fail, %d incomplete, %d errors (%d algorithms)\n",
		pass, fail, incomplete, errors, pass+fail+incomplete+errors)
}

// writeResults lays out a small results directory and isolates HOME so
// the default config and archive locations are never touched.
func writeResults(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	files := map[string]string{
		"parout_L_full_2_fsync.txt": "  12 : PASS sdSOH\n  14 : PASS S0_S1\n" +
			"Run options: Cli { weak_filter: false }\n" + summaryLine(10, 2, 0, 0),
		"parout_L_full_2_async.txt":           "  14 : PASS S0_S1\n" + summaryLine(0, 12, 0, 0),
		"parout_external_3_async.txt":         "Run options: Cli { weak_filter: true, ramdisk: None }\n" + summaryLine(4, 5, 0, 0),
		"parout_external_3_async-regular.txt": summaryLine(1, 0, 0, 0),
		"parout_external_3_teleporting.txt":   summaryLine(1, 0, 0, 0),
		"notes.txt":                           "not a report\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

const wantMarkdown = "" +
	"| model        | fsync | async |\n" +
	"| ------------ | ----- | ----- |\n" +
	"| full 2 L     |    10 |     0 |\n" +
	"| external 3   |       |     4 |\n"

func TestVersionCommand(t *testing.T) {
	SetVersion("test-version")
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "test-version") {
		t.Errorf("expected version output to contain 'test-version', got: %s", out)
	}
}

func TestRootHelp(t *testing.T) {
	out, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedSubcommands := []string{"table", "passlist", "heatmap", "config", "db", "analytics", "version"}
	for _, sub := range expectedSubcommands {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing subcommand %q", sub)
		}
	}
}

func TestDBSubcommands(t *testing.T) {
	subcmds := []string{"migrate", "reset", "import", "runs", "show", "delete"}
	for _, sub := range subcmds {
		out, err := executeCommand("db", sub, "--help")
		if err != nil {
			t.Errorf("db %s --help failed: %v", sub, err)
		}
		if out == "" {
			t.Errorf("db %s --help produced no output", sub)
		}
	}
}

func TestTableMarkdown(t *testing.T) {
	dir := writeResults(t)

	out, errOut, err := executeSplit("table", "--format", "markdown", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, wantMarkdown, out)
	assert.Contains(t, errOut, "table written")
}

func TestTableCSVDefaultOutput(t *testing.T) {
	dir := writeResults(t)

	out, _, err := executeSplit("table", "--dir", dir)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(filepath.Join(dir, "outcomes.csv"))
	require.NoError(t, err)
	want := "" +
		"lights,classL,colors,scheduler,pass,fail,incomplete,errors,total,weak_filter\n" +
		"full,true,2,fsync,10,2,0,0,12,false\n" +
		"full,true,2,async,0,12,0,0,12,false\n" +
		"external,false,3,async,4,5,0,0,9,true\n"
	assert.Equal(t, want, string(data))
}

func TestTableLatex(t *testing.T) {
	dir := writeResults(t)

	out, _, err := executeSplit("table", "--format", "latex", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `\begin{tabular}{r@{~~}rl}`)
	assert.Contains(t, out, `\slanted{\Head{\FSYNC}}`)
	assert.Contains(t, out, `\FAIL`)
	assert.Contains(t, out, `\itshape (4)`)
	assert.Contains(t, out, "% synthreport table --dir=")
}

func TestTableOutputFlag(t *testing.T) {
	dir := writeResults(t)
	target := filepath.Join(t.TempDir(), "out", "table.md")

	_, _, err := executeSplit("table", "--format", "markdown", "--dir", dir, "-o", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, wantMarkdown, string(data))
}

func TestTableUnknownFormat(t *testing.T) {
	dir := writeResults(t)
	_, err := executeCommand("table", "--format", "html", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "html"`)
}

func TestTableMissingDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := executeCommand("table", "--format", "markdown", "--dir", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestPasslist(t *testing.T) {
	dir := writeResults(t)

	out, _, err := executeSplit("passlist", "--format", "markdown", "--dir", dir)
	require.NoError(t, err)
	want := "" +
		"| model        | num   | code  | fsync | async |\n" +
		"| ------------ | ----- | ----- | ----- | ----- |\n" +
		"| full 2 L     |    12 | sdSOH | O     |       |\n" +
		"| full 2 L     |    14 | S0_S1 | O     | O     |\n"
	assert.Equal(t, want, out)

	_, _, err = executeSplit("passlist", "--dir", dir)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "summary.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "lights,classL,colors,num,code,fsync,async\n"))
}

func TestHeatmap(t *testing.T) {
	dir := writeResults(t)
	_, _, err := executeSplit("table", "--dir", dir)
	require.NoError(t, err)

	img := filepath.Join(dir, "heatmap.svg")
	out, _, err := executeSplit("heatmap", "--csv", filepath.Join(dir, "outcomes.csv"), "-o", img, "--print")
	require.NoError(t, err)
	assert.Contains(t, out, "full 2L")
	assert.Contains(t, out, "0.83")

	info, err := os.Stat(img)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestHeatmapMissingCSV(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := executeCommand("heatmap", "--csv", filepath.Join(t.TempDir(), "none.csv"), "-o", filepath.Join(t.TempDir(), "h.svg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open outcomes")
}

func TestConfigValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := executeCommand("config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid.")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("report:\n  schedulers: [\"Bad Name\"]\n"), 0o644))
	out, err = executeCommand("config", "validate", "--config", bad)
	require.Error(t, err)
	assert.Contains(t, out, "Validation errors:")
	assert.Contains(t, out, "report.schedulers")
}

func TestConfigShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "synthreport.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("report:\n  results_dir: runs\n"), 0o644))

	out, err := executeCommand("config", "show", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "results_dir: runs")
	assert.Contains(t, out, "outcomes_file: outcomes.csv")

	out, err = executeCommand("config", "show", "--defaults", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "results_dir: results")
	assert.Contains(t, out, "async-move-atomic")
}

func TestInvalidConfigBlocksTable(t *testing.T) {
	dir := writeResults(t)
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("report:\n  schedulers: [fsync]\n  skip_schedulers: [fsync]\n"), 0o644))

	_, err := executeCommand("table", "--format", "markdown", "--dir", dir, "--config", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

func TestDBImportShowRuns(t *testing.T) {
	dir := writeResults(t)
	dbPath := filepath.Join(t.TempDir(), "reports.db")

	out, _, err := executeSplit("db", "import", "--dir", dir, "--db", dbPath)
	require.NoError(t, err)
	runID := strings.TrimSpace(out)
	require.NotEmpty(t, runID)

	out, _, err = executeSplit("db", "runs", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, runID)
	assert.Contains(t, out, dir)

	out, _, err = executeSplit("db", "show", runID, "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, wantMarkdown, out)

	_, err = executeCommand("db", "show", "no-such-run", "--db", dbPath)
	require.Error(t, err)

	out, _, err = executeSplit("db", "delete", runID, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted import")

	out, _, err = executeSplit("db", "runs", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No imports found.")
}

func TestDBReset(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "reports.db")

	_, err := executeCommand("db", "reset", "--db", dbPath)
	require.Error(t, err)

	out, err := executeCommand("db", "reset", "--yes", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Archive reset.")

	out, err = executeCommand("db", "migrate", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestAnalytics(t *testing.T) {
	dir := writeResults(t)
	dbPath := filepath.Join(t.TempDir(), "reports.db")

	_, err := executeCommand("analytics", "schedulers", "--db", dbPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archive is empty")

	out, _, err := executeSplit("db", "import", "--dir", dir, "--db", dbPath)
	require.NoError(t, err)
	first := strings.TrimSpace(out)

	out, _, err = executeSplit("analytics", "schedulers", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "SCHEDULER")
	assert.Contains(t, out, "fsync")

	out, _, err = executeSplit("analytics", "models", "--db", dbPath, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"lights": "full"`)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "parout_L_full_2_async.txt"), []byte(summaryLine(5, 7, 0, 0)), 0o644))
	out, _, err = executeSplit("db", "import", "--dir", dir, "--db", dbPath)
	require.NoError(t, err)
	second := strings.TrimSpace(out)

	out, _, err = executeSplit("analytics", "diff", first, second, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "async")
	assert.NotContains(t, out, "fsync")

	_, err = executeCommand("analytics", "diff", first, "nope", "--db", dbPath)
	assert.Error(t, err)
}

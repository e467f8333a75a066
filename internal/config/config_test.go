package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validConfig = `
report:
  results_dir: out
  outcomes_file: outcomes.csv
  pass_list_file: pass.csv
  schedulers:
    - centralized
    - fsync
    - ssync
    - async
    - async-safe
  skip_schedulers:
    - async-safe
  latex:
    no_algorithm_marker: "--"
    scheduler_labels:
      fsync: "\\FSYNC*"
  heatmap:
    output: plot.svg
    schedulers: [fsync, async]
    lights: [full]
    class_l: [true, false]
    ranges:
      - lights: full
        class_l: true
        min_colors: 2
        max_colors: 3
      - lights: full
        class_l: false
        min_colors: 2
        max_colors: 2
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "synthreport.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	r := cfg.Report
	if r.ResultsDir != "out" {
		t.Errorf("ResultsDir = %q, want %q", r.ResultsDir, "out")
	}
	if got := r.OutcomesPath(); got != filepath.Join("out", "outcomes.csv") {
		t.Errorf("OutcomesPath() = %q", got)
	}
	if got := r.PassListPath(); got != filepath.Join("out", "pass.csv") {
		t.Errorf("PassListPath() = %q", got)
	}
	if len(r.Schedulers) != 5 || r.Schedulers[3] != "async" {
		t.Errorf("Schedulers = %v", r.Schedulers)
	}
	if len(r.SkipSchedulers) != 1 || r.SkipSchedulers[0] != "async-safe" {
		t.Errorf("SkipSchedulers = %v", r.SkipSchedulers)
	}
	if r.Latex.NoAlgorithmMarker != "--" {
		t.Errorf("NoAlgorithmMarker = %q", r.Latex.NoAlgorithmMarker)
	}
	if r.Heatmap.Output != "plot.svg" {
		t.Errorf("Heatmap.Output = %q", r.Heatmap.Output)
	}
	if len(r.Heatmap.Ranges) != 2 {
		t.Errorf("expected 2 ranges, got %d", len(r.Heatmap.Ranges))
	}

	errs := Validate(cfg)
	if len(errs) != 0 {
		t.Errorf("Validate() returned %d errors for valid config:", len(errs))
		for _, e := range errs {
			t.Errorf("  - %s", e)
		}
	}
}

func TestLabelsMerge(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	l := cfg.Report.Latex
	if got := l.Label("fsync"); got != `\FSYNC*` {
		t.Errorf("Label(fsync) = %q, want override", got)
	}
	if got := l.Label("ssync"); got != `\SSYNC` {
		t.Errorf("Label(ssync) = %q, want default", got)
	}
	if got := l.Label("brand-new"); got != "brand-new" {
		t.Errorf("Label(brand-new) = %q, want the name itself", got)
	}
}

func TestDefaultsMerge(t *testing.T) {
	path := writeTestConfig(t, "report:\n  results_dir: elsewhere\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	def := Default().Report
	r := cfg.Report
	if r.ResultsDir != "elsewhere" {
		t.Errorf("ResultsDir = %q", r.ResultsDir)
	}
	if r.OutcomesFile != def.OutcomesFile || r.PassListFile != def.PassListFile {
		t.Errorf("file names not defaulted: %q %q", r.OutcomesFile, r.PassListFile)
	}
	if len(r.Schedulers) != len(def.Schedulers) {
		t.Errorf("Schedulers = %v", r.Schedulers)
	}
	if len(r.SkipSchedulers) != len(def.SkipSchedulers) {
		t.Errorf("SkipSchedulers = %v", r.SkipSchedulers)
	}
	if r.Heatmap.Output != "heatmap.pdf" {
		t.Errorf("Heatmap.Output = %q", r.Heatmap.Output)
	}
	if errs := Validate(cfg); len(errs) != 0 {
		t.Errorf("defaults should validate, got %v", errs)
	}
}

func TestCustomSchedulersDropDefaultSkips(t *testing.T) {
	yaml := `
report:
  schedulers: [fsync, async]
  heatmap:
    schedulers: [fsync]
`
	cfg, err := Load(writeTestConfig(t, yaml))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Report.SkipSchedulers) != 0 {
		t.Errorf("SkipSchedulers = %v, want none", cfg.Report.SkipSchedulers)
	}
}

func TestDefaultValidates(t *testing.T) {
	if errs := Validate(Default()); len(errs) != 0 {
		t.Errorf("Default() has validation errors: %v", errs)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
		msg   string
	}{
		{
			name: "duplicate scheduler",
			yaml: `
report:
  schedulers: [fsync, fsync]
  heatmap:
    schedulers: [fsync]
`,
			field: "report.schedulers[1]",
			msg:   "duplicate",
		},
		{
			name: "invalid scheduler name",
			yaml: `
report:
  schedulers: [fsync, "Async Mode"]
  heatmap:
    schedulers: [fsync]
`,
			field: "report.schedulers[1]",
			msg:   "invalid scheduler name",
		},
		{
			name: "unknown skip",
			yaml: `
report:
  schedulers: [fsync, async]
  skip_schedulers: [ssync]
  heatmap:
    schedulers: [fsync]
`,
			field: "report.skip_schedulers[0]",
			msg:   "undefined scheduler",
		},
		{
			name: "everything skipped",
			yaml: `
report:
  schedulers: [fsync]
  skip_schedulers: [fsync]
  heatmap:
    schedulers: [fsync]
`,
			field: "report.skip_schedulers",
			msg:   "every scheduler",
		},
		{
			name: "heatmap scheduler skipped",
			yaml: `
report:
  schedulers: [fsync, async]
  skip_schedulers: [async]
  heatmap:
    schedulers: [async]
`,
			field: "report.heatmap.schedulers[0]",
			msg:   "is skipped",
		},
		{
			name: "heatmap scheduler unknown",
			yaml: `
report:
  schedulers: [fsync]
  heatmap:
    schedulers: [centralized]
`,
			field: "report.heatmap.schedulers[0]",
			msg:   "undefined scheduler",
		},
		{
			name: "bad heatmap lights",
			yaml: `
report:
  heatmap:
    lights: [partial]
`,
			field: "report.heatmap.lights[0]",
			msg:   "unknown light model",
		},
		{
			name: "inverted range",
			yaml: `
report:
  heatmap:
    lights: [full]
    class_l: [true]
    ranges:
      - {lights: full, class_l: true, min_colors: 4, max_colors: 2}
`,
			field: "report.heatmap.ranges[0].max_colors",
			msg:   "less than min_colors",
		},
		{
			name: "missing range",
			yaml: `
report:
  heatmap:
    lights: [full, internal]
    class_l: [true]
    ranges:
      - {lights: full, class_l: true, min_colors: 2, max_colors: 3}
`,
			field: "report.heatmap.ranges",
			msg:   "no range for internal class_l=true",
		},
		{
			name: "duplicate range",
			yaml: `
report:
  heatmap:
    lights: [full]
    class_l: [true]
    ranges:
      - {lights: full, class_l: true, min_colors: 2, max_colors: 3}
      - {lights: full, class_l: true, min_colors: 2, max_colors: 4}
`,
			field: "report.heatmap.ranges[1]",
			msg:   "duplicate range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeTestConfig(t, tt.yaml))
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			errs := Validate(cfg)
			found := false
			for _, e := range errs {
				if e.Field == tt.field && strings.Contains(e.Message, tt.msg) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error on %s containing %q, got %v", tt.field, tt.msg, errs)
			}
		})
	}
}

func TestValidateEmptyConfig(t *testing.T) {
	errs := Validate(&Config{})
	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, f := range []string{"report.results_dir", "report.schedulers", "report.heatmap.output"} {
		if !fields[f] {
			t.Errorf("expected error on %s, got %v", f, errs)
		}
	}
}

func TestFindRange(t *testing.T) {
	h := Default().Report.Heatmap
	cr, ok := h.FindRange("external", true)
	if !ok {
		t.Fatal("expected range for external class L")
	}
	if cr.MinColors != 3 || cr.MaxColors != 7 {
		t.Errorf("got %+v", cr)
	}
	if _, ok := h.FindRange("internal", true); ok {
		t.Error("expected no default range for internal")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeTestConfig(t, "not: [valid: yaml: !!!")
	_, err := Load(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadNonexistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadDefaultFallsBackToBuiltin(t *testing.T) {
	orig, _ := os.Getwd()
	dir := t.TempDir()
	os.Chdir(dir)
	defer os.Chdir(orig)
	t.Setenv("HOME", dir)

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error: %v", err)
	}
	if cfg.Report.ResultsDir != "results" {
		t.Errorf("ResultsDir = %q, want built-in default", cfg.Report.ResultsDir)
	}
}

func TestLoadDefaultFromCurrentDir(t *testing.T) {
	orig, _ := os.Getwd()
	dir := t.TempDir()
	os.Chdir(dir)
	defer os.Chdir(orig)

	os.WriteFile(filepath.Join(dir, "synthreport.yaml"), []byte("report:\n  results_dir: local\n"), 0644)

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error: %v", err)
	}
	if cfg.Report.ResultsDir != "local" {
		t.Errorf("ResultsDir = %q, want %q", cfg.Report.ResultsDir, "local")
	}
}

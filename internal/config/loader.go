package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default returns the built-in configuration for the gathering experiments.
func Default() *Config {
	return &Config{Report: Report{
		ResultsDir:   "results",
		OutcomesFile: "outcomes.csv",
		PassListFile: "summary.csv",
		Schedulers: []string{
			"centralized", "fsync", "ssync", "async-lc-strict", "async-lc-atomic",
			"async-cm-atomic", "async-move-atomic", "async-move-regular",
			"async-move-safe", "async", "async-regular", "async-safe",
		},
		SkipSchedulers: []string{
			"async-move-regular", "async-move-safe", "async-regular", "async-safe",
		},
		Latex: Latex{
			NoAlgorithmMarker: `\FAIL`,
			SchedulerLabels: map[string]string{
				"centralized":        `\CENTRALIZED`,
				"fsync":              `\FSYNC`,
				"ssync":              `\SSYNC`,
				"async-lc-strict":    `LC-strict \ASYNC`,
				"async-lc-atomic":    `LC-atomic \ASYNC`,
				"async-cm-atomic":    `CM-atomic \ASYNC`,
				"async-move-atomic":  `Move-atomic \ASYNC`,
				"async-move-regular": `Move-regular \ASYNC`,
				"async-move-safe":    `Move-safe \ASYNC`,
				"async":              `\ASYNC`,
				"async-regular":      `\ASYNC regular`,
				"async-safe":         `\ASYNC safe`,
			},
		},
		Heatmap: Heatmap{
			Output: "heatmap.pdf",
			Schedulers: []string{
				"centralized", "fsync", "ssync", "async-lc-atomic",
				"async-cm-atomic", "async-move-atomic", "async",
			},
			Lights: []string{"full", "external"},
			ClassL: []bool{true, false},
			Ranges: []ColorRange{
				{Lights: "full", ClassL: false, MinColors: 2, MaxColors: 2},
				{Lights: "full", ClassL: true, MinColors: 2, MaxColors: 3},
				{Lights: "external", ClassL: false, MinColors: 3, MaxColors: 4},
				{Lights: "external", ClassL: true, MinColors: 3, MaxColors: 7},
			},
		},
	}}
}

// Load reads and parses a configuration from the given YAML file path.
// After parsing, it fills every unset field from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault searches for a config in standard locations and loads the
// first one found. Search order: ./synthreport.yaml, ~/.synthreport/config.yaml.
// With no file present it returns Default.
func LoadDefault() (*Config, error) {
	candidates := []string{"synthreport.yaml"}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".synthreport", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return Default(), nil
}

// applyDefaults fills fields the file left unset. Lists are replaced as a
// whole; scheduler labels are merged key by key.
func applyDefaults(cfg *Config) {
	def := Default().Report
	r := &cfg.Report

	if r.ResultsDir == "" {
		r.ResultsDir = def.ResultsDir
	}
	if r.OutcomesFile == "" {
		r.OutcomesFile = def.OutcomesFile
	}
	if r.PassListFile == "" {
		r.PassListFile = def.PassListFile
	}
	if len(r.Schedulers) == 0 {
		r.Schedulers = def.Schedulers
		// An explicit skip_schedulers, even an empty one, is kept.
		if r.SkipSchedulers == nil {
			r.SkipSchedulers = def.SkipSchedulers
		}
	}
	if r.Latex.NoAlgorithmMarker == "" {
		r.Latex.NoAlgorithmMarker = def.Latex.NoAlgorithmMarker
	}
	if r.Latex.SchedulerLabels == nil {
		r.Latex.SchedulerLabels = make(map[string]string)
	}
	for k, v := range def.Latex.SchedulerLabels {
		if _, ok := r.Latex.SchedulerLabels[k]; !ok {
			r.Latex.SchedulerLabels[k] = v
		}
	}

	h := &r.Heatmap
	if h.Output == "" {
		h.Output = def.Heatmap.Output
	}
	if len(h.Schedulers) == 0 {
		h.Schedulers = def.Heatmap.Schedulers
	}
	if len(h.Lights) == 0 {
		h.Lights = def.Heatmap.Lights
	}
	if len(h.ClassL) == 0 {
		h.ClassL = def.Heatmap.ClassL
	}
	if len(h.Ranges) == 0 {
		h.Ranges = def.Heatmap.Ranges
	}
}

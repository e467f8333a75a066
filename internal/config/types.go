package config

import "path/filepath"

// Config is the top-level configuration structure parsed from synthreport YAML.
type Config struct {
	Report Report `yaml:"report"`
}

// Report defines where reports live, which schedulers are tabulated and how
// the renderers label them.
type Report struct {
	ResultsDir     string   `yaml:"results_dir"`
	OutcomesFile   string   `yaml:"outcomes_file"`
	PassListFile   string   `yaml:"pass_list_file"`
	Schedulers     []string `yaml:"schedulers"`
	SkipSchedulers []string `yaml:"skip_schedulers"`
	Latex          Latex    `yaml:"latex"`
	Heatmap        Heatmap  `yaml:"heatmap"`
}

// Latex holds LaTeX table settings.
type Latex struct {
	NoAlgorithmMarker string            `yaml:"no_algorithm_marker"`
	SchedulerLabels   map[string]string `yaml:"scheduler_labels"`
}

// Heatmap defines the fixed axes of the heatmap plot.
type Heatmap struct {
	Output     string       `yaml:"output"`
	Schedulers []string     `yaml:"schedulers"`
	Lights     []string     `yaml:"lights"`
	ClassL     []bool       `yaml:"class_l"`
	Ranges     []ColorRange `yaml:"ranges"`
}

// ColorRange is the inclusive range of color counts plotted for one
// (lights, class L) group.
type ColorRange struct {
	Lights    string `yaml:"lights"`
	ClassL    bool   `yaml:"class_l"`
	MinColors int    `yaml:"min_colors"`
	MaxColors int    `yaml:"max_colors"`
}

// OutcomesPath is the summary CSV read by the heatmap.
func (r Report) OutcomesPath() string {
	return filepath.Join(r.ResultsDir, r.OutcomesFile)
}

// PassListPath is the per-algorithm CSV.
func (r Report) PassListPath() string {
	return filepath.Join(r.ResultsDir, r.PassListFile)
}

// Label returns the LaTeX column label for a scheduler, falling back to its name.
func (l Latex) Label(sched string) string {
	if label, ok := l.SchedulerLabels[sched]; ok && label != "" {
		return label
	}
	return sched
}

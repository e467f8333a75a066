package config

import (
	"fmt"
	"regexp"

	"github.com/lucasnoah/synthreport/internal/report"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// schedulerNameRe matches the scheduler token allowed in report filenames.
var schedulerNameRe = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Validate checks a Config for structural and semantic errors.
// It returns a slice of all validation errors found (empty if valid).
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError
	r := cfg.Report

	if r.ResultsDir == "" {
		errs = append(errs, ValidationError{Field: "report.results_dir", Message: "is required"})
	}
	if r.OutcomesFile == "" {
		errs = append(errs, ValidationError{Field: "report.outcomes_file", Message: "is required"})
	}
	if r.PassListFile == "" {
		errs = append(errs, ValidationError{Field: "report.pass_list_file", Message: "is required"})
	}
	if len(r.Schedulers) == 0 {
		errs = append(errs, ValidationError{Field: "report.schedulers", Message: "at least one scheduler is required"})
	}

	known := make(map[string]bool)
	for i, s := range r.Schedulers {
		field := fmt.Sprintf("report.schedulers[%d]", i)
		if !schedulerNameRe.MatchString(s) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid scheduler name %q", s),
			})
		}
		if known[s] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate scheduler %q", s),
			})
		}
		known[s] = true
	}

	skipped := make(map[string]bool)
	for i, s := range r.SkipSchedulers {
		if !known[s] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("report.skip_schedulers[%d]", i),
				Message: fmt.Sprintf("references undefined scheduler %q", s),
			})
		}
		skipped[s] = true
	}
	remaining := 0
	for s := range known {
		if !skipped[s] {
			remaining++
		}
	}
	if len(known) > 0 && remaining == 0 {
		errs = append(errs, ValidationError{Field: "report.skip_schedulers", Message: "excludes every scheduler"})
	}

	validateHeatmap(r.Heatmap, known, skipped, &errs)
	return errs
}

// validateHeatmap checks that every heatmap axis value can actually occur in
// the outcomes CSV and that each plotted group has a color range.
func validateHeatmap(h Heatmap, known, skipped map[string]bool, errs *[]ValidationError) {
	if h.Output == "" {
		*errs = append(*errs, ValidationError{Field: "report.heatmap.output", Message: "is required"})
	}

	for i, s := range h.Schedulers {
		field := fmt.Sprintf("report.heatmap.schedulers[%d]", i)
		switch {
		case !known[s]:
			*errs = append(*errs, ValidationError{Field: field, Message: fmt.Sprintf("references undefined scheduler %q", s)})
		case skipped[s]:
			*errs = append(*errs, ValidationError{Field: field, Message: fmt.Sprintf("scheduler %q is skipped", s)})
		}
	}

	for i, l := range h.Lights {
		if _, err := report.ParseLights(l); err != nil {
			*errs = append(*errs, ValidationError{
				Field:   fmt.Sprintf("report.heatmap.lights[%d]", i),
				Message: err.Error(),
			})
		}
	}

	type group struct {
		lights string
		classL bool
	}
	ranges := make(map[group]bool)
	for i, cr := range h.Ranges {
		prefix := fmt.Sprintf("report.heatmap.ranges[%d]", i)
		if _, err := report.ParseLights(cr.Lights); err != nil {
			*errs = append(*errs, ValidationError{Field: prefix + ".lights", Message: err.Error()})
		}
		if cr.MinColors < 1 {
			*errs = append(*errs, ValidationError{Field: prefix + ".min_colors", Message: "must be at least 1"})
		}
		if cr.MaxColors < cr.MinColors {
			*errs = append(*errs, ValidationError{Field: prefix + ".max_colors", Message: "must not be less than min_colors"})
		}
		g := group{cr.Lights, cr.ClassL}
		if ranges[g] {
			*errs = append(*errs, ValidationError{
				Field:   prefix,
				Message: fmt.Sprintf("duplicate range for %s class_l=%v", cr.Lights, cr.ClassL),
			})
		}
		ranges[g] = true
	}

	for _, l := range h.Lights {
		for _, c := range h.ClassL {
			if !ranges[group{l, c}] {
				*errs = append(*errs, ValidationError{
					Field:   "report.heatmap.ranges",
					Message: fmt.Sprintf("no range for %s class_l=%v", l, c),
				})
			}
		}
	}
}

// FindRange returns the color range configured for a heatmap group.
func (h Heatmap) FindRange(lights string, classL bool) (ColorRange, bool) {
	for _, cr := range h.Ranges {
		if cr.Lights == lights && cr.ClassL == classL {
			return cr, true
		}
	}
	return ColorRange{}, false
}

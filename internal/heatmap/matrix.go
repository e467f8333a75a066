// Package heatmap turns the outcomes CSV into a pass-ratio matrix over
// fixed axes and plots it.
package heatmap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lucasnoah/synthreport/internal/config"
	"github.com/lucasnoah/synthreport/internal/report"
)

// Outcome is one line of the outcomes CSV.
type Outcome struct {
	Lights    report.Lights
	ClassL    bool
	Colors    int
	Scheduler string
	Pass      int
	Total     int
}

// Ratio is pass/total, or NaN when total is zero.
func (o Outcome) Ratio() float64 {
	if o.Total == 0 {
		return math.NaN()
	}
	return float64(o.Pass) / float64(o.Total)
}

// columnAliases maps the column names of older outcomes files.
var columnAliases = map[string]string{
	"model": "lights",
	"ncols": "colors",
	"sched": "scheduler",
}

var requiredColumns = []string{"lights", "classL", "colors", "scheduler", "pass", "total"}

// ReadOutcomes parses an outcomes CSV. Columns are located by header name,
// so extra columns (and a leading index column) are ignored.
func ReadOutcomes(r io.Reader) ([]Outcome, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("outcomes csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idx := make(map[string]int)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if alias, ok := columnAliases[h]; ok {
			h = alias
		}
		idx[h] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("outcomes csv: missing column %q", col)
		}
	}

	var out []Outcome
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		field := func(col string) (string, error) {
			i := idx[col]
			if i >= len(rec) {
				return "", fmt.Errorf("line %d: missing %s", line, col)
			}
			return strings.TrimSpace(rec[i]), nil
		}

		var o Outcome
		var s string
		if s, err = field("lights"); err != nil {
			return nil, err
		}
		o.Lights = report.Lights(s)
		if s, err = field("scheduler"); err != nil {
			return nil, err
		}
		o.Scheduler = s
		if s, err = field("classL"); err != nil {
			return nil, err
		}
		if o.ClassL, err = strconv.ParseBool(s); err != nil {
			return nil, fmt.Errorf("line %d: classL: %w", line, err)
		}
		for _, n := range []struct {
			col string
			dst *int
		}{{"colors", &o.Colors}, {"pass", &o.Pass}, {"total", &o.Total}} {
			if s, err = field(n.col); err != nil {
				return nil, err
			}
			if *n.dst, err = strconv.Atoi(s); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, n.col, err)
			}
		}
		out = append(out, o)
	}
	return out, nil
}

// ReadOutcomesFile opens path and parses it with ReadOutcomes.
func ReadOutcomesFile(path string) ([]Outcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open outcomes: %w", err)
	}
	defer f.Close()
	return ReadOutcomes(f)
}

// RowKey is one vertical axis entry.
type RowKey struct {
	Lights report.Lights
	ClassL bool
	Colors int
}

// Label renders a row key as in "external 5L".
func (k RowKey) Label() string {
	l := ""
	if k.ClassL {
		l = "L"
	}
	return fmt.Sprintf("%s %d%s", k.Lights, k.Colors, l)
}

// Axes is the fixed layout of the matrix.
type Axes struct {
	Rows       []RowKey
	Schedulers []string
}

// AxesFromConfig expands the heatmap settings: lights, then class L, then
// each color count of the group's range.
func AxesFromConfig(h config.Heatmap) (Axes, error) {
	ax := Axes{Schedulers: h.Schedulers}
	for _, l := range h.Lights {
		lights, err := report.ParseLights(l)
		if err != nil {
			return Axes{}, err
		}
		for _, classL := range h.ClassL {
			cr, ok := h.FindRange(l, classL)
			if !ok {
				return Axes{}, fmt.Errorf("no color range for %s class_l=%v", l, classL)
			}
			for c := cr.MinColors; c <= cr.MaxColors; c++ {
				ax.Rows = append(ax.Rows, RowKey{Lights: lights, ClassL: classL, Colors: c})
			}
		}
	}
	return ax, nil
}

// Matrix holds pass ratios; Z[r][c] is NaN where there is no data.
type Matrix struct {
	Axes
	Z [][]float64
}

// BuildMatrix places each outcome's ratio into the cell of its row and
// scheduler. Outcomes outside the axes are ignored.
func BuildMatrix(outcomes []Outcome, ax Axes) Matrix {
	m := Matrix{Axes: ax, Z: make([][]float64, len(ax.Rows))}
	rowIdx := make(map[RowKey]int, len(ax.Rows))
	for i, k := range ax.Rows {
		rowIdx[k] = i
		m.Z[i] = make([]float64, len(ax.Schedulers))
		for j := range m.Z[i] {
			m.Z[i][j] = math.NaN()
		}
	}
	colIdx := make(map[string]int, len(ax.Schedulers))
	for j, s := range ax.Schedulers {
		colIdx[s] = j
	}

	for _, o := range outcomes {
		i, ok := rowIdx[RowKey{Lights: o.Lights, ClassL: o.ClassL, Colors: o.Colors}]
		if !ok {
			continue
		}
		j, ok := colIdx[o.Scheduler]
		if !ok {
			continue
		}
		m.Z[i][j] = o.Ratio()
	}
	return m
}

// RowLabels returns the vertical axis labels in row order.
func (m Matrix) RowLabels() []string {
	labels := make([]string, len(m.Rows))
	for i, k := range m.Rows {
		labels[i] = k.Label()
	}
	return labels
}

// WriteText prints the matrix as a plain table, "?" marking missing cells.
func (m Matrix) WriteText(w io.Writer) error {
	labelWidth := 0
	for _, l := range m.RowLabels() {
		labelWidth = max(labelWidth, len(l))
	}
	if _, err := fmt.Fprintf(w, "%-*s", labelWidth, ""); err != nil {
		return err
	}
	for _, s := range m.Schedulers {
		fmt.Fprintf(w, " %*s", max(len(s), 5), s)
	}
	fmt.Fprintln(w)
	for i, label := range m.RowLabels() {
		fmt.Fprintf(w, "%-*s", labelWidth, label)
		for j, s := range m.Schedulers {
			v := "?"
			if z := m.Z[i][j]; !math.IsNaN(z) {
				v = strconv.FormatFloat(z, 'f', 2, 64)
			}
			fmt.Fprintf(w, " %*s", max(len(s), 5), v)
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

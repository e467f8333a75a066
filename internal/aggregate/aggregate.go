// Package aggregate scans a results directory and groups the parsed
// reports by configuration, with one column per scheduler.
package aggregate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/lucasnoah/synthreport/internal/report"
)

// Options controls a directory scan.
type Options struct {
	Order  Order
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Cell is one report's summary in a summary table.
type Cell struct {
	report.Summary
	File string `json:"file"`
}

// SummaryRow holds one configuration's summaries keyed by scheduler.
type SummaryRow struct {
	Key   Key             `json:"key"`
	Cells map[string]Cell `json:"cells"`
}

// SummaryTable is the summary-mode aggregate.
type SummaryTable struct {
	Columns []string     `json:"columns"`
	Rows    []SummaryRow `json:"rows"`
}

// Record is one (configuration, scheduler) cell of a summary table.
type Record struct {
	Key       Key    `json:"key"`
	Scheduler string `json:"scheduler"`
	Cell      Cell   `json:"cell"`
}

// PassRow marks which schedulers an algorithm passed under for one
// configuration.
type PassRow struct {
	Key       Key               `json:"key"`
	Algorithm report.PassRecord `json:"algorithm"`
	Present   map[string]bool   `json:"present"`
}

// PassTable is the pass-list aggregate.
type PassTable struct {
	Columns []string  `json:"columns"`
	Rows    []PassRow `json:"rows"`
}

// scanReports calls fn for every report in dir whose name classifies and
// whose scheduler is allowed. Files are visited in lexical order.
func scanReports(dir string, opts Options, fn func(path string, c report.Configuration) error) error {
	log := opts.logger()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading results directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		c, ok := report.Classify(name)
		if !ok {
			log.Debug("ignoring file", zap.String("file", name))
			continue
		}
		if !opts.Order.Allowed(c.Scheduler) {
			log.Debug("ignoring excluded scheduler", zap.String("file", name), zap.String("scheduler", c.Scheduler))
			continue
		}
		if err := fn(filepath.Join(dir, name), c); err != nil {
			return err
		}
	}
	return nil
}

// CollectSummaries builds the summary table for dir. Reports without a
// summary line are skipped with a warning; reports with errors or
// incomplete searches are kept with a warning.
func CollectSummaries(dir string, opts Options) (*SummaryTable, error) {
	log := opts.logger()
	rows := make(map[Key]*SummaryRow)

	err := scanReports(dir, opts, func(path string, c report.Configuration) error {
		name := filepath.Base(path)
		s, ok, err := report.ReadSummary(path)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if !ok {
			log.Warn("skipping report without summary", zap.String("file", name))
			return nil
		}
		if s.NeedsAttention() {
			log.Warn("report has errors or incomplete searches",
				zap.String("file", name),
				zap.Int("errors", s.Errors),
				zap.Int("incomplete", s.Incomplete))
		}

		k := KeyOf(c)
		row, ok := rows[k]
		if !ok {
			row = &SummaryRow{Key: k, Cells: make(map[string]Cell)}
			rows[k] = row
		}
		if prev, dup := row.Cells[c.Scheduler]; dup {
			log.Warn("duplicate configuration, keeping later report",
				zap.String("file", name),
				zap.String("previous", prev.File))
		}
		row.Cells[c.Scheduler] = Cell{Summary: s, File: name}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newSummaryTable(rows, opts.Order), nil
}

// SummaryTableFromRecords rebuilds a summary table from flat records.
// Records for schedulers the order does not allow are dropped; a later
// record for the same cell replaces an earlier one.
func SummaryTableFromRecords(records []Record, order Order) *SummaryTable {
	rows := make(map[Key]*SummaryRow)
	for _, r := range records {
		if !order.Allowed(r.Scheduler) {
			continue
		}
		row, ok := rows[r.Key]
		if !ok {
			row = &SummaryRow{Key: r.Key, Cells: make(map[string]Cell)}
			rows[r.Key] = row
		}
		row.Cells[r.Scheduler] = r.Cell
	}
	return newSummaryTable(rows, order)
}

func newSummaryTable(rows map[Key]*SummaryRow, order Order) *SummaryTable {
	t := &SummaryTable{}
	observed := make(map[string]bool)
	for _, row := range rows {
		for sched := range row.Cells {
			observed[sched] = true
		}
		t.Rows = append(t.Rows, *row)
	}
	sort.Slice(t.Rows, func(i, j int) bool {
		return t.Rows[i].Key.Less(t.Rows[j].Key)
	})
	t.Columns = order.Columns(observed)
	return t
}

// Records flattens the table in row order, then column order.
func (t *SummaryTable) Records() []Record {
	var out []Record
	for _, row := range t.Rows {
		for _, sched := range t.Columns {
			cell, ok := row.Cells[sched]
			if !ok {
				continue
			}
			out = append(out, Record{Key: row.Key, Scheduler: sched, Cell: cell})
		}
	}
	return out
}

// CollectPassLists builds the per-algorithm table for dir.
func CollectPassLists(dir string, opts Options) (*PassTable, error) {
	log := opts.logger()

	type rowKey struct {
		key  Key
		algo report.PassRecord
	}
	rows := make(map[rowKey]*PassRow)
	seen := make(map[report.Configuration]string)
	observed := make(map[string]bool)

	err := scanReports(dir, opts, func(path string, c report.Configuration) error {
		name := filepath.Base(path)
		algos, err := report.ReadPassList(path)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if prev, dup := seen[c]; dup {
			log.Warn("duplicate configuration, merging reports",
				zap.String("file", name),
				zap.String("previous", prev))
		}
		seen[c] = name

		k := KeyOf(c)
		for _, a := range algos {
			rk := rowKey{key: k, algo: a}
			row, ok := rows[rk]
			if !ok {
				row = &PassRow{Key: k, Algorithm: a, Present: make(map[string]bool)}
				rows[rk] = row
			}
			row.Present[c.Scheduler] = true
			observed[c.Scheduler] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t := &PassTable{Columns: opts.Order.Columns(observed)}
	for _, row := range rows {
		t.Rows = append(t.Rows, *row)
	}
	sort.Slice(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i], t.Rows[j]
		if a.Key != b.Key {
			return a.Key.Less(b.Key)
		}
		if a.Algorithm.Num != b.Algorithm.Num {
			return a.Algorithm.Num < b.Algorithm.Num
		}
		return a.Algorithm.Code < b.Algorithm.Code
	})
	return t, nil
}

package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/lucasnoah/synthreport/internal/aggregate"
)

// OutcomesHeader is the column layout of the outcomes CSV.
var OutcomesHeader = []string{
	"lights", "classL", "colors", "scheduler",
	"pass", "fail", "incomplete", "errors", "total", "weak_filter",
}

// PresentMark fills a pass-list cell whose algorithm passed under that scheduler.
const PresentMark = "O"

// WriteOutcomesCSV writes one line per (configuration, scheduler) cell.
func WriteOutcomesCSV(w io.Writer, t *aggregate.SummaryTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(OutcomesHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range t.Records() {
		s := r.Cell.Summary
		rec := []string{
			string(r.Key.Lights),
			strconv.FormatBool(r.Key.ClassL),
			strconv.Itoa(r.Key.Colors),
			r.Scheduler,
			strconv.Itoa(s.Pass),
			strconv.Itoa(s.Fail),
			strconv.Itoa(s.Incomplete),
			strconv.Itoa(s.Errors),
			strconv.Itoa(s.Total),
			strconv.FormatBool(s.WeakFilter),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePassCSV writes one line per (configuration, algorithm) with a
// column per scheduler.
func WritePassCSV(w io.Writer, t *aggregate.PassTable) error {
	cw := csv.NewWriter(w)
	header := append([]string{"lights", "classL", "colors", "num", "code"}, t.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range t.Rows {
		rec := []string{
			string(row.Key.Lights),
			strconv.FormatBool(row.Key.ClassL),
			strconv.Itoa(row.Key.Colors),
			strconv.Itoa(row.Algorithm.Num),
			row.Algorithm.Code,
		}
		for _, sched := range t.Columns {
			mark := ""
			if row.Present[sched] {
				mark = PresentMark
			}
			rec = append(rec, mark)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

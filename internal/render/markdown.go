package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/lucasnoah/synthreport/internal/aggregate"
)

const modelColumnWidth = 12

func columnWidth(name string) int {
	if len(name) < 5 {
		return 5
	}
	return len(name)
}

func writeMarkdownHeader(w io.Writer, lead []string, leadWidths []int, columns []string) {
	fmt.Fprint(w, "|")
	for i, h := range lead {
		fmt.Fprintf(w, " %-*s |", leadWidths[i], h)
	}
	for _, c := range columns {
		fmt.Fprintf(w, " %-*s |", columnWidth(c), c)
	}
	fmt.Fprintln(w)

	fmt.Fprint(w, "|")
	for _, lw := range leadWidths {
		fmt.Fprintf(w, " %s |", strings.Repeat("-", lw))
	}
	for _, c := range columns {
		fmt.Fprintf(w, " %s |", strings.Repeat("-", columnWidth(c)))
	}
	fmt.Fprintln(w)
}

// WriteMarkdown writes one row per configuration with the pass count of
// each scheduler, blank where no report exists.
func WriteMarkdown(w io.Writer, t *aggregate.SummaryTable) error {
	bw := bufio.NewWriter(w)
	writeMarkdownHeader(bw, []string{"model"}, []int{modelColumnWidth}, t.Columns)
	for _, row := range t.Rows {
		fmt.Fprintf(bw, "| %-*s |", modelColumnWidth, row.Key.String())
		for _, sched := range t.Columns {
			width := columnWidth(sched)
			if cell, ok := row.Cells[sched]; ok {
				fmt.Fprintf(bw, " %*d |", width, cell.Pass)
			} else {
				fmt.Fprintf(bw, " %*s |", width, "")
			}
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// WritePassMarkdown writes one row per (configuration, algorithm), marking
// the schedulers it passed under.
func WritePassMarkdown(w io.Writer, t *aggregate.PassTable) error {
	bw := bufio.NewWriter(w)

	codeWidth := 4
	for _, row := range t.Rows {
		if len(row.Algorithm.Code) > codeWidth {
			codeWidth = len(row.Algorithm.Code)
		}
	}
	writeMarkdownHeader(bw, []string{"model", "num", "code"}, []int{modelColumnWidth, 5, codeWidth}, t.Columns)
	for _, row := range t.Rows {
		fmt.Fprintf(bw, "| %-*s | %5d | %-*s |", modelColumnWidth, row.Key.String(), row.Algorithm.Num, codeWidth, row.Algorithm.Code)
		for _, sched := range t.Columns {
			mark := ""
			if row.Present[sched] {
				mark = PresentMark
			}
			fmt.Fprintf(bw, " %-*s |", columnWidth(sched), mark)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

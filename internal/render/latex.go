package render

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lucasnoah/synthreport/internal/aggregate"
)

// LatexOptions controls the LaTeX table.
type LatexOptions struct {
	// Invocation is echoed in the generated comment preamble.
	Invocation string
	// Now stamps the preamble; it is printed in UTC.
	Now time.Time
	// Label maps a scheduler to its column heading.
	Label func(sched string) string
	// NoAlgorithm replaces a pass count of zero.
	NoAlgorithm string
}

const latexCellWidth = 13

func (o LatexOptions) label(sched string) string {
	if o.Label == nil {
		return sched
	}
	return o.Label(sched)
}

func latexModel(k aggregate.Key) string {
	if k.ClassL {
		return fmt.Sprintf(`\Model{%s %d $\mathcal{L}$}`, k.Lights, k.Colors)
	}
	return fmt.Sprintf(`\Model{%s %d}`, k.Lights, k.Colors)
}

func latexCell(cell aggregate.Cell, noAlgo string) string {
	value := strconv.Itoa(cell.Pass)
	if cell.Pass == 0 {
		value = noAlgo
	}
	if cell.WeakFilter {
		return fmt.Sprintf(`\itshape %-4s`, "("+value+")")
	}
	if cell.Pass == 0 {
		return fmt.Sprintf("%-*s", latexCellWidth, value)
	}
	return fmt.Sprintf("%*s", latexCellWidth, value)
}

// WriteLatex writes the summary table as a LaTeX tabular block. Rows are
// grouped by light model with a \graymidrule between groups.
func WriteLatex(w io.Writer, t *aggregate.SummaryTable, opts LatexOptions) error {
	bw := bufio.NewWriter(w)

	var legend []string
	for _, sched := range t.Columns {
		legend = append(legend, fmt.Sprintf(`    \slanted{\Head{%s}} & `, opts.label(sched)))
	}
	colSpec := strings.Repeat(`r@{~~}`, max(len(t.Columns)-1, 0)) + "rl"

	fmt.Fprintf(bw, "\n%%\n%% Script-generated from result output reports.\n%% %s\n%% generated (UTC): %s\n%%\n",
		opts.Invocation, opts.Now.UTC().Format("2006-01-02 15:04:05.000000"))
	fmt.Fprintf(bw, "\\begin{tabular}{%s}\n", colSpec)
	fmt.Fprintln(bw, strings.Join(legend, "\n"))
	fmt.Fprintln(bw, `    \\ \toprule`)

	prevLights := ""
	for _, row := range t.Rows {
		lights := string(row.Key.Lights)
		if lights != prevLights {
			fmt.Fprintf(bw, "    %%\n    %%      %s\n    %%\n", strings.ToUpper(lights))
			if prevLights != "" {
				fmt.Fprintln(bw, `    \graymidrule`)
			}
			prevLights = lights
		}
		fmt.Fprintf(bw, "    %% %s\n", row.Key.String())
		fmt.Fprint(bw, "    ")

		total := 0
		for _, sched := range t.Columns {
			cell, ok := row.Cells[sched]
			if !ok {
				fmt.Fprintf(bw, "%s & ", strings.Repeat(" ", latexCellWidth))
				continue
			}
			total = cell.Total
			fmt.Fprintf(bw, "%s & ", latexCell(cell, opts.NoAlgorithm))
		}
		fmt.Fprintf(bw, "    %s %% TOTAL: %d\n", latexModel(row.Key), total)
		fmt.Fprintln(bw, `    \\ `)
	}

	fmt.Fprintln(bw, `    \bottomrule`)
	fmt.Fprintln(bw, `\end{tabular}`)
	return bw.Flush()
}

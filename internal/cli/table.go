package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/lucasnoah/synthreport/internal/aggregate"
	"github.com/lucasnoah/synthreport/internal/config"
	"github.com/lucasnoah/synthreport/internal/render"
)

var (
	tableFormat string
	tableOutput string
	tableDir    string
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Tabulate the verification summaries of a results directory",
	Long: `Scan the results directory for parout_*.txt reports and write one
table cell per (configuration, scheduler).

Formats: csv (written to <results_dir>/<outcomes_file> unless -o is given),
markdown and latex (written to stdout unless -o is given). Use -o - for stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadValidConfig()
		if err != nil {
			return err
		}
		r := withResultsDir(cfg.Report, tableDir)

		var write func(io.Writer) error
		defaultOut := ""
		switch tableFormat {
		case "csv":
			defaultOut = r.OutcomesPath()
		case "markdown", "latex":
		default:
			return fmt.Errorf("unknown format %q (want csv, markdown or latex)", tableFormat)
		}

		tbl, err := aggregate.CollectSummaries(r.ResultsDir, aggregate.Options{
			Order:  aggregate.OrderFromConfig(r),
			Logger: logger,
		})
		if err != nil {
			return err
		}
		write, err = tableWriter(tableFormat, tbl, r, invocation(cmd))
		if err != nil {
			return err
		}

		out := tableOutput
		if out == "" {
			out = defaultOut
		}
		if err := emit(cmd, out, write); err != nil {
			return err
		}
		logger.Info("table written",
			zap.String("format", tableFormat),
			zap.String("output", displayOutput(out)),
			zap.Int("rows", len(tbl.Rows)),
			zap.Strings("columns", tbl.Columns))
		return nil
	},
}

// tableWriter picks the renderer for a summary table.
func tableWriter(format string, tbl *aggregate.SummaryTable, r config.Report, inv string) (func(io.Writer) error, error) {
	switch format {
	case "csv":
		return func(w io.Writer) error { return render.WriteOutcomesCSV(w, tbl) }, nil
	case "markdown":
		return func(w io.Writer) error { return render.WriteMarkdown(w, tbl) }, nil
	case "latex":
		opts := render.LatexOptions{
			Invocation:  inv,
			Now:         time.Now(),
			Label:       r.Latex.Label,
			NoAlgorithm: r.Latex.NoAlgorithmMarker,
		}
		return func(w io.Writer) error { return render.WriteLatex(w, tbl, opts) }, nil
	}
	return nil, fmt.Errorf("unknown format %q (want csv, markdown or latex)", format)
}

func withResultsDir(r config.Report, dir string) config.Report {
	if dir != "" {
		r.ResultsDir = dir
	}
	return r
}

// emit writes to stdout when path is empty or "-", otherwise atomically to path.
func emit(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(cmd.OutOrStdout())
	}
	return render.WriteFile(path, write)
}

func displayOutput(path string) string {
	if path == "" || path == "-" {
		return "stdout"
	}
	return path
}

// invocation reconstructs the command line from the flags that were set.
func invocation(cmd *cobra.Command) string {
	parts := []string{cmd.CommandPath()}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		parts = append(parts, fmt.Sprintf("--%s=%s", f.Name, f.Value))
	})
	return strings.Join(parts, " ")
}

func init() {
	tableCmd.Flags().StringVar(&tableFormat, "format", "csv", "output format: csv, markdown or latex")
	tableCmd.Flags().StringVarP(&tableOutput, "output", "o", "", "output file (- for stdout)")
	tableCmd.Flags().StringVar(&tableDir, "dir", "", "results directory (overrides report.results_dir)")
}

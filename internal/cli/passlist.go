package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lucasnoah/synthreport/internal/aggregate"
	"github.com/lucasnoah/synthreport/internal/render"
)

var (
	passFormat string
	passOutput string
	passDir    string
)

var passlistCmd = &cobra.Command{
	Use:   "passlist",
	Short: "List which algorithms passed under which schedulers",
	Long: `Collect the "N : PASS code" lines of every report and write one row per
(configuration, algorithm) with a mark for each scheduler it passed under.

csv is written to <results_dir>/<pass_list_file> unless -o is given;
markdown goes to stdout unless -o is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadValidConfig()
		if err != nil {
			return err
		}
		r := withResultsDir(cfg.Report, passDir)

		defaultOut := ""
		switch passFormat {
		case "csv":
			defaultOut = r.PassListPath()
		case "markdown":
		default:
			return fmt.Errorf("unknown format %q (want csv or markdown)", passFormat)
		}

		tbl, err := aggregate.CollectPassLists(r.ResultsDir, aggregate.Options{
			Order:  aggregate.OrderFromConfig(r),
			Logger: logger,
		})
		if err != nil {
			return err
		}

		write := func(w io.Writer) error { return render.WritePassCSV(w, tbl) }
		if passFormat == "markdown" {
			write = func(w io.Writer) error { return render.WritePassMarkdown(w, tbl) }
		}

		out := passOutput
		if out == "" {
			out = defaultOut
		}
		if err := emit(cmd, out, write); err != nil {
			return err
		}
		logger.Info("pass list written",
			zap.String("format", passFormat),
			zap.String("output", displayOutput(out)),
			zap.Int("rows", len(tbl.Rows)))
		return nil
	},
}

func init() {
	passlistCmd.Flags().StringVar(&passFormat, "format", "csv", "output format: csv or markdown")
	passlistCmd.Flags().StringVarP(&passOutput, "output", "o", "", "output file (- for stdout)")
	passlistCmd.Flags().StringVar(&passDir, "dir", "", "results directory (overrides report.results_dir)")
}

package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/synthreport/internal/analytics"
)

var (
	analyticsRun    string
	analyticsFormat string
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Query pass-rate analytics over archived imports",
}

var analyticsSchedulersCmd = &cobra.Command{
	Use:   "schedulers",
	Short: "Pass rate per scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, cleanup, err := openDB()
		if err != nil {
			return err
		}
		defer cleanup()

		runID, err := resolveRun(d)
		if err != nil {
			return err
		}
		results, err := analytics.QuerySchedulerPassRates(d, runID)
		if err != nil {
			return err
		}
		if analyticsFormat == "json" {
			return printJSON(cmd, results)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-20s %7s %7s %7s %7s %7s %5s %9s\n", "SCHEDULER", "CONFIGS", "PASS", "TOTAL", "PASS%", "SOLVED", "WEAK", "ATTENTION")
		for _, r := range results {
			fmt.Fprintf(w, "%-20s %7d %7d %7d %7.1f %7d %5d %9d\n",
				r.Scheduler, r.Configs, r.Pass, r.Total, r.PassPct, r.Solved, r.Weak, r.Attention)
		}
		return nil
	},
}

var analyticsModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Pass rate per light model and class L",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, cleanup, err := openDB()
		if err != nil {
			return err
		}
		defer cleanup()

		runID, err := resolveRun(d)
		if err != nil {
			return err
		}
		results, err := analytics.QueryModelPassRates(d, runID)
		if err != nil {
			return err
		}
		if analyticsFormat == "json" {
			return printJSON(cmd, results)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-10s %-6s %6s %7s %7s %7s\n", "LIGHTS", "CLASSL", "CELLS", "PASS", "TOTAL", "PASS%")
		for _, r := range results {
			fmt.Fprintf(w, "%-10s %-6t %6d %7d %7d %7.1f\n", r.Lights, r.ClassL, r.Cells, r.Pass, r.Total, r.PassPct)
		}
		return nil
	},
}

var analyticsDiffCmd = &cobra.Command{
	Use:   "diff <from-run> <to-run>",
	Short: "Cells whose pass count changed between two imports",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, cleanup, err := openDB()
		if err != nil {
			return err
		}
		defer cleanup()

		for _, id := range args {
			run, err := d.GetImport(id)
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("no import with id %q", id)
			}
		}
		changes, err := analytics.QueryRunDiff(d, args[0], args[1])
		if err != nil {
			return err
		}
		if analyticsFormat == "json" {
			return printJSON(cmd, changes)
		}

		w := cmd.OutOrStdout()
		if len(changes) == 0 {
			fmt.Fprintln(w, "No changes.")
			return nil
		}
		count := func(p *int) string {
			if p == nil {
				return "-"
			}
			return strconv.Itoa(*p)
		}
		fmt.Fprintf(w, "%-10s %-6s %6s %-20s %6s %6s\n", "LIGHTS", "CLASSL", "COLORS", "SCHEDULER", "BEFORE", "AFTER")
		for _, c := range changes {
			fmt.Fprintf(w, "%-10s %-6t %6d %-20s %6s %6s\n", c.Lights, c.ClassL, c.Colors, c.Scheduler, count(c.Before), count(c.After))
		}
		return nil
	},
}

// resolveRun returns --run, or the newest import when it is unset.
func resolveRun(d analytics.DB) (string, error) {
	if analyticsRun != "" {
		return analyticsRun, nil
	}
	id, err := analytics.LatestRunID(d)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("archive is empty; run 'synthreport db import' first")
	}
	return id, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func init() {
	analyticsCmd.PersistentFlags().StringVar(&analyticsRun, "run", "", "import to analyse (default newest)")
	analyticsCmd.PersistentFlags().StringVar(&analyticsFormat, "format", "table", "output format: table or json")
	analyticsCmd.AddCommand(analyticsSchedulersCmd)
	analyticsCmd.AddCommand(analyticsModelsCmd)
	analyticsCmd.AddCommand(analyticsDiffCmd)
}

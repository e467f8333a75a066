package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lucasnoah/synthreport/internal/aggregate"
	"github.com/lucasnoah/synthreport/internal/db"
)

var (
	dbImportDir  string
	dbShowFormat string
	dbResetYes   bool
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Archive of imported summary scans",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, cleanup, err := openDB()
		if err != nil {
			return err
		}
		defer cleanup()
		fmt.Fprintf(cmd.OutOrStdout(), "Database %s is up to date.\n", d.Path())
		return nil
	},
}

var dbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the database (destructive!)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !dbResetYes {
			return fmt.Errorf("refusing to drop the archive without --yes")
		}
		d, cleanup, err := openDB()
		if err != nil {
			return err
		}
		defer cleanup()
		if err := d.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Archive reset.")
		return nil
	},
}

var dbImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Scan a results directory and archive its summary table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadValidConfig()
		if err != nil {
			return err
		}
		r := withResultsDir(cfg.Report, dbImportDir)

		tbl, err := aggregate.CollectSummaries(r.ResultsDir, aggregate.Options{
			Order:  aggregate.OrderFromConfig(r),
			Logger: logger,
		})
		if err != nil {
			return err
		}

		d, cleanup, err := openDB()
		if err != nil {
			return err
		}
		defer cleanup()

		runID, err := d.RecordImport(r.ResultsDir, tbl)
		if err != nil {
			return err
		}
		logger.Info("import recorded",
			zap.String("run", runID),
			zap.String("results_dir", r.ResultsDir),
			zap.Int("rows", len(tbl.Rows)))
		fmt.Fprintln(cmd.OutOrStdout(), runID)
		return nil
	},
}

var dbRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived imports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, cleanup, err := openDB()
		if err != nil {
			return err
		}
		defer cleanup()

		runs, err := d.ListImports()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(w, "No imports found.")
			return nil
		}
		fmt.Fprintf(w, "%-36s  %-26s  %-6s  %s\n", "RUN", "CREATED", "CELLS", "RESULTS DIR")
		fmt.Fprintf(w, "%-36s  %-26s  %-6s  %s\n",
			strings.Repeat("-", 36),
			strings.Repeat("-", 26),
			strings.Repeat("-", 6),
			strings.Repeat("-", 11))
		for _, r := range runs {
			fmt.Fprintf(w, "%-36s  %-26s  %-6d  %s\n", r.ID, r.CreatedAt, r.Cells, r.ResultsDir)
		}
		return nil
	},
}

var dbShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Render an archived import as csv, markdown or latex",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadValidConfig()
		if err != nil {
			return err
		}

		d, cleanup, err := openDB()
		if err != nil {
			return err
		}
		defer cleanup()

		run, err := d.GetImport(args[0])
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("no import with id %q", args[0])
		}
		records, err := d.ImportRecords(run.ID)
		if err != nil {
			return err
		}
		tbl := aggregate.SummaryTableFromRecords(records, aggregate.OrderFromConfig(cfg.Report))
		if dropped := len(records) - len(tbl.Records()); dropped > 0 {
			logger.Warn("archived cells outside the configured schedulers were dropped", zap.Int("cells", dropped))
		}

		write, err := tableWriter(dbShowFormat, tbl, cfg.Report, invocation(cmd))
		if err != nil {
			return err
		}
		return emit(cmd, "", write)
	},
}

var dbDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete an archived import",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, cleanup, err := openDB()
		if err != nil {
			return err
		}
		defer cleanup()

		ok, err := d.DeleteImport(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no import with id %q", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted import %s.\n", args[0])
		return nil
	},
}

// openDB opens and migrates the archive named by --db, or the default one.
func openDB() (*db.DB, func(), error) {
	path := dbFile
	if path == "" {
		var err error
		if path, err = db.DefaultDBPath(); err != nil {
			return nil, nil, err
		}
	}
	d, err := db.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if err := d.Migrate(); err != nil {
		d.Close()
		return nil, nil, err
	}
	return d, func() { d.Close() }, nil
}

func init() {
	dbImportCmd.Flags().StringVar(&dbImportDir, "dir", "", "results directory (overrides report.results_dir)")
	dbShowCmd.Flags().StringVar(&dbShowFormat, "format", "markdown", "output format: csv, markdown or latex")
	dbResetCmd.Flags().BoolVar(&dbResetYes, "yes", false, "confirm dropping every archived import")

	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbResetCmd)
	dbCmd.AddCommand(dbImportCmd)
	dbCmd.AddCommand(dbRunsCmd)
	dbCmd.AddCommand(dbShowCmd)
	dbCmd.AddCommand(dbDeleteCmd)
}

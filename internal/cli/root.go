package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lucasnoah/synthreport/internal/config"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var (
	cfgFile string
	verbose bool
	dbFile  string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "synthreport",
	Short: "Tabulate robot-gathering verification reports",
	Long: `synthreport reads the parout_*.txt reports written by the synthesis
verifier and turns them into CSV, Markdown and LaTeX tables and a heatmap.

Configuration is read from ./synthreport.yaml or ~/.synthreport/config.yaml.
Imported scans are archived in ~/.synthreport/reports.db.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(cfg.EncoderConfig),
			zapcore.AddSync(cmd.ErrOrStderr()),
			cfg.Level,
		)
		logger = zap.New(core).Named("synthreport")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dbFile, "db", "", "path to the report archive (default ~/.synthreport/reports.db)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(passlistCmd)
	rootCmd.AddCommand(heatmapCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(analyticsCmd)
}

// loadConfig resolves the configuration from --config or the default
// search path.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadDefault()
}

// loadValidConfig is loadConfig plus validation.
func loadValidConfig() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			logger.Error("invalid configuration", zap.String("field", e.Field), zap.String("problem", e.Message))
		}
		return nil, fmt.Errorf("config has %d validation error(s); run 'synthreport config validate'", len(errs))
	}
	return cfg, nil
}

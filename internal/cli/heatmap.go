package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lucasnoah/synthreport/internal/heatmap"
)

var (
	heatmapCSV    string
	heatmapOutput string
	heatmapPrint  bool
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Plot the pass ratio of each configuration and scheduler",
	Long: `Read the outcomes CSV written by "synthreport table" and plot pass/total
over the configured axes. Cells with no data are grey, a ratio of zero is
light yellow. The image format follows the extension of the output file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadValidConfig()
		if err != nil {
			return err
		}
		in := heatmapCSV
		if in == "" {
			in = cfg.Report.OutcomesPath()
		}
		out := heatmapOutput
		if out == "" {
			out = cfg.Report.Heatmap.Output
		}

		outcomes, err := heatmap.ReadOutcomesFile(in)
		if err != nil {
			return err
		}
		axes, err := heatmap.AxesFromConfig(cfg.Report.Heatmap)
		if err != nil {
			return err
		}
		m := heatmap.BuildMatrix(outcomes, axes)

		if heatmapPrint {
			if err := m.WriteText(cmd.OutOrStdout()); err != nil {
				return err
			}
		}
		if err := heatmap.Render(m, out); err != nil {
			return err
		}
		logger.Info("heatmap written",
			zap.String("input", in),
			zap.String("output", out),
			zap.Int("outcomes", len(outcomes)))
		return nil
	},
}

func init() {
	heatmapCmd.Flags().StringVar(&heatmapCSV, "csv", "", "outcomes CSV to read (default <results_dir>/<outcomes_file>)")
	heatmapCmd.Flags().StringVarP(&heatmapOutput, "output", "o", "", "image to write (default heatmap.output)")
	heatmapCmd.Flags().BoolVar(&heatmapPrint, "print", false, "also print the matrix to stdout")
}

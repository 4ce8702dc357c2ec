package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/finprospect/internal/export"
	"github.com/sells-group/finprospect/internal/store"
)

var (
	exportOutput      string
	exportMinTurnover float64
	exportOwnProducts bool
	exportIndustry    string
	exportLocation    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export matching companies to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("export"); err != nil {
			return err
		}
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		f := store.Filter{
			Industry: exportIndustry,
			Location: exportLocation,
			SortBy:   store.SortByName,
		}
		if exportMinTurnover > 0 {
			f.MinTurnover = &exportMinTurnover
		}
		if cmd.Flags().Changed("own-products") {
			f.HasOwnProducts = &exportOwnProducts
		}

		output := exportOutput
		if output == "" {
			output = cfg.Export.Output
		}

		n, err := export.Write(cmd.Context(), st, f, output)
		if err != nil {
			return err
		}
		zap.L().Info("exported companies", zap.Int("count", n), zap.String("output", output))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "output path (default from config)")
	exportCmd.Flags().Float64Var(&exportMinTurnover, "min-turnover", 0, "minimum turnover filter (EUR)")
	exportCmd.Flags().BoolVar(&exportOwnProducts, "own-products", false, "filter by product ownership")
	exportCmd.Flags().StringVar(&exportIndustry, "industry", "", "industry substring filter")
	exportCmd.Flags().StringVar(&exportLocation, "location", "", "city or street substring filter")
	rootCmd.AddCommand(exportCmd)
}

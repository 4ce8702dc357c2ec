package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/finprospect/internal/seed"
)

var (
	seedCount int
	seedValue int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate deterministic demo companies into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("seed"); err != nil {
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
		return seed.Run(cmd.Context(), st, seedValue, seedCount)
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 50, "number of companies to generate")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 1, "random seed for deterministic output")
	rootCmd.AddCommand(seedCmd)
}

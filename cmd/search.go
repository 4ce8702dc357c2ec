package main

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/finprospect/internal/unify"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search every registry source and print the unified results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		if err := cfg.Validate("search"); err != nil {
			return err
		}
		registry, err := initRegistry()
		if err != nil {
			return err
		}

		searcher := unify.NewSearcher(registry).WithLimits(
			time.Duration(cfg.Sources.TimeoutSecs)*time.Second,
			cfg.Sources.MaxResults,
		)
		result, err := searcher.SearchAll(cmd.Context(), query)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

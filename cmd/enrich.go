package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/finprospect/internal/model"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <business-id>",
	Short: "Fetch, merge and score one company from all registry sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		businessID := args[0]
		if !model.ValidBusinessID(businessID) {
			return eris.Errorf("invalid business id %q, expected NNNNNNN-N", businessID)
		}

		env, err := initEnv(cmd.Context(), "enrich")
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Orch.Enrich(cmd.Context(), businessID)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}

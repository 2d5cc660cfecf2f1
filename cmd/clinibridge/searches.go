// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var searchesCmd = &cobra.Command{
	Use:   "searches",
	Short: "List recent searches from the audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg := loadConfig()
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.ListSearches(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		if len(records) == 0 {
			fmt.Println("No searches logged yet.")
			return nil
		}
		for _, rec := range records {
			fmt.Printf("%s  %s  condition=%q location=%q trials=%d\n",
				rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.ID,
				rec.Condition, rec.Location, len(rec.Results))
		}
		return nil
	},
}

func init() {
	searchesCmd.Flags().Int("limit", 20, "maximum number of entries to list")
	searchesCmd.Flags().Bool("json", false, "output entries as JSON")

	rootCmd.AddCommand(searchesCmd)
}

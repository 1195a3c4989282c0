package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var postedCmd = &cobra.Command{
	Use:   "posted",
	Short: "List recently posted products",
	RunE:  runPosted,
}

func init() {
	postedCmd.Flags().Int("limit", 20, "Number of records")
	postedCmd.Flags().String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(postedCmd)
}

func runPosted(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	a, err := buildApp(cmd.Context(), appOptions{requireDB: true, withoutPublishers: true})
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	default:
		printPostedTable(os.Stdout, a.formatter, rows)
	}
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lukman83/promobot/internal/models"
	"github.com/lukman83/promobot/internal/source"
	"github.com/lukman83/promobot/internal/ui"
)

var searchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search the product sources without publishing",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 10, "Products per source")
	searchCmd.Flags().String("source", "", "Only query this source: affiliate, marketplace")
	searchCmd.Flags().String("format", "json", "Output format: json, table")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	keyword := args[0]
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")
	sourceName, _ := cmd.Flags().GetString("source")

	client, err := buildHTTPClient()
	if err != nil {
		return err
	}
	reg := buildSources(client)
	adapters := reg.All()
	if sourceName != "" {
		a, err := reg.Get(sourceName)
		if err != nil {
			return err
		}
		adapters = []source.Adapter{a}
	}

	spin := ui.NewSpinner(cmd.ErrOrStderr())
	spin.Start(fmt.Sprintf("Searching '%s'...", keyword))
	q := source.Query{Keyword: keyword, Limit: limit}
	var lists [][]models.Product
	for _, a := range adapters {
		spin.Update(fmt.Sprintf("Searching '%s' on %s...", keyword, a.Name()))
		lists = append(lists, a.Search(cmd.Context(), q))
	}
	products := source.Merge(lists...)
	spin.Stop()

	switch format {
	case "table":
		printProductsTable(os.Stdout, newFormatter(), products)
	default:
		if products == nil {
			products = []models.Product{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(products)
	}

	return nil
}

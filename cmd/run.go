package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lukman83/promobot/internal/source"
	"github.com/lukman83/promobot/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one fetch, dedup, generate and publish cycle",
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "Use an in-memory store and log messages instead of sending them")
	runCmd.Flags().String("keyword", "", "Search this keyword instead of a random configured one")
	runCmd.Flags().String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	keyword, _ := cmd.Flags().GetString("keyword")
	format, _ := cmd.Flags().GetString("format")

	if keyword == "" {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	a, err := buildApp(ctx, appOptions{dryRun: dryRun})
	if err != nil {
		return err
	}
	defer a.Close()

	spin := ui.NewSpinner(cmd.ErrOrStderr())
	spin.Start("Starting run...")
	sum := a.pipeline().RunKeyword(source.WithProgress(ctx, spin.Update), keyword)
	spin.Stop()

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(sum)
	default:
		printSummary(os.Stdout, sum)
	}
	if sum.Error != "" {
		return fmt.Errorf("run %s: %s", sum.RunID, sum.Error)
	}
	return nil
}

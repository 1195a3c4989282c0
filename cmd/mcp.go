package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/lukman83/promobot/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	RunE:  runMCP,
}

func init() {
	mcpCmd.Flags().Bool("allow-run", false, "Expose run_pipeline, which publishes to live channels")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	allowRun, _ := cmd.Flags().GetBool("allow-run")

	a, err := buildApp(cmd.Context(), appOptions{withoutPublishers: !allowRun})
	if err != nil {
		return err
	}
	defer a.Close()

	var runner mcpserver.Runner
	if allowRun {
		runner = a.pipeline()
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting PromoBot MCP server on stdio...")
	if err := mcpserver.Serve(a.toolDeps(runner)); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

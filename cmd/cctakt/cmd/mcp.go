package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cctakt/cctakt/internal/mcp"
	"github.com/cctakt/cctakt/internal/plan"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as a Model Context Protocol server over stdio",
	Long: `Serve add_task, list_tasks, get_task, and get_plan_status as MCP tools
over stdin/stdout, so the conductor mutates .cctakt/plan.json through a
handful of named tool calls instead of writing the file directly and racing
the supervisor's own reads of it.

--http swaps the transport for a local HTTP listener (POST /rpc), for
debug tooling that would rather speak HTTP than manage a stdio subprocess.
The JSON-RPC dispatch is identical either way.`,
	RunE: runMCP,
}

var mcpHTTPAddr string

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve over HTTP at this address instead of stdio (e.g. 127.0.0.1:8787)")
}

func runMCP(cmd *cobra.Command, _ []string) error {
	_, loader, err := loadConfig()
	if err != nil {
		return err
	}

	store := plan.New(loader.ProjectDir())
	srv := mcp.New(store, nil)

	if mcpHTTPAddr != "" {
		return mcp.NewHTTPServer(srv).ListenAndServe(cmd.Context(), mcpHTTPAddr)
	}
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}

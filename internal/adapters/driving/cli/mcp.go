package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/litmapper/internal/adapters/driving/mcp"
)

var (
	mcpAddr   string
	mcpWorker bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose jobs and resources to MCP clients",
	Long: `Serve the literature tools (start_job, job_status, get_resource,
evict_resource, filter_set_articles) and the litmapper:// resources to an
MCP client.

The server speaks JSON-RPC on stdin and stdout unless --addr is given, in
which case it serves streamable HTTP. In stdio mode nothing but protocol
messages may be written to stdout, so diagnostics go to stderr.

A client entry for stdio mode:

  "litmapper": {"command": "litmapper", "args": ["mcp", "serve"]}`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpAddr, "addr", "", "serve streamable HTTP on this address instead of stdio")
	mcpServeCmd.Flags().BoolVar(&mcpWorker, "worker", true, "execute queued jobs in this process")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	resources, err := resourceService()
	if err != nil {
		return err
	}
	jobs, err := jobService()
	if err != nil {
		return err
	}
	server, err := mcp.NewServer(&mcp.Ports{Resources: resources, Jobs: jobs})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mcpWorker && svc.Worker != nil {
		stopWorker, err := startWorker(ctx)
		if err != nil {
			return err
		}
		defer stopWorker()
	}

	if mcpAddr == "" {
		return server.Run(ctx)
	}
	cmd.PrintErrf("MCP server listening on %s\n", mcpAddr)
	return server.RunHTTP(ctx, mcpAddr)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/litmapper/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/litmapper/internal/adapters/driving/mcp"
	"github.com/custodia-labs/litmapper/internal/logger"
)

var (
	serveAddr    string
	serveWorker  bool
	serveMCPAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the literature API. Creation requests are accepted with 202 and a
Location header pointing at /info/job/{id}; results are served from
/literature/{kind}/{hash}.

By default the process also runs a worker that executes queued jobs. Use
--worker=false when separate "litmapper worker" processes share a durable
queue.`,
	RunE: runServe,
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a background worker",
	Long: `Consume creation tasks from the configured queue until interrupted.
Several workers can share a SQLite or Redis queue.`,
	RunE: runWorker,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from http.addr)")
	serveCmd.Flags().BoolVar(&serveWorker, "worker", true, "run a worker in this process")
	serveCmd.Flags().StringVar(&serveMCPAddr, "mcp-addr", "", "also serve MCP over HTTP on this address")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	resources, err := resourceService()
	if err != nil {
		return err
	}
	jobs, err := jobService()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.SetTimestamps(true)

	server, err := httpapi.NewServer(resources, jobs)
	if err != nil {
		return err
	}

	if serveWorker {
		stopWorker, err := startWorker(ctx)
		if err != nil {
			return err
		}
		defer stopWorker()
	}
	startWatch(ctx)

	errs := make(chan error, 2)
	if serveMCPAddr != "" {
		mcpServer, err := mcp.NewServer(&mcp.Ports{Resources: resources, Jobs: jobs})
		if err != nil {
			return err
		}
		go func() { errs <- mcpServer.RunHTTP(ctx, serveMCPAddr) }()
	}

	addr := serveAddr
	if addr == "" {
		addr = svc.Config.HTTP.Addr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serving API on %s\n", addr)
	go func() { errs <- server.Run(ctx, addr) }()

	select {
	case err := <-errs:
		stop()
		return err
	case <-ctx.Done():
		return nil
	}
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.SetTimestamps(true)

	stopWorker, err := startWorker(ctx)
	if err != nil {
		return err
	}
	defer stopWorker()
	startWatch(ctx)

	fmt.Fprintf(cmd.OutOrStdout(), "Worker running with %d consumers\n", svc.Config.Worker.Concurrency)
	<-ctx.Done()
	return nil
}

// startWorker starts the configured worker and returns its stop function.
func startWorker(ctx context.Context) (func(), error) {
	if svc == nil || svc.Worker == nil {
		return nil, fmt.Errorf("worker: %w", errNotConfigured)
	}
	if err := svc.Worker.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting worker: %w", err)
	}
	return func() {
		if err := svc.Worker.Stop(); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Stopping worker: %v", err)
		}
	}, nil
}

// startWatch follows configuration changes in the background.
func startWatch(ctx context.Context) {
	if svc == nil || svc.Watch == nil {
		return
	}
	watch := svc.Watch
	go func() {
		if err := watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Config watch stopped: %v", err)
		}
	}()
}

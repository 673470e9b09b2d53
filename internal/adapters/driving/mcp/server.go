package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/litmapper/internal/logger"
)

// Version is reported to clients during initialisation.
const Version = "0.1.0"

const instructions = `Literature resources are built asynchronously. Call start_job with a
kind (filter_set, clustering or article_group) and params, poll job_status
until the status is "success" or "failed", then read the resource with
get_resource using the hash from the result URL. Clustering and
article_group params name the hash of the resource they are built from.`

// shutdownTimeout bounds how long open HTTP sessions may take to drain.
const shutdownTimeout = 5 * time.Second

// Server exposes the resource and job services to MCP clients.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer registers every tool and resource on a new MCP server.
func NewServer(ports *Ports) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingResourceService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "litmapper", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves MCP over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns a streamable HTTP handler for mounting on an existing mux.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves Handler on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP shutdown: %v", err)
		}
	}()

	logger.Info("MCP listening on %s", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

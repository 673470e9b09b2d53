// Package mcp provides an MCP (Model Context Protocol) server adapter for litmapper.
// It lets AI assistants start resource jobs, follow their progress and read
// finished filter sets, clusterings and article groups.
package mcp

import "errors"

var (
	// ErrMissingResourceService is returned when the resource service is not provided.
	ErrMissingResourceService = errors.New("mcp: resource service is required")

	// ErrMissingJobService is returned when the job service is not provided.
	ErrMissingJobService = errors.New("mcp: job service is required")
)

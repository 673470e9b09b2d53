package mcp

import (
	"github.com/custodia-labs/litmapper/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls into.
type Ports struct {
	// Resources reads and evicts cached resources.
	Resources driving.ResourceService

	// Jobs starts creation jobs and reports their status.
	Jobs driving.JobService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Resources == nil {
		return ErrMissingResourceService
	}
	if p.Jobs == nil {
		return ErrMissingJobService
	}
	return nil
}

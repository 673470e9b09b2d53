// Package tui provides an interactive terminal monitor for litmapper jobs.
// It polls job status until every watched job finishes and lets the user
// open the resulting filter sets, clusterings and article groups.
package tui

import (
	"github.com/custodia-labs/litmapper/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Jobs reports job status.
	Jobs driving.JobService

	// Resources loads finished results.
	Resources driving.ResourceService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(jobs driving.JobService, resources driving.ResourceService) *Ports {
	return &Ports{Jobs: jobs, Resources: resources}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Jobs == nil {
		return ErrMissingJobService
	}
	if p.Resources == nil {
		return ErrMissingResourceService
	}
	return nil
}

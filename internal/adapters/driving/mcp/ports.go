package mcp

import (
	"github.com/custodia-labs/docthemes/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
type Ports struct {
	// Session answers questions and owns history and exclusions.
	Session driving.SessionService

	// Settings supplies the default ask options. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Session == nil {
		return ErrMissingSessionService
	}
	return nil
}

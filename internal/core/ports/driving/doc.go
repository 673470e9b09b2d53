// Package driving defines what the HTTP API, CLI, TUI and MCP server may
// ask of the core: reading and evicting resources, starting and polling
// jobs, and running workers. Implementations live in internal/core/services.
package driving

// Package driving defines the interfaces through which adapters (CLI, MCP
// server, the public facade) drive the extraction core.
package driving

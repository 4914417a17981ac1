// Package mcp provides an MCP (Model Context Protocol) server adapter for docthemes.
// It lets AI assistants ask questions across the uploaded documents and
// read the conversation history.
package mcp

import "errors"

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("mcp: session service is required")

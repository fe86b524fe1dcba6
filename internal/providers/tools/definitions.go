// Package tools holds the built-in tools the agent can always reach,
// independent of any MCP server: web fetch, shell and filesystem access.
package tools

import (
	"context"
	"encoding/json"
)

// Definition describes one native tool the way the toolbox registers it.
type Definition struct {
	Description string
	Schema      string
	Handler     func(context.Context, json.RawMessage) (string, error)
}

// Package configs carries the default runtime files written on first
// install.
package configs

import "embed"

//go:embed SYSTEM.md mcp_config.json
var FS embed.FS

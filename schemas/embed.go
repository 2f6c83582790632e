// Package schemas embeds the JSON Schemas shipped with the server.
package schemas

import "embed"

// Names of the embedded schemas
const (
	ServerMessage = "server_message.schema.json"
	WorldTuning   = "world_tuning.schema.json"
)

//go:embed *.schema.json
var FS embed.FS

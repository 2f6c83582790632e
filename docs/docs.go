// Package docs registers the OpenAPI description of the HTTP endpoints with
// swag so /swagger/* can serve it.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:generate swag init -d .. -g cmd/server/main.go -o . --outputTypes json

//go:embed swagger.json
var swaggerJSON string

type document struct{}

func (document) ReadDoc() string {
	return swaggerJSON
}

func init() {
	swag.Register(swag.Name, document{})
}

//go:build tools
// +build tools

package tools

// Development tools pinned in go.mod: the linter, the goose CLI for
// authoring migrations, swag for regenerating docs/swagger.json, and
// benchstat for comparing benchmark runs.

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
	_ "github.com/pressly/goose/v3/cmd/goose"
	_ "github.com/swaggo/swag/cmd/swag"
	_ "golang.org/x/perf/cmd/benchstat"
)

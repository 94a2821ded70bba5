// Package migrations embute o esquema SQL aplicado pelo goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

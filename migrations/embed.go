// Package migrations embeds the SQL schema so the server and the migrate
// command carry it inside the binary.
package migrations

import "embed"

// FS holds every NNNNNN_name.{up,down}.sql pair in this directory
//
//go:embed *.sql
var FS embed.FS

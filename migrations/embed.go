// Package migrations embeds the SQL schema migrations applied by cmd/migrate
// and, when database.auto_migrate is set, by the server on startup.
package migrations

import "embed"

// FS holds every *.up.sql / *.down.sql pair in version order
//
//go:embed *.sql
var FS embed.FS

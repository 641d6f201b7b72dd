// Package migrations embeds the run history schema so a semdoc binary can
// migrate its database from anywhere, without SQL files on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

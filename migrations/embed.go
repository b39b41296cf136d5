// Package migrations holds the numbered SQL files applied at startup.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS

// Package migrations embeds SQL migration files into the binary.
//
// The node runs its journal migrations at boot without needing the SQL
// files on the target filesystem.
package migrations

import (
	"embed"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // Files are at root of embedded FS
}

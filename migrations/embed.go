// Package migrations holds the SQL schema applied by bun's migrator.
package migrations

import (
	"embed"

	"github.com/uptrace/bun/migrate"
)

// sqlMigrations contains <version>_<name>.up.sql / .down.sql pairs.
//
//go:embed *.sql
var sqlMigrations embed.FS

var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.Discover(sqlMigrations); err != nil {
		panic(err)
	}
}

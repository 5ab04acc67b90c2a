// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

// This file maintains the database migration code.  See
// https://github.com/rubenv/sql-migrate for details of what goes in
// here.  This runs "outside" the normal request flow, either at
// initial startup or from an external tool.

import (
	"database/sql"

	migrate "github.com/rubenv/sql-migrate"
)

var migrationSource = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "1-entities",
			Up: []string{`
CREATE TABLE entities (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    mixins TEXT[] NOT NULL DEFAULT '{}',
    source TEXT,
    target TEXT,
    attrs TEXT NOT NULL DEFAULT '{}',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL
)`,
				`CREATE INDEX entities_kind ON entities (kind)`,
				`CREATE INDEX entities_source ON entities (source)`,
			},
			Down: []string{`DROP TABLE entities`},
		},
	},
}

// Upgrade upgrades a database to the latest database schema version.
func Upgrade(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Up)
	return err
}

// Drop clears a database by running all of the migrations in reverse,
// ultimately resulting in dropping all of the tables.
func Drop(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Down)
	return err
}

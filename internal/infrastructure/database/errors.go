package database

import "errors"

var (
	// ErrPathRequired is returned by Open when no database path is configured.
	ErrPathRequired = errors.New("database: path is required")

	// ErrUnknownMigration is returned when an applied version has no file.
	ErrUnknownMigration = errors.New("database: applied migration not found")

	// ErrNoDownMigration is returned when rolling back a migration without a .down.sql.
	ErrNoDownMigration = errors.New("database: migration has no down script")
)

// Package database opens the node's SQLite file and keeps its schema current.
//
// The node keeps only its actuation journal here. Device state is never
// restored from the database: every boot starts with outputs off.
//
// Migrations are *.sql pairs named YYYYMMDD_HHMMSS_name.up.sql and
// .down.sql, registered through MigrationsFS by the migrations package and
// applied in version order, one transaction each. Applied versions are
// tracked in schema_migrations.
//
// Usage:
//
//	db, err := database.Open(database.ConfigFrom(cfg.Database))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database

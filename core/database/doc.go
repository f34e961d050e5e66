// Package database handles the replica database connection and schema.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) that
// configures either an embedded SQLite file (the default: the replica is a
// per-install local database) or a MySQL connection.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//	if err := database.Migrate(db, models.All()...); err != nil {
//	    ...
//	}
//
// TableCounts reports per-table row counts for the status endpoint.
package database

// Package database opens the destination database through GORM and offers a
// small schema inspector.
//
// # Connect
//
// Connect selects the dialector from Config.Driver: MySQL in production and
// SQLite for local runs and tests (Name ":memory:" gives a throwaway database).
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns let the importer verify that an existing
// destination schema carries the columns it writes before a run starts, for
// deployments that do not allow automatic migrations.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "videos", []string{"source_tag"})
package database

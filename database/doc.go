// Package database opens the SQLite store behind scribe's transcript history
// through GORM, with connection retry, a zerolog-backed GORM logger and
// auto-migration.
//
//	db, err := database.Open(ctx, cfg, log)
//	defer db.Close()
//	err = db.AutoMigrate(&transcript.Record{})
package database

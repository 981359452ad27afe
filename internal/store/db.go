// Package store opens the sqlite-backed aggregate-stats database used by
// internal/stats and internal/store/repository, adapted from the
// teacher's backend/database.Open/Migrate (raw database/sql bootstrap)
// layered under the teacher's root main.go gorm.Open(sqlite.Open(...))
// (ORM attachment for repository access) — the teacher runs both against
// the same file for distinct concerns and this mirrors that split.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

// bootstrap opens path with the pure-Go modernc sqlite driver just long
// enough to create the file and set its WAL pragmas, matching the
// teacher's backend/database.Open. gorm.io/driver/sqlite (cgo, via
// mattn/go-sqlite3) attaches afterward for ORM access to the same file.
func bootstrap(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("store: bootstrap open: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("store: bootstrap ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("store: set WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;"); err != nil {
		return fmt.Errorf("store: set synchronous mode: %w", err)
	}
	return nil
}

// Open bootstraps path (creating it and setting WAL pragmas) then attaches
// a gorm connection for the repository layer, tuned for the tally
// service's periodic write bursts.
func Open(path string) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := bootstrap(path); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

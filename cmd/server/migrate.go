package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/andremonteiro/diagnostico/internal/api"
	dbstore "github.com/andremonteiro/diagnostico/internal/db"
)

func MigrateIfNeeded(snapshotPath, sqlitePath, migrationsDir string) error {
	if sqlitePath == "" {
		return errors.New("sqlite path is required")
	}
	if _, err := os.Stat(sqlitePath); err == nil {
		return nil // already migrated
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("check sqlite file: %w", err)
	}

	legacyStore, err := api.NewMemoryStoreFromPath(snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load legacy snapshot: %w", err)
	}
	if legacyStore == nil {
		return nil
	}

	snapshot := api.MemoryStoreSnapshot(legacyStore)
	if snapshot == nil {
		return nil
	}

	log.Printf("First run detected, starting one-time data migration from legacy snapshot %s...", snapshotPath)

	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
		return fmt.Errorf("create sqlite dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(sqlitePath))
	sqliteDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() {
		if cerr := sqliteDB.Close(); cerr != nil {
			log.Printf("warning: failed to close sqlite db: %v", cerr)
		}
	}()

	if err := dbstore.RunMigrations(sqliteDB, migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	dst, err := dbstore.NewSQLiteStore(sqliteDB)
	if err != nil {
		return fmt.Errorf("init sqlite store: %w", err)
	}

	if err := copySnapshotToStore(snapshot, dst); err != nil {
		return fmt.Errorf("copy data: %w", err)
	}

	log.Printf("Data migration completed successfully.")
	return nil
}

func copySnapshotToStore(snap *api.LegacySnapshot, dst api.Store) error {
	for _, u := range snap.Users {
		if u != nil {
			dst.AddUser(u)
		}
	}
	for _, p := range snap.Pillars {
		if p != nil {
			dst.AddPillar(p)
		}
	}
	for _, q := range snap.Questions {
		if q != nil {
			dst.AddQuestion(q)
		}
	}
	for _, r := range snap.Results {
		if r == nil {
			continue
		}
		if err := dst.AddResult(r); err != nil {
			return fmt.Errorf("copy result %s: %w", r.ID, err)
		}
	}
	if snap.Settings != nil {
		dst.UpsertSettings(snap.Settings)
	}
	for _, entry := range snap.Audit {
		dst.AddAudit(entry)
	}
	return nil
}

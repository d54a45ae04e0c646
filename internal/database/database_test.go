package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := db.Migrate(ctx); err != nil {
			t.Fatalf("Migrate #%d: %v", i+1, err)
		}
	}
	if err := db.RecordGeneration(ctx, record("gen-1", time.Now().UTC(), "displaying")); err != nil {
		t.Fatalf("RecordGeneration: %v", err)
	}
	db.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if err := reopened.Migrate(ctx); err != nil {
		t.Fatalf("Migrate after reopen: %v", err)
	}
	version, err := reopened.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("version = %d, want %d", version, len(migrations))
	}
	if _, err := reopened.GetGeneration(ctx, "gen-1"); err != nil {
		t.Errorf("record lost across reopen: %v", err)
	}
}

func TestMigrateRejectsNewerSchema(t *testing.T) {
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set version: %v", err)
	}
	if err := db.Migrate(context.Background()); err == nil {
		t.Fatal("expected error for newer schema")
	}
}

func TestOpenMemory(t *testing.T) {
	ctx := context.Background()
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := db.RecordGeneration(ctx, record("mem-1", time.Now().UTC(), "failed")); err != nil {
		t.Fatalf("RecordGeneration: %v", err)
	}
	counts, err := db.CountGenerationsByState(ctx)
	if err != nil || counts["failed"] != 1 {
		t.Errorf("counts = %v, %v", counts, err)
	}
}

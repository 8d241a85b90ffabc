package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMigrationFile(t *testing.T, dir, name, sql string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o644); err != nil {
		t.Fatalf("write migration file: %v", err)
	}
}

func TestLoadMigrations_ParsesAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeMigrationFile(t, dir, "002_favorites.sql", "CREATE TABLE favorite ();")
	writeMigrationFile(t, dir, "001_core.sql", "CREATE TABLE patient ();")
	writeMigrationFile(t, dir, "010_audit.sql", "CREATE TABLE audit_log ();")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	wantVersions := []int{1, 2, 10}
	wantNames := []string{"core", "favorites", "audit"}
	for i, mig := range migrations {
		if mig.Version != wantVersions[i] {
			t.Errorf("expected version %d at index %d, got %d", wantVersions[i], i, mig.Version)
		}
		if mig.Name != wantNames[i] {
			t.Errorf("expected name %q at index %d, got %q", wantNames[i], i, mig.Name)
		}
	}
	if migrations[0].SQL != "CREATE TABLE patient ();" {
		t.Errorf("expected file contents carried, got %q", migrations[0].SQL)
	}
}

func TestLoadMigrations_SkipsNonMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	writeMigrationFile(t, dir, "001_core.sql", "CREATE TABLE patient ();")
	writeMigrationFile(t, dir, "README.md", "notes")
	writeMigrationFile(t, dir, "notes.sql", "no version prefix")
	writeMigrationFile(t, dir, "abc_bad.sql", "non-numeric prefix")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(migrations) != 1 {
		t.Fatalf("expected only the versioned sql file, got %d", len(migrations))
	}
	if migrations[0].Name != "core" {
		t.Errorf("expected name core, got %q", migrations[0].Name)
	}
}

func TestLoadMigrations_MissingDirectory(t *testing.T) {
	m := NewMigrator(nil, filepath.Join(t.TempDir(), "does-not-exist"))
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected an error for a missing migrations directory")
	}
}

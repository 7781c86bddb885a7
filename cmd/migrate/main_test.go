package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  int
		name     string
	}{
		{"0001_create_transactions.sql", true, 1, "create_transactions"},
		{"0012_index.sql", true, 12, "index"},
		{"001_invalid.sql", false, 0, ""},       // wrong number format
		{"0001_test", false, 0, ""},             // missing .sql
		{"0001.sql", false, 0, ""},              // missing name
		{"invalid_0001_test.sql", false, 0, ""}, // wrong order
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := parseMigrationFilename(tt.filename)
			if ok != tt.valid {
				t.Fatalf("parseMigrationFilename(%q) ok = %v, want %v", tt.filename, ok, tt.valid)
			}
			if version != tt.version || name != tt.name {
				t.Errorf("parseMigrationFilename(%q) = (%d, %q), want (%d, %q)", tt.filename, version, name, tt.version, tt.name)
			}
		})
	}
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
	}
	return dir
}

func TestReadMigrations_SortedWithChecksums(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"0002_second.sql": "CREATE INDEX b ON t (x);",
		"0001_first.sql":  "CREATE TABLE t (x INT);",
		"README.md":       "not a migration",
	})

	migrations, err := readMigrations(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("readMigrations() error = %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("len(migrations) = %d, want 2", len(migrations))
	}
	if migrations[0].Name != "first" || migrations[1].Name != "second" {
		t.Errorf("order = %s, %s", migrations[0].Name, migrations[1].Name)
	}
	if migrations[0].Checksum == migrations[1].Checksum {
		t.Error("different content should have different checksums")
	}
	if len(migrations[0].Checksum) != 64 {
		t.Errorf("checksum %q is not a hex sha256", migrations[0].Checksum)
	}
}

func TestReadMigrations_DuplicateVersion(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"0001_a.sql": "SELECT 1;",
		"0001_b.sql": "SELECT 2;",
	})

	_, err := readMigrations(dir, zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("readMigrations() error = %v, want duplicate version", err)
	}
}

func TestPendingMigrations(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Name: "first", Checksum: "aaa"},
		{Version: 2, Name: "second", Checksum: "bbb"},
	}

	pending, err := pendingMigrations(migrations, []AppliedMigration{{Version: 1, Checksum: "aaa"}})
	if err != nil {
		t.Fatalf("pendingMigrations() error = %v", err)
	}
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Errorf("pending = %+v, want only version 2", pending)
	}

	if _, err := pendingMigrations(migrations, []AppliedMigration{{Version: 1, Checksum: "changed"}}); err == nil {
		t.Error("pendingMigrations() expected error for an edited migration")
	}
}

func TestShippedMigrationsParse(t *testing.T) {
	dir, err := resolveDir("migrations/postgres")
	if err != nil {
		t.Skipf("migrations not found: %v", err)
	}
	migrations, err := readMigrations(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("readMigrations() error = %v", err)
	}
	if len(migrations) == 0 || migrations[0].Version != 1 {
		t.Fatalf("expected migrations starting at version 1, got %+v", migrations)
	}
	if !strings.Contains(migrations[0].SQL, "transactions") {
		t.Error("first migration should create the transactions table")
	}
}

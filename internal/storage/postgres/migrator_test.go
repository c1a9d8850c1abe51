package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrationsFromFS_Embedded(t *testing.T) {
	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one embedded migration")
	}

	first := migrations[0]
	if first.Version != 1 {
		t.Errorf("expected first migration version 1, got %d", first.Version)
	}
	if first.Name != "init" {
		t.Errorf("expected first migration name init, got %s", first.Name)
	}
	if !strings.Contains(first.UpSQL, "CREATE TABLE") {
		t.Error("up migration must contain table definitions")
	}
	if !strings.Contains(first.DownSQL, "DROP TABLE") {
		t.Error("down migration must drop created tables")
	}

	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version <= migrations[i-1].Version {
			t.Errorf("migrations must be sorted by version: %d after %d",
				migrations[i].Version, migrations[i-1].Version)
		}
	}
}

func TestLoadMigrationsFromFS_RequiresBothDirections(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/migrations/0001_init.up.sql": &fstest.MapFile{Data: []byte("CREATE TABLE t (id TEXT)")},
	}

	if _, err := loadMigrationsFromFS(fsys); err == nil {
		t.Error("expected error for migration without down file")
	}
}

func TestLoadMigrationsFromFS_RejectsBadNames(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/migrations/init.up.sql":   &fstest.MapFile{Data: []byte("CREATE TABLE t (id TEXT)")},
		"sql/migrations/init.down.sql": &fstest.MapFile{Data: []byte("DROP TABLE t")},
	}

	if _, err := loadMigrationsFromFS(fsys); err == nil {
		t.Error("expected error for migration file without version prefix")
	}
}

func TestLoadMigrationsFromFS_RejectsEmptyBody(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/migrations/0001_init.up.sql":   &fstest.MapFile{Data: []byte("   \n")},
		"sql/migrations/0001_init.down.sql": &fstest.MapFile{Data: []byte("DROP TABLE t")},
	}

	if _, err := loadMigrationsFromFS(fsys); err == nil {
		t.Error("expected error for empty migration body")
	}
}

func TestLoadMigrationsFromFS_RejectsNameMismatch(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/migrations/0001_init.up.sql":    &fstest.MapFile{Data: []byte("CREATE TABLE t (id TEXT)")},
		"sql/migrations/0001_other.down.sql": &fstest.MapFile{Data: []byte("DROP TABLE t")},
	}

	if _, err := loadMigrationsFromFS(fsys); err == nil {
		t.Error("expected error for mismatched migration names within one version")
	}
}

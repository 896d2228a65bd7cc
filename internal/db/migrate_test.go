package db

import (
	"strings"
	"testing"
)

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost:5432/app": "pgx5://u:p@localhost:5432/app",
		"postgresql://u@localhost/app?x=1":  "pgx5://u@localhost/app?x=1",
		"pgx5://already@localhost/app":      "pgx5://already@localhost/app",
	}
	for in, want := range tests {
		if got := migrateURL(in); got != want {
			t.Fatalf("migrateURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUpMigrationsAreOrdered(t *testing.T) {
	scripts, err := UpMigrations()
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	if len(scripts) == 0 {
		t.Fatal("expected at least one up migration")
	}
	if !strings.Contains(scripts[0], "CREATE TABLE IF NOT EXISTS users") {
		t.Fatalf("expected the first migration to create users")
	}
}

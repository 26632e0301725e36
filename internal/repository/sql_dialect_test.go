package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestSupportsRowLocking(t *testing.T) {
	cases := map[string]bool{
		"postgres":   true,
		"PostgreSQL": true,
		" mysql ":    true,
		"sqlite":     false,
		"":           false,
	}
	for dialect, want := range cases {
		if got := supportsRowLocking(dialect); got != want {
			t.Fatalf("supportsRowLocking(%q) want %v got %v", dialect, want, got)
		}
	}
}

func TestForUpdateSkippedOnSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:dialect_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if name := dbDialectName(db); name != "sqlite" {
		t.Fatalf("dialect want sqlite got %s", name)
	}
	if dbDialectName(nil) != "sqlite" {
		t.Fatalf("nil db should default to sqlite")
	}
	stmt := forUpdate(db.Session(&gorm.Session{DryRun: true})).Table("purchases").Where("id = ?", 1).Find(&[]map[string]interface{}{}).Statement
	if _, locked := stmt.Clauses["FOR"]; locked {
		t.Fatalf("sqlite query must not carry a locking clause: %s", stmt.SQL.String())
	}
}

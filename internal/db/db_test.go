package db

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/config"
)

func TestBuildDSN(t *testing.T) {
	t.Run("explicit dsn wins", func(t *testing.T) {
		got, err := BuildDSN("file::memory:?cache=shared", "ignored.db")
		if err != nil {
			t.Fatalf("BuildDSN: %v", err)
		}
		if got != "file::memory:?cache=shared" {
			t.Errorf("dsn = %q", got)
		}
	})

	t.Run("plain path gets file prefix and params", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "sensor_data.db")
		got, err := BuildDSN("", path)
		if err != nil {
			t.Fatalf("BuildDSN: %v", err)
		}
		want := "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
		if got != want {
			t.Errorf("dsn = %q; want %q", got, want)
		}
		if _, err := os.Stat(filepath.Dir(path)); err != nil {
			t.Errorf("parent dir not created: %v", err)
		}
	})

	t.Run("file prefix with query appends", func(t *testing.T) {
		dir := t.TempDir()
		got, err := BuildDSN("", "file:"+dir+"/x.db?mode=rwc")
		if err != nil {
			t.Fatalf("BuildDSN: %v", err)
		}
		if !strings.HasSuffix(got, "?mode=rwc&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL") {
			t.Errorf("dsn = %q", got)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if _, err := BuildDSN("", ""); err == nil {
			t.Fatal("BuildDSN(\"\", \"\") = nil error; want error")
		}
	})
}

func TestOpen(t *testing.T) {
	for _, logSQL := range []bool{false, true} {
		name := "plain"
		if logSQL {
			name = "logging"
		}
		t.Run(name, func(t *testing.T) {
			cfg := config.Config{
				SQLiteDriver:       "sqlite3",
				SQLitePath:         filepath.Join(t.TempDir(), "sensor_data.db"),
				SQLiteMaxOpenConns: 1,
				SQLiteMaxIdleConns: 1,
				SQLiteLogQueries:   logSQL,
			}
			conn, err := Open(cfg, slog.Default())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer func() {
				if err := Close(conn); err != nil {
					t.Errorf("Close: %v", err)
				}
			}()
			var ok int
			if err := conn.QueryRow(`SELECT 1`).Scan(&ok); err != nil || ok != 1 {
				t.Fatalf("SELECT 1 = %d, %v", ok, err)
			}
		})
	}
}

func TestClose_nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v; want nil", err)
	}
}

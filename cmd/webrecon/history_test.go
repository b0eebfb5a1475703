package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/webrecon/webrecon/internal/database"
	"github.com/webrecon/webrecon/internal/model"
)

// seedHistoryDB creates a database with one stored report.
func seedHistoryDB(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "recon.db")
	db, err := database.Open(dbPath, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	report := model.NewCrawlReport("https://example.com")
	report.Summary.PagesCrawled = 4
	if _, err := db.SaveReport(context.Background(), report); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	return dbPath
}

// TestRunHistoryCmd tests the history command.
func TestRunHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("requires db flag", func(t *testing.T) {
		t.Parallel()

		cmd := NewHistoryCmd()
		if err := runHistoryCmd(cmd, nil); err == nil {
			t.Error("expected error without --db")
		}
	})

	t.Run("rejects missing database", func(t *testing.T) {
		t.Parallel()

		cmd := NewHistoryCmd()
		if err := cmd.Flags().Set("db", filepath.Join(t.TempDir(), "missing.db")); err != nil {
			t.Fatalf("failed to set db: %v", err)
		}

		if err := runHistoryCmd(cmd, []string{"https://example.com"}); err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("lists seeds", func(t *testing.T) {
		t.Parallel()

		dbPath := seedHistoryDB(t)
		cmd := NewHistoryCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		if err := cmd.Flags().Set("db", dbPath); err != nil {
			t.Fatalf("failed to set db: %v", err)
		}
		if err := cmd.Flags().Set("list-seeds", "true"); err != nil {
			t.Fatalf("failed to set list-seeds: %v", err)
		}

		if err := runHistoryCmd(cmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "https://example.com") {
			t.Errorf("expected seed in output, got %q", buf.String())
		}
	})

	t.Run("prints run history", func(t *testing.T) {
		t.Parallel()

		dbPath := seedHistoryDB(t)
		cmd := NewHistoryCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		if err := cmd.Flags().Set("db", dbPath); err != nil {
			t.Fatalf("failed to set db: %v", err)
		}

		if err := runHistoryCmd(cmd, []string{"https://example.com"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Run history for https://example.com") {
			t.Errorf("expected history header, got %q", output)
		}
		if !strings.Contains(output, "complete") {
			t.Error("expected run status in output")
		}
	})

	t.Run("requires seed without list-seeds", func(t *testing.T) {
		t.Parallel()

		dbPath := seedHistoryDB(t)
		cmd := NewHistoryCmd()
		if err := cmd.Flags().Set("db", dbPath); err != nil {
			t.Fatalf("failed to set db: %v", err)
		}

		if err := runHistoryCmd(cmd, nil); err == nil {
			t.Error("expected error without a seed URL")
		}
	})

	t.Run("unknown seed with latest is an error", func(t *testing.T) {
		t.Parallel()

		dbPath := seedHistoryDB(t)
		cmd := NewHistoryCmd()
		if err := cmd.Flags().Set("db", dbPath); err != nil {
			t.Fatalf("failed to set db: %v", err)
		}
		if err := cmd.Flags().Set("latest", "true"); err != nil {
			t.Fatalf("failed to set latest: %v", err)
		}

		if err := runHistoryCmd(cmd, []string{"https://unknown.example.com"}); err == nil {
			t.Error("expected error for unknown seed")
		}
	})
}

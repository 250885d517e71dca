//go:build sqlite

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRunCommandSQLiteWarmStartsFromStoredBrains(t *testing.T) {
	base := t.TempDir()
	outDir := filepath.Join(base, "runs")
	dbPath := filepath.Join(base, "antcolony.db")
	sqliteArgs := func(extra ...string) []string {
		args := []string{
			"run",
			"--store", "sqlite",
			"--db-path", dbPath,
			"--out", outDir,
			"--ants", "2",
			"--max-steps", "40",
			"--no-log",
			"--log-level", "error",
		}
		return append(args, extra...)
	}

	if _, err := captureStdout(func() error {
		return run(context.Background(), sqliteArgs("--run-id", "first"))
	}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected sqlite db at %s: %v", dbPath, err)
	}
	if _, err := captureStdout(func() error {
		return run(context.Background(), sqliteArgs("--run-id", "second", "--warm-start-run", "first", "--max-steps", "0"))
	}); err != nil {
		t.Fatalf("warm started run: %v", err)
	}

	first, err := os.ReadFile(filepath.Join(outDir, "first", "Log", "Ant_1_Brain.csv"))
	if err != nil {
		t.Fatalf("read first brain: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(outDir, "second", "Log", "Ant_1_Brain.csv"))
	if err != nil {
		t.Fatalf("read second brain: %v", err)
	}
	if string(first) != string(second) {
		t.Fatal("expected a zero-tick warm start to reproduce the stored brain")
	}

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{"brain", "--store", "sqlite", "--db-path", dbPath, "--out", outDir, "--run-id", "first", "--ant", "1"})
	})
	if err != nil {
		t.Fatalf("brain command: %v", err)
	}
	if out != string(first) {
		t.Fatal("expected stored brain to print as the brain artifact")
	}
}

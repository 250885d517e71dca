package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"antcolony/internal/stats"
)

func captureStdout(fn func() error) (string, error) {
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}

	os.Stdout = w
	runErr := fn()
	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		_ = r.Close()
		return "", err
	}
	_ = r.Close()
	return buf.String(), runErr
}

func valueOf(out, key string) string {
	for _, field := range strings.Fields(out) {
		if strings.HasPrefix(field, key+"=") {
			return strings.TrimPrefix(field, key+"=")
		}
	}
	return ""
}

func smallRunArgs(outDir string, extra ...string) []string {
	args := []string{
		"run",
		"--store", "memory",
		"--out", outDir,
		"--ants", "2",
		"--max-steps", "40",
		"--batch-size", "10",
		"--log-level", "error",
	}
	return append(args, extra...)
}

func TestRunCommandWritesArtifacts(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "runs")
	out, err := captureStdout(func() error {
		return run(context.Background(), smallRunArgs(outDir, "--run-id", "cli-run", "--sim-name", "cli"))
	})
	if err != nil {
		t.Fatalf("run command: %v", err)
	}
	if valueOf(out, "run_id") != "cli-run" || valueOf(out, "ticks") != "40" || valueOf(out, "name") != "cli" {
		t.Fatalf("unexpected run output:\n%s", out)
	}
	for _, file := range []string{"config.json", "summary.json", "food_per_batch.csv", "actions_per_batch.csv"} {
		if _, err := os.Stat(filepath.Join(outDir, "cli-run", file)); err != nil {
			t.Fatalf("expected artifact %s: %v", file, err)
		}
	}
	for _, file := range []string{"Ant_0.csv", "Ant_1.csv", "Ant_0_Brain.csv", "Cumulative.csv"} {
		if _, err := os.Stat(filepath.Join(outDir, "cli-run", "Log", file)); err != nil {
			t.Fatalf("expected log %s: %v", file, err)
		}
	}

	cfg, ok, err := stats.ReadRunConfig(outDir, "cli-run")
	if err != nil || !ok {
		t.Fatalf("read run config: ok=%t err=%v", ok, err)
	}
	if cfg.BatchSize != 10 || cfg.Colony.Ants != 2 || cfg.Colony.MaxSteps != 40 {
		t.Fatalf("unexpected stored config: %+v", cfg)
	}
	batches, ok, err := stats.ReadBatches(outDir, "cli-run")
	if err != nil || !ok {
		t.Fatalf("read batches: ok=%t err=%v", ok, err)
	}
	if len(batches) != 4 {
		t.Fatalf("expected 4 batches, got %d", len(batches))
	}
}

func TestRunCommandNoLogSkipsAntLogs(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "runs")
	if _, err := captureStdout(func() error {
		return run(context.Background(), smallRunArgs(outDir, "--run-id", "quiet", "--no-log", "--no-learning"))
	}); err != nil {
		t.Fatalf("run command: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "quiet", "Log", "Ant_0.csv")); !os.IsNotExist(err) {
		t.Fatalf("expected no ant log, got err=%v", err)
	}
	summary, ok, err := stats.ReadRunSummary(outDir, "quiet")
	if err != nil || !ok {
		t.Fatalf("read summary: ok=%t err=%v", ok, err)
	}
	if summary.Learning {
		t.Fatal("expected learning disabled in summary")
	}
}

func TestRunCommandRejectsInvalidConfig(t *testing.T) {
	err := run(context.Background(), smallRunArgs(t.TempDir(), "--exploration-rate", "1.5"))
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestQueryCommandsReadRunArtifacts(t *testing.T) {
	base := t.TempDir()
	outDir := filepath.Join(base, "runs")
	if _, err := captureStdout(func() error {
		return run(context.Background(), smallRunArgs(outDir, "--run-id", "queried"))
	}); err != nil {
		t.Fatalf("run command: %v", err)
	}

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{"runs", "--store", "memory", "--out", outDir, "--json"})
	})
	if err != nil {
		t.Fatalf("runs command: %v", err)
	}
	var listed []map[string]any
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("decode runs json: %v\n%s", err, out)
	}
	if len(listed) != 1 || listed[0]["run_id"] != "queried" {
		t.Fatalf("unexpected runs output: %s", out)
	}

	// a fresh process has an empty memory store, so cumulative comes from Log/Cumulative.csv
	out, err = captureStdout(func() error {
		return run(context.Background(), []string{"cumulative", "--store", "memory", "--out", outDir, "--latest"})
	})
	if err != nil {
		t.Fatalf("cumulative command: %v", err)
	}
	if strings.Count(out, "ant=") != 2 {
		t.Fatalf("expected 2 cumulative rows, got:\n%s", out)
	}

	brainPath := filepath.Join(base, "brain.csv")
	out, err = captureStdout(func() error {
		return run(context.Background(), []string{"brain", "--store", "memory", "--out", outDir, "--run-id", "queried", "--ant", "1", "--to", brainPath})
	})
	if err != nil {
		t.Fatalf("brain command: %v", err)
	}
	if valueOf(out, "ant") != "1" {
		t.Fatalf("unexpected brain output: %s", out)
	}
	written, err := os.ReadFile(brainPath)
	if err != nil {
		t.Fatalf("read brain csv: %v", err)
	}
	artifact, err := os.ReadFile(filepath.Join(outDir, "queried", "Log", "Ant_1_Brain.csv"))
	if err != nil {
		t.Fatalf("read brain artifact: %v", err)
	}
	if !bytes.Equal(written, artifact) {
		t.Fatal("expected brain command output to match the run artifact")
	}

	dest := filepath.Join(base, "exports")
	out, err = captureStdout(func() error {
		return run(context.Background(), []string{"export", "--store", "memory", "--out", outDir, "--latest", "--dest", dest})
	})
	if err != nil {
		t.Fatalf("export command: %v", err)
	}
	if valueOf(out, "run_id") != "queried" {
		t.Fatalf("unexpected export output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(dest, "queried", "summary.json")); err != nil {
		t.Fatalf("expected exported summary: %v", err)
	}
}

func TestSweepCommand(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "runs")
	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"sweep",
			"--store", "memory",
			"--out", outDir,
			"--ants", "2",
			"--max-steps", "30",
			"--no-log",
			"--seeds", "4,5,6",
			"--workers", "2",
			"--sweep-id", "sw",
			"--log-level", "error",
		})
	})
	if err != nil {
		t.Fatalf("sweep command: %v", err)
	}
	if valueOf(out, "sweep_id") != "sw" || valueOf(out, "runs") != "3" {
		t.Fatalf("unexpected sweep output:\n%s", out)
	}
	if !strings.Contains(out, "seed=5 run_id=sw-seed-5") {
		t.Fatalf("expected per-seed run line, got:\n%s", out)
	}

	out, err = captureStdout(func() error {
		return run(context.Background(), []string{"sweeps", "--store", "memory", "--out", outDir})
	})
	if err != nil {
		t.Fatalf("sweeps command: %v", err)
	}
	if valueOf(out, "sweep_id") != "sw" {
		t.Fatalf("unexpected sweeps output: %s", out)
	}
}

func TestInitCommand(t *testing.T) {
	out, err := captureStdout(func() error {
		return run(context.Background(), []string{"init", "--store", "memory"})
	})
	if err != nil {
		t.Fatalf("init command: %v", err)
	}
	if strings.TrimSpace(out) != "initialized store=memory" {
		t.Fatalf("unexpected init output: %q", out)
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := run(context.Background(), nil); err == nil || !strings.Contains(err.Error(), "usage: antsctl") {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run(context.Background(), []string{"bogus"}); err == nil || !strings.Contains(err.Error(), "unknown command: bogus") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if err := run(context.Background(), []string{"export"}); err == nil {
		t.Fatal("expected export to require a run")
	}
}

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
staging_dir = %q
output_dir = %q
log_dir = %q

[history]
enabled = false
`,
		filepath.Join(base, "staging"),
		filepath.Join(base, "output"),
		filepath.Join(base, "logs"),
	)
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIBonesCommand(t *testing.T) {
	out, _, err := runCLI(t, "bones")
	if err != nil {
		t.Fatalf("bones: %v", err)
	}
	if !strings.Contains(out, "mixamorig:Hips") || !strings.Contains(out, "mixamorig:Hips_01") {
		t.Fatalf("bones table missing hips mapping: %q", out)
	}
	if !strings.Contains(out, "65 entries") {
		t.Fatalf("bones output missing entry count: %q", out)
	}
}

func TestCLIConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	_, _, err = runCLI(t, "config", "init", "--path", target)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
}

func TestCLIConvertRejectsBadClipFlag(t *testing.T) {
	cfgPath := writeTestConfig(t)

	_, _, err := runCLI(t, "--config", cfgPath, "convert", "base.glb", "--clip", "no-separator")
	if err == nil || !strings.Contains(err.Error(), "NAME=SOURCE") {
		t.Fatalf("expected clip flag format error, got %v", err)
	}
}

func TestCLIBatchReportsFailedJobs(t *testing.T) {
	cfgPath := writeTestConfig(t)
	dir := t.TempDir()

	worklist := filepath.Join(dir, "worklist.toml")
	content := fmt.Sprintf("[[job]]\nbase = %q\n", filepath.Join(dir, "missing.glb"))
	if err := os.WriteFile(worklist, []byte(content), 0o644); err != nil {
		t.Fatalf("write worklist: %v", err)
	}

	out, _, err := runCLI(t, "--config", cfgPath, "batch", worklist)
	if err == nil || !strings.Contains(err.Error(), "jobs failed") {
		t.Fatalf("expected batch failure, got %v", err)
	}
	if !strings.Contains(out, "failed") {
		t.Fatalf("summary output missing failed status: %q", out)
	}
}

func TestCLIBatchRejectsInvalidWorklist(t *testing.T) {
	cfgPath := writeTestConfig(t)
	worklist := filepath.Join(t.TempDir(), "worklist.toml")
	if err := os.WriteFile(worklist, []byte("[[job]]\n"), 0o644); err != nil {
		t.Fatalf("write worklist: %v", err)
	}

	_, _, err := runCLI(t, "--config", cfgPath, "batch", worklist)
	if err == nil || !strings.Contains(err.Error(), "base is required") {
		t.Fatalf("expected worklist validation error, got %v", err)
	}
}

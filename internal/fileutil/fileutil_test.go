package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPublish(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "ybot.glb")
	partial := PartialPath(final)

	if err := os.WriteFile(partial, []byte("glb payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Publish(partial, final); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(partial); !os.IsNotExist(err) {
		t.Fatal("partial file still present after publish")
	}
	got, err := os.ReadFile(final)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "glb payload" {
		t.Fatalf("content mismatch: got %q", got)
	}
}

func TestPublish_MissingPartial(t *testing.T) {
	dir := t.TempDir()
	err := Publish(filepath.Join(dir, "nope.partial"), filepath.Join(dir, "nope.glb"))
	if err == nil {
		t.Fatal("expected error for missing partial")
	}
}

func TestPartialPath(t *testing.T) {
	if got := PartialPath("/out/rig.glb"); got != "/out/rig.glb.partial" {
		t.Fatalf("unexpected partial path %q", got)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.glb")
	dst := filepath.Join(dir, "dst.glb")

	content := []byte("binary payload")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.glb")
	dst := filepath.Join(dir, "dst.glb")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileVerified_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFileVerified(filepath.Join(dir, "nonexistent"), filepath.Join(dir, "dst.glb"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

package pdftext

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFakePDF(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	// Not a real PDF; conversion should fail per file, not abort.
	if err := os.WriteFile(path, []byte("%PDF-1.4 truncated"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestExtractFile_NotAPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.pdf")
	writeFakePDF(t, path)

	if _, err := ExtractFile(path); err == nil {
		t.Fatal("expected error for non-PDF content")
	}
}

func TestExtractFile_MissingFile(t *testing.T) {
	if _, err := ExtractFile(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestConvertTree_FailuresCollected(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeFakePDF(t, filepath.Join(inDir, "a.pdf"))
	writeFakePDF(t, filepath.Join(inDir, "sub", "b.pdf"))
	// Non-PDF files are ignored entirely.
	if err := os.WriteFile(filepath.Join(inDir, "notes.txt"), []byte("hi"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	res, err := ConvertTree(inDir, outDir, nil)
	if err != nil {
		t.Fatalf("ConvertTree: %v", err)
	}
	if res.Converted != 0 {
		t.Errorf("Converted = %d, want 0", res.Converted)
	}
	if len(res.Failed) != 2 {
		t.Fatalf("Failed = %v, want 2 entries", res.Failed)
	}
}

func TestConvertTree_SkipsExistingOutput(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeFakePDF(t, filepath.Join(inDir, "done.pdf"))
	if err := os.WriteFile(filepath.Join(outDir, "done.txt"), []byte("existing"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	res, err := ConvertTree(inDir, outDir, nil)
	if err != nil {
		t.Fatalf("ConvertTree: %v", err)
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
	if len(res.Failed) != 0 {
		t.Errorf("Failed = %v, want none", res.Failed)
	}
}

func TestConvertTree_MissingInputDir(t *testing.T) {
	if _, err := ConvertTree(filepath.Join(t.TempDir(), "nope"), t.TempDir(), nil); err == nil {
		t.Fatal("expected error for missing input directory")
	}
}

func TestCleanOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := CleanOutputDir(dir); err != nil {
		t.Fatalf("CleanOutputDir: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("directory still present after clean")
	}
	// Cleaning a nonexistent directory is fine.
	if err := CleanOutputDir(dir); err != nil {
		t.Errorf("CleanOutputDir on missing dir: %v", err)
	}
}

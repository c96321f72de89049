package highlight

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOutputName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"paper.pdf", "paper_highlightable.pdf"},
		{"paper.PDF", "paper_highlightable.PDF"},
		{"my.paper.pdf", "my.paper_highlightable.pdf"},
	}
	for _, tt := range tests {
		if got := outputName(tt.in); got != tt.want {
			t.Errorf("outputName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProcessTree_MissingInput(t *testing.T) {
	if _, err := ProcessTree(filepath.Join(t.TempDir(), "nope"), t.TempDir(), nil); err == nil {
		t.Fatal("expected error for missing input path")
	}
}

func TestProcessTree_SingleNonPDFFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hi"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ProcessTree(path, t.TempDir(), nil); err == nil {
		t.Fatal("expected error for non-PDF input file")
	}
}

func TestProcessTree_CorruptPDFsCollected(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	for _, name := range []string{"a.pdf", filepath.Join("sub", "b.pdf")} {
		path := filepath.Join(inDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte("%PDF-1.4 truncated"), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	res, err := ProcessTree(inDir, outDir, nil)
	if err != nil {
		t.Fatalf("ProcessTree: %v", err)
	}
	if res.Processed != 0 {
		t.Errorf("Processed = %d, want 0", res.Processed)
	}
	if len(res.Failed) != 2 {
		t.Fatalf("Failed = %v, want 2 entries", res.Failed)
	}
	// Failures leave nothing behind in the output tree.
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("output dir not empty after all-failed run: %v", entries)
	}
}

func TestProcessTree_SingleCorruptFileNotFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	res, err := ProcessTree(path, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("ProcessTree: %v", err)
	}
	if res.Processed != 0 || len(res.Failed) != 1 {
		t.Errorf("got Processed=%d Failed=%v, want 0 and 1 entry", res.Processed, res.Failed)
	}
}

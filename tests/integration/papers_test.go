// Package integration provides end-to-end tests for papers commands.
package integration

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/Naveduran/academic-research-utilities/internal/record"
	"github.com/Naveduran/academic-research-utilities/internal/report"
)

var (
	papersBinary     string
	papersBinaryOnce sync.Once
	papersBinaryErr  error
)

// getPapersBinary builds the papers binary once and returns its path.
func getPapersBinary(t *testing.T) string {
	t.Helper()
	papersBinaryOnce.Do(func() {
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			papersBinaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		tmpDir, err := os.MkdirTemp("", "papers-test-*")
		if err != nil {
			papersBinaryErr = err
			return
		}
		papersBinary = filepath.Join(tmpDir, "papers")

		cmd := exec.Command("go", "build", "-o", papersBinary, "./cmd/papers")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			papersBinaryErr = &buildError{output: string(output), err: err}
			return
		}
	})
	if papersBinaryErr != nil {
		t.Fatalf("failed to build papers: %v", papersBinaryErr)
	}
	return papersBinary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// runPapers runs the binary with args and returns stdout+stderr and the
// exit code.
func runPapers(t *testing.T, dir string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(getPapersBinary(t), args...)
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			t.Fatalf("running papers %v: %v", args, err)
		}
	}
	return buf.String(), code
}

const richPaper = `Deep Learning for Protein Structure Prediction

Maria Garcia, Wei Chen, John Smith

Department of Computational Biology, Example University
garcia@example.edu, chen@example.edu

Abstract

We present a method for protein structure prediction published in 2021.
https://doi.org/10.1234/prot.2021.042
`

const sparsePaper = `Working notes on sampling strategies

These notes have no publication metadata to speak of.
`

// setupTextInput writes fabricated converted-paper text files.
func setupTextInput(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "rich.txt"), []byte(richPaper), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sparse.txt"), []byte(sparsePaper), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return dir
}

func TestExtractReferences(t *testing.T) {
	inDir := setupTextInput(t)
	outFile := filepath.Join(t.TempDir(), "references.txt")

	out, code := runPapers(t, inDir, "extract-references", inDir, outFile)
	if code != 0 {
		t.Fatalf("extract-references exited %d: %s", code, out)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	records, err := report.Parse(string(data))
	if err != nil {
		t.Fatalf("output does not re-parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// Lexical walk order: rich.txt before sparse.txt.
	rich, sparse := records[0], records[1]
	if rich.DOI != "10.1234/prot.2021.042" {
		t.Errorf("rich DOI = %q", rich.DOI)
	}
	if rich.Title != "Deep Learning for Protein Structure Prediction" {
		t.Errorf("rich Title = %q", rich.Title)
	}
	if rich.Year != 2021 {
		t.Errorf("rich Year = %d", rich.Year)
	}
	if len(rich.Emails) != 2 {
		t.Errorf("rich Emails = %v", rich.Emails)
	}
	if rich.Status != record.StatusExtracted {
		t.Errorf("rich Status = %q", rich.Status)
	}

	if sparse.DOI != "" {
		t.Errorf("sparse DOI = %q, want empty", sparse.DOI)
	}
	if sparse.SourceFile != "sparse.txt" {
		t.Errorf("sparse SourceFile = %q", sparse.SourceFile)
	}
}

func TestExtractEmails(t *testing.T) {
	inDir := setupTextInput(t)
	outFile := filepath.Join(t.TempDir(), "emails.txt")

	out, code := runPapers(t, inDir, "extract-emails", inDir, outFile)
	if code != 0 {
		t.Fatalf("extract-emails exited %d: %s", code, out)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d email lines, want 2: %q", len(lines), string(data))
	}
	if !strings.HasPrefix(lines[0], "chen@example.edu\t") {
		t.Errorf("first line = %q, want chen@example.edu entry", lines[0])
	}
}

func TestExtractReferences_MissingInputDir(t *testing.T) {
	tmp := t.TempDir()
	out, code := runPapers(t, tmp, "extract-references", filepath.Join(tmp, "nope"), filepath.Join(tmp, "out.txt"))
	if code != 1 {
		t.Errorf("exit code = %d, want 1 (%s)", code, out)
	}
}

func TestEnrichMetadata_MissingCredentials(t *testing.T) {
	tmp := t.TempDir()
	input := filepath.Join(tmp, "references.txt")
	block := "Source: rich.txt\nDOI: 10.1234/prot.2021.042\nStatus: extracted\n"
	if err := os.WriteFile(input, []byte(block), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cmd := exec.Command(getPapersBinary(t), "enrich-metadata", input, filepath.Join(tmp, "out.txt"))
	cmd.Dir = tmp
	cmd.Env = []string{"PATH=" + os.Getenv("PATH"), "HOME=" + tmp}
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 2 {
		t.Fatalf("want exit code 2 for missing credentials, got err=%v output=%s", err, buf.String())
	}
	if !strings.Contains(buf.String(), "credentials") {
		t.Errorf("error output = %q, want credentials hint", buf.String())
	}
}

func TestEnrichMetadata_MalformedInput(t *testing.T) {
	tmp := t.TempDir()
	input := filepath.Join(tmp, "references.txt")
	if err := os.WriteFile(input, []byte("DOI: 10.1/x\nStatus: extracted\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out, code := runPapers(t, tmp, "enrich-metadata", input, filepath.Join(tmp, "out.txt"),
		"--api-key", "k", "--cse-id", "c")
	if code != 3 {
		t.Errorf("exit code = %d, want 3 for malformed input (%s)", code, out)
	}
}

func TestConvertPDF_CorruptInputsReported(t *testing.T) {
	tmp := t.TempDir()
	inDir := filepath.Join(tmp, "pdfs")
	if err := os.MkdirAll(inDir, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(inDir, "bad.pdf"), []byte("not a pdf"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out, code := runPapers(t, tmp, "convert-pdf", inDir, filepath.Join(tmp, "text"))
	if code != 0 {
		t.Fatalf("convert-pdf exited %d: %s", code, out)
	}
	if !strings.Contains(out, "1 failed") {
		t.Errorf("output = %q, want failure count", out)
	}
}

func TestMakeHighlightable_MissingInput(t *testing.T) {
	tmp := t.TempDir()
	out, code := runPapers(t, tmp, "make-highlightable", filepath.Join(tmp, "nope"), filepath.Join(tmp, "out"))
	if code != 1 {
		t.Errorf("exit code = %d, want 1 (%s)", code, out)
	}
}

// Package pdftext converts PDF papers to plain text files.
package pdftext

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Naveduran/academic-research-utilities/internal/textnorm"
)

// MinViableText is the minimum extracted length for a conversion to
// count as successful. Shorter results usually mean a scanned or
// image-only PDF.
const MinViableText = 100

// ErrNoText indicates the PDF yielded too little text to be useful.
var ErrNoText = errors.New("no meaningful text extracted")

// ExtractFile extracts and normalizes the text of a whole PDF. Pages
// that fail to decode are skipped; the error is only returned when the
// file cannot be opened or the total text is below MinViableText.
func ExtractFile(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	text := textnorm.Normalize(b.String())
	if len(text) < MinViableText {
		return "", ErrNoText
	}
	return text, nil
}

// Result summarizes a batch conversion.
type Result struct {
	Converted int
	Skipped   int // output already existed
	Failed    []string
}

// ConvertTree converts every .pdf under inputDir into a .txt under
// outputDir, mirroring the relative directory structure. Files whose
// output already exists are skipped. Per-file conversion failures are
// collected, not fatal; only I/O-level problems abort the walk.
func ConvertTree(inputDir, outputDir string, logf func(format string, args ...any)) (Result, error) {
	var res Result
	if logf == nil {
		logf = func(string, ...any) {}
	}

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}

		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".txt")

		if _, err := os.Stat(outPath); err == nil {
			logf("skipping %s (already converted)", rel)
			res.Skipped++
			return nil
		}

		text, err := ExtractFile(path)
		if err != nil {
			logf("failed to convert %s: %v", rel, err)
			res.Failed = append(res.Failed, rel)
			return nil
		}

		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(outPath, []byte(text+"\n"), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}

		logf("converted %s", rel)
		res.Converted++
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("walking %s: %w", inputDir, err)
	}

	return res, nil
}

// CleanOutputDir removes a previous conversion output directory.
func CleanOutputDir(outputDir string) error {
	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("cleaning output directory: %w", err)
	}
	return nil
}

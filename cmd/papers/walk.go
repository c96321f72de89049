package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// textFile is one converted document found under an input directory.
type textFile struct {
	// Rel is the path relative to the input directory, used as the
	// record's source identifier.
	Rel     string
	Content string
}

// readTextFiles reads every .txt file under inputDir recursively, in
// lexical order. Unreadable directories are fatal; individual files that
// fail to read are reported and skipped.
func readTextFiles(inputDir string) ([]textFile, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, fmt.Errorf("input directory %s: %w", inputDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path is not a directory: %s", inputDir)
	}

	var files []textFile
	err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".txt") {
			return nil
		}

		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logf("skipping unreadable file %s: %v", rel, err)
			return nil
		}

		files = append(files, textFile{Rel: filepath.ToSlash(rel), Content: string(data)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", inputDir, err)
	}

	return files, nil
}

// writeOutput writes content to outputFile, creating parent directories
// as needed.
func writeOutput(outputFile, content string) error {
	if dir := filepath.Dir(outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outputFile, err)
	}
	return nil
}

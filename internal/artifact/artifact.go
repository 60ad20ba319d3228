// Package artifact writes output files atomically.
package artifact

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is one output to produce. Fill streams its content into a temp file next to Path.
type File struct {
	Path string
	Fill func(io.Writer) error
}

// WriteAll stages every file in a temp file first and renames them into place only
// after all of them were written. If staging fails nothing is renamed; if a rename
// fails the files already moved into place are removed, so a failed call never leaves
// part of the set behind.
func WriteAll(files []File) error {
	staged := make([]string, 0, len(files))
	defer func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}()
	for _, f := range files {
		tmp, err := stage(f)
		if err != nil {
			return err
		}
		staged = append(staged, tmp)
	}

	for i, tmp := range staged {
		if err := os.Rename(tmp, files[i].Path); err != nil {
			for _, done := range files[:i] {
				_ = os.Remove(done.Path)
			}
			return fmt.Errorf("failed to write %s: %w", files[i].Path, err)
		}
	}
	staged = nil
	return nil
}

func stage(f File) (string, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(f.Path), "."+filepath.Base(f.Path)+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	ok := false
	defer func() {
		_ = tmpFile.Close()
		if !ok {
			_ = os.Remove(tmpPath)
		}
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := f.Fill(writer); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", f.Path, err)
	}
	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush %s: %w", f.Path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", f.Path, err)
	}
	ok = true
	return tmpPath, nil
}

// EnsureDir creates dir and its parents if missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

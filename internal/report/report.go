// Package report writes the digest report as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"rss_digest/internal/model"
)

// Write encodes r as indented UTF-8 JSON. Non-ASCII and HTML characters are
// written as they are.
func Write(w io.Writer, r model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteFile writes r to path, replacing any existing file.
func WriteFile(path string, r model.Report) error {
	f, err := os.Create(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := Write(f, r); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	return nil
}

// TempPath creates an empty, uniquely named report file in the system temp
// directory and returns its path.
func TempPath() (string, error) {
	f, err := os.CreateTemp("", "tech-digest-rss-*.json")
	if err != nil {
		return "", fmt.Errorf("create temp report: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp report: %w", err)
	}
	return path, nil
}

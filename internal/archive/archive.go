// Package archive prunes old digest files.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
	"time"
)

// DefaultKeepDays is how long archived digests are kept.
const DefaultKeepDays = 30

var dateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Clean removes *.md files in dir whose name carries a YYYY-MM-DD date older
// than keepDays before now, e.g. daily-2026-01-02.md. Files without a valid
// date are left alone. A dir that is missing or not a directory is not an
// error and removes nothing.
func Clean(dir string, keepDays int, now time.Time) (int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return 0, nil
		}
		return 0, fmt.Errorf("stat archive dir: %w", err)
	}
	if !info.IsDir() {
		return 0, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read archive dir: %w", err)
	}

	cutoff := now.AddDate(0, 0, -keepDays)
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		m := dateRe.FindString(name)
		if m == "" {
			continue
		}
		fileDate, err := time.ParseInLocation("2006-01-02", m, now.Location())
		if err != nil {
			continue
		}
		if !fileDate.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, fmt.Errorf("remove %s: %w", name, err)
		}
		removed++
	}
	return removed, nil
}

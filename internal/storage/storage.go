// Package storage reads and writes the f1stats JSON files.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/titanous/json5"

	"f1stats/internal/models"
	"f1stats/internal/slug"
)

// BackupTimeFormat is the timestamp suffix of backup files.
const BackupTimeFormat = "20060102T150405"

// Storage errors.
var (
	ErrNotFound   = errors.New("file not found")
	ErrEmptyFile  = errors.New("file is empty")
	ErrNilPayload = errors.New("nothing to write")
)

// now is swapped in tests.
var now = time.Now

// LoadStats reads a statistics document. Maps absent from the file are
// created empty.
func LoadStats(path string) (*models.StatsDocument, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var doc models.StatsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, models.NewParseError(path, data, err)
	}

	if doc.Seasons == nil {
		doc.Seasons = []int{}
	}

	if doc.DriverStats == nil {
		doc.DriverStats = make(map[string]*models.DriverRecord)
	}

	if doc.TeamStats == nil {
		doc.TeamStats = make(map[string]*models.TeamRecord)
	}

	return &doc, nil
}

// LoadRoster reads a roster file. Comments and trailing commas are accepted.
// Missing slugs are derived from display names.
func LoadRoster(path string) (*models.Roster, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var roster models.Roster
	if err := json5.Unmarshal(data, &roster); err != nil {
		return nil, models.NewParseError(path, data, err)
	}

	roster.FillSlugs(slug.Slug)

	return &roster, nil
}

// ReadJSON decodes any JSON file into v.
func ReadJSON(path string, v any) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return models.NewParseError(path, data, err)
	}

	return nil
}

// Exists reports whether path names a regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	return data, nil
}

// Encode renders v as two-space indented JSON with a trailing newline.
// Non-ASCII text is written as-is.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteJSON writes v to path.tmp and renames it over path.
func WriteJSON(path string, v any) error {
	if v == nil {
		return ErrNilPayload
	}

	data, err := Encode(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// Backup copies path to path.bak.<timestamp> unless path is missing or a
// backup already exists. The first backup wins, so repeated runs keep the
// oldest pre-write state. Returns the backup path, or "" when skipped.
func Backup(path string) (string, error) {
	if !Exists(path) {
		return "", nil
	}

	existing, err := Backups(path)
	if err != nil {
		return "", err
	}

	if len(existing) > 0 {
		return "", nil
	}

	dst := path + ".bak." + now().Format(BackupTimeFormat)
	if err := copyFile(path, dst); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}

	return dst, nil
}

// Backups lists the backups of path: files named path.bak.<timestamp>.
// Leftover temporary files and other .bak* names are ignored.
func Backups(path string) ([]string, error) {
	matches, err := filepath.Glob(globEscape(path) + ".bak.*")
	if err != nil {
		return nil, fmt.Errorf("failed to list backups of %s: %w", path, err)
	}

	prefix := filepath.Base(path) + ".bak."
	backups := make([]string, 0, len(matches))

	for _, m := range matches {
		if _, err := time.Parse(BackupTimeFormat, strings.TrimPrefix(filepath.Base(m), prefix)); err != nil {
			continue
		}

		backups = append(backups, m)
	}

	return backups, nil
}

// SaveStats writes doc to path, backing up the previous file first when backup is set.
func SaveStats(path string, doc *models.StatsDocument, backup bool) (string, error) {
	if doc == nil {
		return "", ErrNilPayload
	}

	var bak string

	if backup {
		var err error
		if bak, err = Backup(path); err != nil {
			return "", err
		}
	}

	if err := WriteJSON(path, doc); err != nil {
		return bak, err
	}

	return bak, nil
}

// CopyFile copies src over dst through a temporary file.
func CopyFile(src, dst string) error {
	return copyFile(src, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"

	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(tmp)

		return err
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return nil
}

func globEscape(path string) string {
	var b bytes.Buffer

	for _, r := range path {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteByte('\\')
		}

		b.WriteRune(r)
	}

	return b.String()
}

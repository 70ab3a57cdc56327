package scan

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/rohankatakam/attrition/internal/models"
)

// Convention is a file naming convention: <Prefix><key><Suffix>
type Convention struct {
	Prefix string
	Suffix string
}

// Matches reports whether name follows the convention with a non-empty key
func (c Convention) Matches(name string) bool {
	return len(name) > len(c.Prefix)+len(c.Suffix) &&
		strings.HasPrefix(name, c.Prefix) &&
		strings.HasSuffix(name, c.Suffix)
}

// DeriveKey strips prefix and suffix and normalizes the rest to NFC, so a
// name written by a decomposing filesystem still joins with its twin.
func (c Convention) DeriveKey(name string) (models.MatchKey, bool) {
	if !c.Matches(name) {
		return "", false
	}
	stem := name[len(c.Prefix) : len(name)-len(c.Suffix)]
	return models.MatchKey(norm.NFC.String(stem)), true
}

// FileName builds the file name for key
func (c Convention) FileName(key models.MatchKey) string {
	return c.Prefix + string(key) + c.Suffix
}

// Entry is one file that follows a convention
type Entry struct {
	Path string
	Name string
	Key  models.MatchKey
}

// Skipped is a matching file that could not be used
type Skipped struct {
	Name string
	Err  error
}

// Result is the outcome of scanning one directory
type Result struct {
	Dir     string
	Entries []Entry
	Skipped []Skipped
}

// Keys returns the derived keys in entry order
func (r *Result) Keys() []models.MatchKey {
	keys := make([]models.MatchKey, len(r.Entries))
	for i, e := range r.Entries {
		keys[i] = e.Key
	}
	return keys
}

// Scan lists the regular files of dir that follow conv, sorted by name.
// Only an unreadable directory is an error; files that cannot be opened are
// logged and reported in Result.Skipped.
func Scan(dir string, conv Convention) (*Result, error) {
	logger := slog.Default().With("component", "scan")

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	result := &Result{Dir: dir}
	for _, de := range dirEntries {
		name := de.Name()
		key, ok := conv.DeriveKey(name)
		if !ok || de.IsDir() {
			continue
		}

		path := filepath.Join(dir, name)
		if err := checkReadable(path); err != nil {
			logger.Warn("skipping unreadable file", "file", name, "error", err)
			result.Skipped = append(result.Skipped, Skipped{Name: name, Err: err})
			continue
		}

		result.Entries = append(result.Entries, Entry{Path: path, Name: name, Key: key})
	}

	sort.Slice(result.Entries, func(i, j int) bool {
		return result.Entries[i].Name < result.Entries[j].Name
	})

	logger.Debug("scanned directory",
		"dir", dir,
		"prefix", conv.Prefix,
		"suffix", conv.Suffix,
		"matched", len(result.Entries),
		"skipped", len(result.Skipped))

	return result, nil
}

// ScanAll lists every file of dir ending in ext; the key is the file stem
func ScanAll(dir, ext string) (*Result, error) {
	return Scan(dir, Convention{Suffix: ext})
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}

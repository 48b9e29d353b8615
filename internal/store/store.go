// Package store is local persistence for nanosheet: an SQLite database for
// card records, lane titles, and sheet snapshots, plus a small JSON
// preference file. The replicated document is the live source of truth;
// this store is what survives restarts.
package store

import (
	"os"
	"path/filepath"
)

const (
	dbFileName    = "nanosheet.sqlite"
	prefsFileName = "prefs.json"
)

type Store struct {
	Dir string
}

// DiscoverDir walks up from start looking for an existing .nanosheet
// directory, so commands run from anywhere inside a project find its store.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, ".nanosheet")
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, ".nanosheet"), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) dbPath() string {
	return filepath.Join(s.Dir, dbFileName)
}

func (s Store) prefsPath() string {
	return filepath.Join(s.Dir, prefsFileName)
}

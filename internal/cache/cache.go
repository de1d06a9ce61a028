package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// FileName is the cache file written at the batch root.
const FileName = ".kmodauditcache.json"

type DB struct {
	// Absolute config path -> "<content fingerprint>/<allow-list digest>"
	Entries map[string]string `json:"entries"`
}

func defaultPath(root string) string {
	// Prefer storing cache under .git to avoid accidental commits
	// Fall back to root if .git does not exist
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "kmodauditcache.json")
	}
	return filepath.Join(root, FileName)
}

func Load(root string) (DB, error) {
	var db DB
	p := defaultPath(root)
	f, err := os.ReadFile(p)
	if err != nil {
		return DB{Entries: map[string]string{}}, err
	}
	if err := json.Unmarshal(f, &db); err != nil {
		return DB{Entries: map[string]string{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]string{}
	}
	return db, nil
}

func Save(root string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	p := defaultPath(root)
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0644)
}

// Fresh reports whether key matches the entry recorded for path by the last
// batch run.
func (db DB) Fresh(path, key string) bool {
	h, ok := db.Entries[path]
	return ok && h == key
}

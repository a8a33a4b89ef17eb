package analysis

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
)

// Cache stores finished analysis tables on disk, keyed by the SHA-256 of the
// audio file's contents: the same bytes always reproduce the same table, so
// renames and re-downloads still hit. All methods are best-effort.
type Cache struct {
	dir string
}

// NewCache creates a cache rooted at dir, creating it if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// DefaultCacheDir returns the per-user cache location.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "klank", "analysis"), nil
}

type cacheEntry struct {
	Magnitudes [][]float64
	Times      []float64
}

// Load returns the cached table for path, or ok=false on any miss or error.
func (c *Cache) Load(path string) (*Table, bool) {
	key, err := contentKey(path)
	if err != nil {
		return nil, false
	}

	f, err := os.Open(filepath.Join(c.dir, key+".viz"))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var entry cacheEntry
	if err := gob.NewDecoder(f).Decode(&entry); err != nil {
		return nil, false
	}
	if len(entry.Magnitudes) != len(entry.Times) || len(entry.Times) == 0 {
		return nil, false
	}
	for _, row := range entry.Magnitudes {
		if len(row) != Bands {
			return nil, false
		}
	}
	return &Table{Magnitudes: entry.Magnitudes, Times: entry.Times}, true
}

// Store writes table for path. Errors are returned but callers may ignore
// them; a failed store only costs a re-analysis later.
func (c *Cache) Store(path string, table *Table) error {
	key, err := contentKey(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, "viz-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	entry := cacheEntry{Magnitudes: table.Magnitudes, Times: table.Times}
	if err := gob.NewEncoder(tmp).Encode(&entry); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(c.dir, key+".viz"))
}

func contentKey(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

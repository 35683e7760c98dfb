package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultDir is the cache directory under the user's home.
const DefaultDir = ".cache/rigwall"

// ErrExpired is returned by [Cache.Get] for entries older than the TTL. The
// stale file is left for the next Set to overwrite.
var ErrExpired = errors.New("cache entry expired")

// Cache keeps JSON values on disk, one file per key. File names are the
// SHA-256 of the key so URLs and paths are safe keys. Concurrent use is
// fine: writers rename a finished temp file into place.
type Cache struct {
	dir    string
	ttl    time.Duration // zero keeps entries forever
	prefix string
}

// NewCache opens (creating if needed) a cache in dir. An empty dir means
// ~/.cache/rigwall.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, filepath.FromSlash(DefaultDir))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

func (c *Cache) Dir() string        { return c.dir }
func (c *Cache) TTL() time.Duration { return c.ttl }

// Namespace returns a view whose keys get prefix prepended. Views share the
// directory and TTL and may be nested.
func (c *Cache) Namespace(prefix string) *Cache {
	ns := *c
	ns.prefix += prefix
	return &ns
}

// Get decodes the entry for key into v and reports whether it was found.
// A missing entry is (false, nil); a stale one is (false, ErrExpired).
func (c *Cache) Get(key string, v any) (bool, error) {
	f, err := os.Open(c.keyPath(c.prefix + key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	defer f.Close()

	if c.ttl > 0 {
		info, err := f.Stat()
		if err != nil {
			return false, err
		}
		if time.Since(info.ModTime()) > c.ttl {
			return false, ErrExpired
		}
	}
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return false, err
	}
	return true, nil
}

// Set writes v under key and restarts its TTL.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.writeAtomic(c.keyPath(c.prefix+key), data)
}

func (c *Cache) writeAtomic(dst string, data []byte) (err error) {
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func (c *Cache) keyPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:]))
}

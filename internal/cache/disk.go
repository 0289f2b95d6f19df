package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when diskEntry format changes
const diskSchemaVersion uint16 = 1

// Disk stores entries as msgpack files, one per key.
// Thread-safe for concurrent access.
type Disk struct {
	mu  sync.RWMutex
	dir string
}

type diskEntry struct {
	Schema    uint16
	Key       string
	Value     []byte
	ExpiresAt int64 // unix nanoseconds, 0 means no expiry
}

// OpenDisk opens a disk cache in dir, or in the user cache directory when dir
// is empty.
func OpenDisk(dir string) (*Disk, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "ably")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Disk) Dir() string {
	return c.dir
}

func (c *Disk) pathFor(key string) string {
	sum := sha256.Sum256([]byte(key))
	hexKey := hex.EncodeToString(sum[:])
	// двухсимвольные подкаталоги, чтобы не держать всё в одной папке
	return filepath.Join(c.dir, hexKey[:2], hexKey+".mp")
}

func (c *Disk) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var e diskEntry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	// другая схема или коллизия ключа считаются промахом
	if e.Schema != diskSchemaVersion || e.Key != key {
		return nil, false, nil
	}
	if e.ExpiresAt != 0 && time.Now().UnixNano() > e.ExpiresAt {
		return nil, false, nil
	}
	return e.Value, true, nil
}

func (c *Disk) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := diskEntry{Schema: diskSchemaVersion, Key: key, Value: value}
	if ttl > 0 {
		e.ExpiresAt = time.Now().Add(ttl).UnixNano()
	}
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck // already renamed on success

	if err := msgpack.NewEncoder(f).Encode(&e); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

func (c *Disk) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := os.Remove(c.pathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// DropAll removes every entry.
func (c *Disk) DropAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *Disk) Close() error { return nil }

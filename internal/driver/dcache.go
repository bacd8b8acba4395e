package driver

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"rcgen/internal/layout"
	"rcgen/internal/mir"
)

// Digest identifies an input unit together with the target it was expanded for.
type Digest [sha256.Size]byte

// DiskCache stores expanded units by input Digest.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache opens (creating if needed) a cache under dir, or under
// $XDG_CACHE_HOME/app when dir is empty.
func OpenDiskCache(dir, app string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// UnitDigest hashes the encoded input unit and the target pointer size, which
// is the only target property the expansion depends on.
func UnitDigest(u *mir.Unit, target layout.Target) (Digest, error) {
	var buf bytes.Buffer
	if err := mir.EncodeUnit(&buf, u); err != nil {
		return Digest{}, err
	}
	h := sha256.New()
	var ptr [8]byte
	binary.LittleEndian.PutUint64(ptr[:], uint64(target.PtrSize))
	h.Write(ptr[:])
	h.Write(buf.Bytes())
	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "units", hex.EncodeToString(key[:])+".mp")
}

// cacheSchemaVersion increments whenever cacheEntry changes.
const cacheSchemaVersion uint16 = 1

// CacheSchemaVersion reports the on-disk cache entry format.
func CacheSchemaVersion() uint16 { return cacheSchemaVersion }

// cacheEntry is one stored expansion. The unit is kept in its own encoding so
// the entry format does not change with the IR.
type cacheEntry struct {
	Schema   uint16
	Expanded int
	Helpers  int
	Unit     []byte
}

// Put writes an expanded result under key.
func (c *DiskCache) Put(key Digest, res *Result) error {
	if c == nil || res == nil {
		return nil
	}
	var unit bytes.Buffer
	if err := mir.EncodeUnit(&unit, res.Unit); err != nil {
		return err
	}
	data, err := msgpack.Marshal(&cacheEntry{
		Schema:   cacheSchemaVersion,
		Expanded: res.Expanded,
		Helpers:  res.Helpers,
		Unit:     unit.Bytes(),
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Atomic replace
	return os.Rename(tmp, p)
}

// Get reads the result stored under key. The returned Result is marked Cached.
func (c *DiskCache) Get(key Digest) (*Result, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	data, err := os.ReadFile(c.pathFor(key))
	c.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var entry cacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("cache entry %x: %w", key[:6], err)
	}
	if entry.Schema != cacheSchemaVersion {
		return nil, false, fmt.Errorf("cache entry %x: schema %d, want %d", key[:6], entry.Schema, cacheSchemaVersion)
	}
	u, err := mir.DecodeUnit(bytes.NewReader(entry.Unit))
	if err != nil {
		return nil, false, fmt.Errorf("cache entry %x: %w", key[:6], err)
	}
	return &Result{Unit: u, Expanded: entry.Expanded, Helpers: entry.Helpers, Cached: true}, true, nil
}

// DropAll removes every cached unit.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "units"))
}

package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"paw/internal/source"
)

// Bump when the payload format changes; stale entries miss instead of
// decoding garbage.
const diskCacheSchemaVersion uint16 = 1

// Digest keys cache entries by the aggregate source content.
type Digest [32]byte

// DiskCache persists build artifacts across runs, keyed by Digest.
// Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached result of one clean build.
type DiskPayload struct {
	Schema uint16
	IRText string
}

// OpenDiskCache initializes the cache at the standard user location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "builds", hex.EncodeToString(key[:])+".mp")
}

// Put writes a payload atomically.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
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
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a payload; a miss is (false, nil).
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// buildDigest folds every file's path and content hash into one key.
func buildDigest(fileSet *source.FileSet, fileIDs []source.FileID) Digest {
	h := sha256.New()
	for _, id := range fileIDs {
		file, ok := fileSet.Get(id)
		if !ok {
			continue
		}
		h.Write([]byte(file.Path))
		h.Write([]byte{0})
		h.Write(file.Hash[:])
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func cacheLookup(c *DiskCache, fileSet *source.FileSet, fileIDs []source.FileID) (*DiskPayload, bool) {
	if c == nil {
		return nil, false
	}
	var payload DiskPayload
	ok, err := c.Get(buildDigest(fileSet, fileIDs), &payload)
	if err != nil || !ok {
		return nil, false
	}
	return &payload, true
}

func cacheStore(c *DiskCache, fileSet *source.FileSet, fileIDs []source.FileID, irText string) {
	// Cache misses are recoverable; write failures are ignored the
	// same way.
	_ = c.Put(buildDigest(fileSet, fileIDs), &DiskPayload{
		Schema: diskCacheSchemaVersion,
		IRText: irText,
	})
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wardenscan/warden/internal/frame"
)

// Key identifies one cache entry: a specific frame's verdict on a
// specific file at a specific content hash. Any change to content
// produces a different Key, so a stale on-disk entry for an edited file
// is simply never looked up again rather than needing explicit
// invalidation.
type Key struct {
	FrameID      string
	AbsolutePath string
	ContentHash  string
}

// entry is the on-disk JSON shape. Findings may be nil/empty; that's a
// valid cached result, not a cache miss — the zero value for "ran clean".
type entry struct {
	Findings []frame.Finding `json:"findings"`
}

// Cache is the findings cache: an in-memory LRU in front of a
// disk-backed JSON store under dir/<frame_id>/<content_hash>.json.
type Cache struct {
	dir string
	lru *lru.Cache[Key, []frame.Finding]
}

// DefaultLRUSize bounds the in-memory front layer; entries beyond this
// fall back to the disk read on the next lookup rather than being lost.
const DefaultLRUSize = 2048

// New creates a Cache rooted at dir (typically .warden/findings_cache).
func New(dir string) (*Cache, error) {
	l, err := lru.New[Key, []frame.Finding](DefaultLRUSize)
	if err != nil {
		return nil, fmt.Errorf("cache: failed to create in-memory LRU: %w", err)
	}
	return &Cache{dir: dir, lru: l}, nil
}

// HashContent computes the sha256 hex digest used as a Key's
// ContentHash.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached findings for key and true on a hit (in-memory
// or on-disk), or (nil, false) on a miss.
func (c *Cache) Get(key Key) ([]frame.Finding, bool) {
	if findings, ok := c.lru.Get(key); ok {
		return findings, true
	}

	data, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false
	}

	c.lru.Add(key, e.Findings)
	return e.Findings, true
}

// Set stores findings for key, both in the in-memory LRU and on disk via
// an atomic write-then-rename so a concurrent reader never observes a
// partially written file.
func (c *Cache) Set(key Key, findings []frame.Finding) error {
	c.lru.Add(key, findings)

	path := c.entryPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cache: failed to create frame cache dir: %w", err)
	}

	data, err := json.MarshalIndent(entry{Findings: findings}, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: failed to marshal findings: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cache: failed to write temp entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("cache: failed to finalize entry: %w", err)
	}
	return nil
}

// Invalidate removes key from both the in-memory LRU and disk.
func (c *Cache) Invalidate(key Key) error {
	c.lru.Remove(key)
	if err := os.Remove(c.entryPath(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// entryPath addresses entries by frame, then by a hash of path+content so
// two files with identical content but different paths (whose Findings
// carry different FilePath/Location values) never collide under the
// same cache key, matching spec's three-part key
// (frame_id, absolute_path, sha256(content)).
func (c *Cache) entryPath(key Key) string {
	pathAndContent := sha256.Sum256([]byte(key.AbsolutePath + "\x00" + key.ContentHash))
	return filepath.Join(c.dir, key.FrameID, hex.EncodeToString(pathAndContent[:])+".json")
}

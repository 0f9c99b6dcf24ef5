package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Entry is one stored classifier response.
type Entry struct {
	Key       string    `json:"key"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
	TTL       int       `json:"ttl"`
}

// Cache stores raw semantic-classifier responses on disk, one JSON file per
// key. A nil *Cache behaves like a disabled one.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
	now     func() time.Time
}

// New creates a Cache. An empty dir selects the per-user cache directory.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{}, nil
	}
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		enabled: true,
		now:     time.Now,
	}, nil
}

// Get returns the response stored under key. Expired entries are removed
// and reported as a miss.
func (c *Cache) Get(key string) (string, bool) {
	if !c.Enabled() {
		return "", false
	}
	path := c.entryPath(key)
	entry, err := readEntry(path)
	if err != nil {
		return "", false
	}
	if c.expired(entry) {
		os.Remove(path)
		return "", false
	}
	return entry.Response, true
}

// Put stores response under key. The file is written to a temporary name
// and renamed so concurrent readers never see a partial entry.
func (c *Cache) Put(key, response string) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(Entry{
		Key:       key,
		Response:  response,
		CreatedAt: c.now(),
		TTL:       int(c.ttl / time.Second),
	})
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("creating cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.entryPath(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storing cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were deleted.
func (c *Cache) Clear() (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	files, err := c.entryFiles()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files {
		if err := os.Remove(f); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Prune removes expired and unreadable entries and returns how many were
// deleted. Fresh entries are kept.
func (c *Cache) Prune() (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	files, err := c.entryFiles()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files {
		entry, err := readEntry(f)
		if err == nil && !c.expired(entry) {
			continue
		}
		if err := os.Remove(f); err == nil {
			removed++
		}
	}
	return removed, nil
}

// TTL returns how long entries stay valid. Zero means forever.
func (c *Cache) TTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.ttl
}

// Stats describes the cache contents.
type Stats struct {
	Dir        string `json:"dir"`
	Enabled    bool   `json:"enabled"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
}

// GetStats walks the cache directory.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.Dir(), Enabled: c.Enabled()}
	if !c.Enabled() {
		return stats, nil
	}
	files, err := c.entryFiles()
	if err != nil {
		return stats, err
	}
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()
		if entry, err := readEntry(f); err == nil && c.expired(entry) {
			stats.Expired++
		}
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Enabled reports whether caching is on.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// Key derives the cache key for one classifier call. Every input that can
// change the response is part of the key.
func Key(provider, model, instruction, input string) string {
	h := sha256.New()
	for _, part := range []string{provider, model, instruction, input} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) expired(e Entry) bool {
	return c.ttl > 0 && c.now().Sub(e.CreatedAt) > c.ttl
}

func (c *Cache) entryPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

func (c *Cache) entryFiles() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(c.dir, e.Name()))
	}
	return files, nil
}

func readEntry(path string) (Entry, error) {
	var entry Entry
	data, err := os.ReadFile(path)
	if err != nil {
		return entry, err
	}
	err = json.Unmarshal(data, &entry)
	return entry, err
}

// DefaultDir returns the per-user cache directory for refract.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "refract"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "refract"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "refract", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "refract", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "refract"), nil
	}
}

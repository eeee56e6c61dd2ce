package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/wyg1997/tino/pkg/logger"
)

var (
	// ErrNotFound is returned when a key is absent.
	ErrNotFound = errors.New("cache: key not found")
	// ErrExpired is returned when a key is present but past its TTL.
	ErrExpired = errors.New("cache: key expired")
)

// Cache interface for caching system
type Cache interface {
	// Get decodes the value stored under key into value
	Get(key string, value interface{}) error

	// Set sets a value in cache with TTL
	Set(key string, value interface{}, ttl time.Duration) error

	// Delete removes a value from cache
	Delete(key string) error

	// Exists checks if a key exists and is not expired
	Exists(key string) bool

	// Clear clears all cache
	Clear() error

	// Close stops the cleanup routine
	Close() error
}

// fileCache keeps items in memory and mirrors them to a JSON file
type fileCache struct {
	items map[string]*cacheItem
	mu    sync.RWMutex
	file  string
	lock  *flock.Flock
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type cacheItem struct {
	Value     json.RawMessage `json:"value"`
	ExpiredAt time.Time       `json:"expired_at"`
}

// NewFileCache creates a cache persisted to file. An empty file keeps the
// cache in memory only. Expired items are swept every cleanupInterval; a
// non-positive interval disables the sweep. Reads and writes of the file
// hold an advisory lock on file+".lock". A file that cannot be read or
// decoded is logged and the cache starts empty.
func NewFileCache(file string, cleanupInterval time.Duration) (Cache, error) {
	c := &fileCache{
		items: make(map[string]*cacheItem),
		file:  file,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if file != "" {
		c.lock = flock.New(file + ".lock")
	}

	if err := c.load(); err != nil {
		logger.GetLogger().With("cache").Warn("Failed to load cache from file, starting empty: %v", err)
		c.items = make(map[string]*cacheItem)
	}

	if cleanupInterval > 0 {
		go c.cleanup(cleanupInterval)
	}

	return c, nil
}

func (c *fileCache) Get(key string, value interface{}) error {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if c.now().After(item.ExpiredAt) {
		return fmt.Errorf("%w: %s", ErrExpired, key)
	}

	if err := json.Unmarshal(item.Value, value); err != nil {
		return fmt.Errorf("failed to decode cached value %s: %w", key, err)
	}
	return nil
}

func (c *fileCache) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem{
		Value:     data,
		ExpiredAt: c.now().Add(ttl),
	}
	return c.save()
}

func (c *fileCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return c.save()
}

func (c *fileCache) Exists(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	return exists && c.now().Before(item.ExpiredAt)
}

func (c *fileCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*cacheItem)
	return c.save()
}

func (c *fileCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

// load reads the cache file; a missing file is not an error
func (c *fileCache) load() error {
	if c.file == "" {
		return nil
	}

	if _, err := os.Stat(c.file); os.IsNotExist(err) {
		return nil
	}

	if err := c.lock.RLock(); err != nil {
		return fmt.Errorf("failed to lock cache file: %w", err)
	}
	data, err := os.ReadFile(c.file)
	_ = c.lock.Unlock()
	if err != nil {
		return fmt.Errorf("failed to read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &c.items); err != nil {
		return fmt.Errorf("failed to decode cache file %s: %w", c.file, err)
	}
	return nil
}

// save writes the cache file. Callers hold c.mu.
func (c *fileCache) save() error {
	if c.file == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.file), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(c.items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock cache file: %w", err)
	}
	defer c.lock.Unlock()

	return writeFileAtomic(c.file, data, 0o644)
}

// writeFileAtomic writes data to a temp file next to file and renames it
// into place, so readers never see a partial write.
func writeFileAtomic(file string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(file), filepath.Base(file)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to chmod cache file: %w", err)
	}
	if err := os.Rename(tmpName, file); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

func (c *fileCache) sweep() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := false
	now := c.now()
	for key, item := range c.items {
		if now.After(item.ExpiredAt) {
			delete(c.items, key)
			changed = true
		}
	}

	if !changed {
		return nil
	}
	return c.save()
}

func (c *fileCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			_ = c.sweep()
		}
	}
}

// FileCache provides fast repeated file access using memory-mapped files.
//
// Exploring a package tree reads the same __init__.py files over and over
// (tree building, import-chain resolution, signature lookup). Mapping each
// file once and serving subsequent reads from the mapping avoids the
// read-syscall-per-visit cost.
//
// Safety:
//   - Cached entries are revalidated by size and modtime on every Read, so
//     a file rewritten on disk (editor rename-replace included) is reloaded
//     instead of served from the stale mapping
//   - LRU eviction bounds the number of simultaneously mapped files
//   - Graceful fallback to os.ReadFile if mmap fails (empty files, odd FS)
//   - Thread-safe: RWMutex for lookups, exclusive lock for loads
package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

// FileCache serves file contents, memory-mapping files on first access.
type FileCache interface {
	// Read returns the contents of the file at path.
	//
	// A cached entry whose size or modtime no longer matches the file on
	// disk is reloaded transparently. The returned slice is a copy and
	// remains valid after eviction.
	Read(path string) ([]byte, error)

	// Invalidate drops the cached entry for path, if any. The next Read
	// reloads from disk.
	Invalidate(path string)

	// Purge drops every cached entry.
	Purge()

	// Size returns the number of currently cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close unmaps all files and releases resources.
	Close() error
}

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles is the maximum number of files kept mapped at once.
	// Older entries are evicted (unmapped) LRU-first.
	MaxFiles int

	// Logger for warnings. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns defaults suitable for exploring large
// installed packages (a few thousand source files).
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles: 4096,
	}
}

// FileCacheStats tracks cache performance metrics.
type FileCacheStats struct {
	// Hits is the number of reads served from an existing mapping.
	Hits int64

	// Misses is the number of reads that had to load the file.
	Misses int64

	// MmapFailures counts loads that fell back to os.ReadFile.
	MmapFailures int64
}

// mappedFile is one cached file. Data is nil for fallback entries, whose
// contents live in fallback instead. Size and modTime snapshot the file's
// metadata at load time for staleness checks.
type mappedFile struct {
	file     *os.File
	data     mmap.MMap
	fallback []byte
	size     int64
	modTime  time.Time
}

func (m *mappedFile) bytes() []byte {
	if m.data != nil {
		return m.data
	}
	return m.fallback
}

// stale reports whether the file on disk no longer matches the snapshot
// this entry was loaded from.
func (m *mappedFile) stale(info os.FileInfo) bool {
	return info.Size() != m.size || !info.ModTime().Equal(m.modTime)
}

func (m *mappedFile) release() {
	if m.data != nil {
		_ = m.data.Unmap()
	}
	if m.file != nil {
		_ = m.file.Close()
	}
}

type fileCache struct {
	mutex  sync.RWMutex
	files  *lru.Cache[string, *mappedFile]
	logger *slog.Logger
	stats  FileCacheStats
	closed bool
}

// NewFileCache creates a FileCache with the given config (nil for defaults).
func NewFileCache(config *FileCacheConfig) (FileCache, error) {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxFiles := config.MaxFiles
	if maxFiles <= 0 {
		maxFiles = DefaultFileCacheConfig().MaxFiles
	}

	files, err := lru.NewWithEvict[string, *mappedFile](maxFiles, func(path string, mf *mappedFile) {
		mf.release()
	})
	if err != nil {
		return nil, fmt.Errorf("creating file cache: %w", err)
	}

	return &fileCache{files: files, logger: logger}, nil
}

func (c *fileCache) Read(path string) ([]byte, error) {
	c.mutex.RLock()
	if c.closed {
		c.mutex.RUnlock()
		return nil, fmt.Errorf("file cache is closed")
	}
	if mf, ok := c.files.Get(path); ok {
		if info, err := os.Stat(path); err == nil && !mf.stale(info) {
			data := append([]byte(nil), mf.bytes()...)
			c.mutex.RUnlock()

			c.mutex.Lock()
			c.stats.Hits++
			c.mutex.Unlock()
			return data, nil
		}
	}
	c.mutex.RUnlock()

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return nil, fmt.Errorf("file cache is closed")
	}

	// Double-check: another goroutine may have (re)loaded it.
	if mf, ok := c.files.Get(path); ok {
		if info, err := os.Stat(path); err == nil && !mf.stale(info) {
			c.stats.Hits++
			return append([]byte(nil), mf.bytes()...), nil
		}
		// Stale or unstattable entry: drop the mapping and reload.
		c.files.Remove(path)
	}

	mf, err := c.load(path)
	if err != nil {
		return nil, err
	}
	c.stats.Misses++
	c.files.Add(path, mf)

	return append([]byte(nil), mf.bytes()...), nil
}

// load maps the file, falling back to a plain read when mmap fails.
func (c *fileCache) load(path string) (*mappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	// mmap of a zero-length file fails on most platforms.
	if info.Size() == 0 {
		_ = f.Close()
		return &mappedFile{fallback: []byte{}, modTime: info.ModTime()}, nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		c.stats.MmapFailures++
		c.logger.Warn("mmap failed, falling back to read", "path", path, "error", err)
		_ = f.Close()

		contents, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, rerr
		}
		return &mappedFile{fallback: contents, size: info.Size(), modTime: info.ModTime()}, nil
	}

	return &mappedFile{file: f, data: data, size: info.Size(), modTime: info.ModTime()}, nil
}

func (c *fileCache) Invalidate(path string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return
	}
	c.files.Remove(path)
}

func (c *fileCache) Purge() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return
	}
	c.files.Purge()
}

func (c *fileCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.files.Len()
}

func (c *fileCache) Stats() FileCacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.stats
}

func (c *fileCache) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	// Purge triggers the eviction callback for every entry.
	c.files.Purge()
	return nil
}

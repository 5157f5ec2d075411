package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Manager manages tree-sitter parsers with lazy initialization and
// thread-safe concurrent access.
//
// Memory Management:
// - Parser pools are created lazily on first use per language
// - Manager owns parser pool instances and must be closed via Close()
// - Callers own Tree instances and must call tree.Close() after use
//
// Thread Safety:
// - Uses parser pools for true concurrent parsing
// - Multiple goroutines can parse the same language simultaneously
// - Pool creation is synchronized with write locks
//
// Example:
//
//	logger := util.NewLogger(util.DefaultLoggerConfig())
//	manager := NewManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.Parse([]byte("x = 1"), LanguagePython)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tree.Close()
type Manager struct {
	// pools stores parser pools per language (lazily initialized)
	pools map[Language]*parserPool

	// mutex provides thread-safe access to pools map and stats
	mutex sync.RWMutex

	// logger for structured logging
	logger *slog.Logger

	// stats tracks parser usage statistics
	stats struct {
		parsersCreated int
		parsesCalled   int
	}
}

// NewManager creates a new Manager instance.
//
// The returned manager must be closed via Close() to free resources.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		pools:  make(map[Language]*parserPool),
		logger: logger,
	}
}

// Parse parses source code using the specified language grammar.
//
// Returns a Tree that MUST be closed by the caller via tree.Close() to avoid
// memory leaks. Syntax errors do not fail the parse: tree-sitter produces a
// partial tree with error nodes, and callers decide how strict to be.
//
// Thread Safety:
// - Safe for concurrent use from multiple goroutines
// - Uses a parser pool to allow true concurrent parsing
func (m *Manager) Parse(source []byte, lang Language) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}

	// Increment parse counter (protected by mutex)
	m.mutex.Lock()
	m.stats.parsesCalled++
	m.mutex.Unlock()

	// Get or create pool for this language
	pool, err := m.getOrCreatePool(lang)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", lang, err)
	}

	// Acquire a parser from the pool
	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}

	// Parse the source code
	tree := parser.Parse(source, nil)

	// Release parser back to pool immediately
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser.Parse returned nil tree")
	}

	return tree, nil
}

// ParseFile is a convenience method that parses a file by detecting its
// language from the file path.
//
// Returns a Tree that MUST be closed by the caller via tree.Close().
func (m *Manager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}

	return m.Parse(source, lang)
}

// Close releases all parser pool resources.
//
// MUST be called when the Manager is no longer needed to avoid memory leaks.
// After Close(), the Manager cannot be used.
func (m *Manager) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.logger.Debug("closing parser manager",
		"parsers_created", m.stats.parsersCreated,
		"parses_called", m.stats.parsesCalled)

	// Close all parser pools
	for lang, pool := range m.pools {
		if pool != nil {
			pool.close()
			m.logger.Debug("closed parser pool", "language", lang.String())
		}
	}

	// Clear map
	m.pools = make(map[Language]*parserPool)

	return nil
}

// getOrCreatePool returns an existing parser pool or creates a new one.
// Thread-safe using double-checked locking pattern.
func (m *Manager) getOrCreatePool(lang Language) (*parserPool, error) {
	// Fast path: pool already exists (read lock)
	m.mutex.RLock()
	pool, exists := m.pools[lang]
	m.mutex.RUnlock()

	if exists {
		return pool, nil
	}

	// Slow path: create pool (write lock)
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Double-check: another goroutine may have created it
	if pool, exists = m.pools[lang]; exists {
		return pool, nil
	}

	// Get language pointer
	langPtr, err := m.GetLanguagePointer(lang)
	if err != nil {
		return nil, err
	}

	// Create new parser pool with CPU-aware sizing
	poolSize := getDefaultPoolSize()
	pool = newParserPool(lang, langPtr, poolSize, m.logger)
	m.pools[lang] = pool

	m.logger.Debug("created new parser pool",
		"language", lang.String(),
		"maxSize", poolSize)

	return pool, nil
}

// GetLanguagePointer returns the unsafe.Pointer to the tree-sitter language grammar.
func (m *Manager) GetLanguagePointer(lang Language) (unsafe.Pointer, error) {
	switch lang {
	case LanguagePython:
		return ts_python.Language(), nil

	default:
		return nil, fmt.Errorf("unsupported language: %s", lang.String())
	}
}

// GetStats returns parser usage statistics.
func (m *Manager) GetStats() Stats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	// Count total parsers created across all pools
	totalParsers := 0
	for _, pool := range m.pools {
		totalParsers += pool.getCreatedCount()
	}

	return Stats{
		ParsersCreated: totalParsers,
		ParsesCalled:   m.stats.parsesCalled,
	}
}

// Stats contains parser usage statistics.
type Stats struct {
	// ParsersCreated is the total number of parser instances created
	ParsersCreated int

	// ParsesCalled is the total number of Parse() calls
	ParsesCalled int
}

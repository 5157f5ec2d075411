package explorer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/modpeek/pkg/extractor"
	"github.com/gnana997/modpeek/pkg/util"
)

// packageMarker is the file whose presence makes a directory a package.
const packageMarker = "__init__.py"

// LiveIntrospector is an optional escape hatch for embedders that can
// inspect a live environment. It is consulted only after filesystem
// resolution fails; the explorer itself never requires one.
type LiveIntrospector interface {
	Introspect(modulePath string, maxDepth int) (*ModuleRecord, bool)
}

// Config controls Explorer construction.
type Config struct {
	// Roots is the ordered list of search roots. Earlier entries win.
	Roots []string

	// CacheSize enables the record cache when positive. Cached records
	// are keyed by dotted path and depth, and the cache is purged whenever
	// the root list changes.
	CacheSize int

	// Introspector is the optional live fallback, usually nil.
	Introspector LiveIntrospector

	// Logger for debug output. If nil, uses slog.Default().
	Logger *slog.Logger
}

// Explorer resolves dotted module paths and builds ModuleRecord trees.
//
// Safe for concurrent use. The root list is mutable under a mutex so the
// acquisition scope can temporarily prepend a downloaded package's import
// root.
//
// Example:
//
//	exp, err := explorer.New(ext, files, &explorer.Config{
//	    Roots: []string{"/usr/lib/python3.12/site-packages"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	record, err := exp.Explore("requests.adapters", 2)
type Explorer struct {
	extractor    *extractor.Extractor
	files        util.FileCache
	introspector LiveIntrospector
	logger       *slog.Logger

	mutex sync.Mutex
	roots []string
	cache *lru.Cache[string, *ModuleRecord]
}

// New creates an Explorer over the given extractor and file cache.
func New(ext *extractor.Extractor, files util.FileCache, config *Config) (*Explorer, error) {
	if config == nil {
		config = &Config{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Explorer{
		extractor:    ext,
		files:        files,
		introspector: config.Introspector,
		logger:       logger,
		roots:        append([]string(nil), config.Roots...),
	}

	if config.CacheSize > 0 {
		cache, err := lru.New[string, *ModuleRecord](config.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating record cache: %w", err)
		}
		e.cache = cache
	}

	return e, nil
}

// Roots returns a copy of the current search-root list.
func (e *Explorer) Roots() []string {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return append([]string(nil), e.roots...)
}

// PrependRoot puts root at the front of the search list and returns a
// restore function that removes it again. Both directions purge the
// record cache, since cached trees may depend on the old list.
func (e *Explorer) PrependRoot(root string) func() {
	e.mutex.Lock()
	e.roots = append([]string{root}, e.roots...)
	if e.cache != nil {
		e.cache.Purge()
	}
	e.mutex.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mutex.Lock()
			defer e.mutex.Unlock()
			for i, r := range e.roots {
				if r == root {
					e.roots = append(e.roots[:i], e.roots[i+1:]...)
					break
				}
			}
			if e.cache != nil {
				e.cache.Purge()
			}
		})
	}
}

// Explore resolves modulePath against the search roots and builds its
// declaration tree down to maxDepth levels of submodules. Depth 0 returns
// the root's declarations with no submodules.
//
// A parse failure in the requested module itself is an error; parse
// failures in submodules drop the affected child and keep the rest of the
// tree.
func (e *Explorer) Explore(modulePath string, maxDepth int) (*ModuleRecord, error) {
	if modulePath == "" {
		return nil, fmt.Errorf("empty module path")
	}
	if maxDepth < 0 {
		maxDepth = 0
	}

	cacheKey := modulePath + "#" + strconv.Itoa(maxDepth)
	if e.cache != nil {
		if record, ok := e.cache.Get(cacheKey); ok {
			return record, nil
		}
	}

	fsPath, kind, ok := e.locate(modulePath)
	if !ok {
		if e.introspector != nil {
			if record, found := e.introspector.Introspect(modulePath, maxDepth); found {
				return record, nil
			}
		}
		return nil, &ModuleNotFoundError{Module: modulePath}
	}

	segments := strings.Split(modulePath, ".")
	record, err := e.build(segments[len(segments)-1], fsPath, kind, maxDepth)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		e.cache.Add(cacheKey, record)
	}
	return record, nil
}

// locate walks the dotted path segment by segment under each root in
// order. Every intermediate segment must be a marked package directory;
// the final segment may also be a plain .py file. A root that fails at
// any segment is abandoned and the next root tried.
func (e *Explorer) locate(modulePath string) (string, Kind, bool) {
	segments := strings.Split(modulePath, ".")

	for _, root := range e.Roots() {
		current := root
		matched := true

		for i, seg := range segments {
			last := i == len(segments)-1

			dir := filepath.Join(current, seg)
			if isPackageDir(dir) {
				current = dir
				continue
			}

			if last {
				file := filepath.Join(current, seg+".py")
				if isRegularFile(file) {
					return file, KindModule, true
				}
			}

			matched = false
			break
		}

		if matched {
			return current, KindPackage, true
		}
	}

	return "", "", false
}

// build constructs the record for one resolved node and recurses into its
// children while the depth budget lasts.
func (e *Explorer) build(name, fsPath string, kind Kind, depth int) (*ModuleRecord, error) {
	record := &ModuleRecord{
		Name:       name,
		Path:       fsPath,
		Kind:       kind,
		Submodules: make(map[string]*ModuleRecord),
	}

	declFile := ""
	switch kind {
	case KindModule:
		declFile = fsPath
	case KindPackage:
		declFile = filepath.Join(fsPath, packageMarker)
	case KindNamespace:
		// Nothing to parse.
	}

	if declFile != "" {
		source, err := e.files.Read(declFile)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", declFile, err)
		}
		decls, err := e.extractor.ExtractSource(source, declFile)
		if err != nil {
			// Callers drop broken submodules; build propagates either way
			// and Explore turns a root failure into the caller's error.
			return nil, err
		}
		record.Functions = decls.Functions
		record.Classes = decls.Classes
		record.Constants = decls.Constants
		record.Exports = decls.Exports
		record.Signatures = decls.Signatures
		record.ImportEdges = decls.ImportEdges
	}

	if kind == KindModule || depth <= 0 {
		return record, nil
	}

	entries, err := os.ReadDir(fsPath)
	if err != nil {
		return record, nil
	}

	names := make([]string, 0, len(entries))
	byName := make(map[string]os.DirEntry, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
		byName[entry.Name()] = entry
	}
	sort.Strings(names)

	for _, entryName := range names {
		entry := byName[entryName]
		if strings.HasPrefix(entryName, "_") || strings.HasPrefix(entryName, ".") {
			continue
		}

		childName, childPath, childKind, ok := classifyChild(fsPath, entry)
		if !ok {
			continue
		}

		child, err := e.build(childName, childPath, childKind, depth-1)
		if err != nil {
			// Broken submodules degrade to absence, not failure.
			e.logger.Debug("skipping unparseable submodule",
				"path", childPath,
				"error", err)
			continue
		}
		record.Submodules[childName] = child
	}

	return record, nil
}

// classifyChild decides whether a directory entry is a submodule and of
// which kind. Marker-less directories count only when something parseable
// exists below them.
func classifyChild(parent string, entry os.DirEntry) (name, path string, kind Kind, ok bool) {
	entryName := entry.Name()
	entryPath := filepath.Join(parent, entryName)

	if entry.IsDir() {
		if isPackageDir(entryPath) {
			return entryName, entryPath, KindPackage, true
		}
		if containsPythonFile(entryPath) {
			return entryName, entryPath, KindNamespace, true
		}
		return "", "", "", false
	}

	if strings.HasSuffix(entryName, ".py") {
		return strings.TrimSuffix(entryName, ".py"), entryPath, KindModule, true
	}
	return "", "", "", false
}

func isPackageDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	return isRegularFile(filepath.Join(dir, packageMarker))
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// containsPythonFile probes a directory tree for any .py file.
func containsPythonFile(dir string) bool {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.py")
	return err == nil && len(matches) > 0
}

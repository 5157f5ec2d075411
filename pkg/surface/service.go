package surface

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/gnana997/modpeek/pkg/explorer"
	"github.com/gnana997/modpeek/pkg/fetcher"
	"github.com/gnana997/modpeek/pkg/resolver"
)

// Exploration depths used by the signature search. The exact module is
// explored shallowly; the root-package fallback goes deeper because the
// symbol may live anywhere in the tree.
const (
	moduleSearchDepth = 2
	rootSearchDepth   = 3
)

// Service ties explorer, resolver and fetcher together behind the two
// public operations: module trees and object signatures.
//
// Safe for concurrent use. Package acquisition is serialized per package
// key so concurrent lookups of the same missing package download it once
// at a time.
type Service struct {
	explorer *explorer.Explorer
	resolver *resolver.Resolver
	fetcher  *fetcher.Client
	logger   *slog.Logger

	mutex     sync.Mutex
	acquiring map[string]*sync.Mutex
}

// New creates a Service. The fetcher may be nil to disable acquisition
// entirely (missing modules then fail without a retry).
func New(exp *explorer.Explorer, res *resolver.Resolver, fc *fetcher.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		explorer:  exp,
		resolver:  res,
		fetcher:   fc,
		logger:    logger,
		acquiring: make(map[string]*sync.Mutex),
	}
}

// Tree explores the module named by rawSpec down to maxDepth.
//
// When the module is not found locally and is not part of the standard
// library, the package is acquired from the index and exploration retried
// once inside the acquisition scope.
func (s *Service) Tree(ctx context.Context, rawSpec string, maxDepth int) (*explorer.ModuleRecord, error) {
	if strings.Contains(rawSpec, ":") && !strings.Contains(rawSpec, "::") {
		return nil, fmt.Errorf("invalid module path %q: use a signature lookup for specific objects", rawSpec)
	}

	spec, err := ParseSpec(rawSpec)
	if err != nil {
		return nil, err
	}

	record, err := s.explorer.Explore(spec.ModulePath, maxDepth)
	if err == nil {
		return record, nil
	}

	var notFound *explorer.ModuleNotFoundError
	if !errors.As(err, &notFound) || IsStdlibModule(spec.ModulePath) || s.fetcher == nil {
		return nil, err
	}

	acquireErr := s.withAcquired(ctx, spec.AcquireSpec(), func() error {
		record, err = s.explorer.Explore(spec.ModulePath, maxDepth)
		return err
	})
	if acquireErr != nil {
		return nil, acquireErr
	}
	return record, err
}

// Signature finds the signature of the object named by rawSpec, either as
// "module:object" or with the object as the last dotted segment.
//
// Every miss, including acquisition failure, surfaces as *SymbolNotFound.
func (s *Service) Signature(ctx context.Context, rawSpec string) (*explorer.Signature, error) {
	spec, err := ParseSpec(rawSpec)
	if err != nil {
		return nil, err
	}

	modulePath, object := spec.ModulePath, spec.Object
	if object == "" {
		dot := strings.LastIndex(modulePath, ".")
		if dot < 0 {
			return nil, &SymbolNotFound{Module: modulePath, Symbol: modulePath}
		}
		modulePath, object = modulePath[:dot], modulePath[dot+1:]
	}

	if sig, ok := s.findSignature(modulePath, object); ok {
		return sig, nil
	}

	miss := &SymbolNotFound{Module: modulePath, Symbol: object}
	if IsStdlibModule(modulePath) || s.fetcher == nil {
		return nil, miss
	}

	var sig *explorer.Signature
	acquireErr := s.withAcquired(ctx, spec.AcquireSpec(), func() error {
		if found, ok := s.findSignature(modulePath, object); ok {
			sig = found
		}
		return nil
	})
	if acquireErr != nil {
		s.logger.Debug("signature acquisition failed",
			"module", modulePath,
			"error", acquireErr)
		return nil, miss
	}
	if sig != nil {
		return sig, nil
	}
	return nil, miss
}

// findSignature runs the escalation ladder against the local search
// roots: exact module, exports-guided tree search, root-package deep
// search, then import-chain resolution.
func (s *Service) findSignature(modulePath, object string) (*explorer.Signature, bool) {
	// C-implemented modules have no source to parse.
	if IsBuiltinModule(modulePath) {
		return nil, false
	}

	if record, err := s.explorer.Explore(modulePath, moduleSearchDepth); err == nil {
		if sig, ok := record.Signatures[object]; ok {
			return &sig, true
		}
		if containsName(record.Exports, object) {
			if sig := findInTree(record, object); sig != nil {
				return sig, true
			}
		}
	}

	if strings.Contains(modulePath, ".") {
		root := baseModule(modulePath)
		if record, err := s.explorer.Explore(root, rootSearchDepth); err == nil {
			if sig := findInTree(record, object); sig != nil {
				return sig, true
			}
		}
	}

	if sig, ok := s.resolver.Resolve(modulePath, object); ok {
		return sig, true
	}
	return nil, false
}

// findInTree searches a record and its submodules depth-first, in sorted
// submodule order for determinism.
func findInTree(record *explorer.ModuleRecord, object string) *explorer.Signature {
	if sig, ok := record.Signatures[object]; ok {
		return &sig
	}

	names := make([]string, 0, len(record.Submodules))
	for name := range record.Submodules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if sig := findInTree(record.Submodules[name], object); sig != nil {
			return sig
		}
	}
	return nil
}

// withAcquired downloads the package, prepends its import root to the
// search roots, runs fn, and tears everything down again. The scratch
// dir and the temporary root are removed on every exit path.
func (s *Service) withAcquired(ctx context.Context, acquireSpec string, fn func() error) error {
	lock := s.acquireLock(acquireSpec)
	lock.Lock()
	defer lock.Unlock()

	acquired, err := s.fetcher.Acquire(ctx, acquireSpec)
	if err != nil {
		name, _ := fetcher.ParseSpec(acquireSpec)
		return &MissingDependencyError{Package: name, Err: err}
	}
	defer func() {
		if err := acquired.Cleanup(); err != nil {
			s.logger.Warn("failed to remove acquisition scratch dir", "error", err)
		}
	}()

	restore := s.explorer.PrependRoot(acquired.ImportRoot)
	defer restore()

	return fn()
}

// acquireLock returns the mutex serializing acquisition of one package.
func (s *Service) acquireLock(key string) *sync.Mutex {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	lock, ok := s.acquiring[key]
	if !ok {
		lock = &sync.Mutex{}
		s.acquiring[key] = lock
	}
	return lock
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Package resolver follows import chains to find the signature behind a
// re-exported symbol.
//
// A package's __init__.py often only re-exports: `from .main import App`.
// The declaration parser sees the import edge but not App's parameters.
// The resolver walks such edges across modules, re-exploring each target,
// until it finds a declared signature or runs out of edges. A visited set
// bounds the walk, so mutual re-export cycles end in a quiet miss rather
// than an infinite loop.
package resolver

import (
	"log/slog"
	"strings"

	"github.com/gnana997/modpeek/pkg/explorer"
)

// Exploring is the slice of the explorer the resolver needs.
type Exploring interface {
	Explore(modulePath string, maxDepth int) (*explorer.ModuleRecord, error)
}

// Resolver resolves symbols to signatures across module boundaries.
type Resolver struct {
	explorer Exploring
	logger   *slog.Logger
}

// New creates a Resolver on top of the given explorer.
func New(exp Exploring, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{explorer: exp, logger: logger}
}

// Resolve finds the signature for symbol as seen from modulePath.
//
// The boolean result is false when no signature could be found; that is a
// soft outcome, not an error. Unresolvable modules along the chain are
// treated the same way.
func (r *Resolver) Resolve(modulePath, symbol string) (*explorer.Signature, bool) {
	visited := make(map[string]bool)
	return r.resolve(modulePath, symbol, visited)
}

func (r *Resolver) resolve(modulePath, symbol string, visited map[string]bool) (*explorer.Signature, bool) {
	key := modulePath + ":" + symbol
	if visited[key] {
		r.logger.Debug("import chain cycle", "module", modulePath, "symbol", symbol)
		return nil, false
	}
	visited[key] = true

	record, err := r.explorer.Explore(modulePath, 0)
	if err != nil {
		return nil, false
	}

	if sig, ok := findDeclared(record, symbol); ok {
		return sig, true
	}

	edge, ok := record.ImportEdges[symbol]
	if !ok {
		return nil, false
	}

	target := edgeTarget(modulePath, record.Kind, edge)
	if target == "" {
		return nil, false
	}
	return r.resolve(target, edge.Name, visited)
}

// findDeclared searches one module's own declarations for a callable
// signature.
//
// Lookup order: direct signature (functions and class constructors share
// the flat key space), a declared class's __call__ operator, then the
// decorator naming convention (`route` implemented by a class named
// `RouteDecorator`).
func findDeclared(record *explorer.ModuleRecord, symbol string) (*explorer.Signature, bool) {
	if sig, ok := record.Signatures[symbol]; ok {
		return &sig, true
	}

	if containsName(record.Classes, symbol) {
		if sig, ok := record.Signatures[symbol+".__call__"]; ok {
			return &sig, true
		}
		// Declared class without an explicit __init__: callable with the
		// default constructor.
		return &explorer.Signature{Name: symbol}, true
	}

	decorator := capitalize(symbol) + "Decorator"
	if containsName(record.Classes, decorator) {
		if sig, ok := record.Signatures[decorator+".__call__"]; ok {
			return &sig, true
		}
		if sig, ok := record.Signatures[decorator]; ok {
			return &sig, true
		}
	}

	return nil, false
}

// edgeTarget computes the dotted module path an import edge points at.
//
// Relative origins are resolved against the importing module's package:
// one leading dot means the package itself, each extra dot climbs one
// level. Absolute origins are used verbatim, and bare `import x` edges
// target the imported module itself.
func edgeTarget(modulePath string, kind explorer.Kind, edge explorer.ImportEdge) string {
	if !edge.Relative {
		if edge.Origin != "" {
			return edge.Origin
		}
		return edge.Name
	}

	dots := 0
	for dots < len(edge.Origin) && edge.Origin[dots] == '.' {
		dots++
	}
	remainder := edge.Origin[dots:]

	// The package a file module belongs to is its parent path; a package's
	// own __init__.py already sits at the package path.
	base := strings.Split(modulePath, ".")
	if kind == explorer.KindModule && len(base) > 0 {
		base = base[:len(base)-1]
	}

	// Each dot past the first climbs out of one package level.
	climb := dots - 1
	if climb > len(base) {
		return ""
	}
	base = base[:len(base)-climb]

	if remainder != "" {
		base = append(base, strings.Split(remainder, ".")...)
	}
	if len(base) == 0 {
		return ""
	}
	return strings.Join(base, ".")
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func capitalize(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

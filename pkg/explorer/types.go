// Package explorer resolves dotted module paths against a list of search
// roots and builds bounded-depth trees of module declarations.
//
// Resolution is purely filesystem-based: a dotted path like "pkg.sub"
// matches real files and directories under the configured roots, and each
// resolved file is handed to the extractor. Nothing is ever imported or
// executed.
package explorer

import "github.com/gnana997/modpeek/pkg/extractor"

// Signature and ImportEdge are re-exported so tree consumers only need
// this package.
type (
	Signature  = extractor.Signature
	ImportEdge = extractor.ImportEdge
)

// Kind classifies how a module exists on disk.
type Kind string

const (
	// KindModule is a plain .py file.
	KindModule Kind = "module"

	// KindPackage is a directory with an __init__.py marker.
	KindPackage Kind = "package"

	// KindNamespace is a marker-less directory that still contains Python
	// files somewhere below it (PEP 420 style).
	KindNamespace Kind = "namespace"
)

// ModuleRecord is one node of an explored module tree.
//
// Name collections are sorted and visibility-filtered (leading underscore
// excluded unless __all__ lists the name). Signatures and ImportEdges are
// never filtered; the import-chain resolver depends on seeing private and
// re-exported entries.
//
// Records returned by Explore may be shared via the record cache and must
// be treated as read-only.
type ModuleRecord struct {
	// Name is the last dotted-path segment ("json" for "encoding.json").
	Name string `json:"name"`

	// Path is the filesystem location backing this node: the .py file for
	// modules, the directory for packages and namespaces.
	Path string `json:"path"`

	Kind Kind `json:"kind"`

	Functions []string `json:"functions"`
	Classes   []string `json:"classes"`
	Constants []string `json:"constants"`

	// Exports is the __all__ allowlist of the defining file, nil when the
	// file has none. Namespace nodes never have one.
	Exports []string `json:"exports,omitempty"`

	Signatures  map[string]Signature  `json:"signatures,omitempty"`
	ImportEdges map[string]ImportEdge `json:"import_edges,omitempty"`

	// Submodules maps child segment names to their records. Empty at the
	// depth boundary.
	Submodules map[string]*ModuleRecord `json:"submodules,omitempty"`
}

// ModuleNotFoundError reports a dotted path that matched no search root.
type ModuleNotFoundError struct {
	Module string
}

func (e *ModuleNotFoundError) Error() string {
	return "module not found: " + e.Module
}

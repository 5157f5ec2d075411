// Package extractor turns one Python source file into its top-level
// declarations: functions, classes, constants, import edges, and the
// __all__ export allowlist.
//
// Extraction is purely static - the file is parsed with tree-sitter, never
// executed. Signatures are recorded for every callable (private ones
// included) because import-chain resolution may need them; visibility
// filtering applies only to the name collections.
package extractor

// ModuleDecls contains everything extracted from a single source file.
type ModuleDecls struct {
	// Functions, Classes and Constants hold public top-level names,
	// sorted. A name is public when it has no leading underscore, or when
	// Exports lists it (Exports is authoritative when present).
	Functions []string `json:"functions"`
	Classes   []string `json:"classes"`
	Constants []string `json:"constants"`

	// Exports is the __all__ allowlist, nil when the file has none.
	Exports []string `json:"exports,omitempty"`

	// Signatures maps callable names to their formatted signatures.
	// Keys include plain function names, class names (constructor),
	// and qualified "Class.method" entries ("Class.__call__" included).
	// Export filtering never removes entries here.
	Signatures map[string]Signature `json:"signatures,omitempty"`

	// ImportEdges maps local binding names to the import that created
	// them. Export filtering never removes entries here either.
	ImportEdges map[string]ImportEdge `json:"import_edges,omitempty"`
}

// Signature is a structural, language-agnostic rendering of a callable.
type Signature struct {
	Name string `json:"name"`

	// Parameters is the formatted parameter list, preserving `/` and `*`
	// separators, star prefixes, annotations and defaults.
	// Example: "a, b: int, *args, c=1, **kwargs"
	Parameters string `json:"parameters"`

	// ReturnType is the formatted return annotation, empty when absent.
	ReturnType string `json:"return_type,omitempty"`
}

// ImportEdge records where a locally bound name was imported from.
type ImportEdge struct {
	// Origin is the module specifier. Dotted path for absolute imports
	// (possibly with leading dots for relative ones), empty for bare
	// "import x" statements.
	Origin string `json:"origin,omitempty"`

	// Name is the imported name before aliasing ("BaseModel" in
	// "from .main import BaseModel as Model").
	Name string `json:"name"`

	// Alias is the local binding name ("Model" above; equals Name when
	// no alias was given).
	Alias string `json:"alias"`

	// Relative is true for "from . import ..." style edges.
	Relative bool `json:"relative"`
}

// ParseError reports a file whose source could not be parsed.
//
// The tree builder swallows it for non-root submodules (partial results
// over total failure) and propagates it for the explicitly requested root.
type ParseError struct {
	Path string
}

func (e *ParseError) Error() string {
	return "invalid syntax in " + e.Path
}

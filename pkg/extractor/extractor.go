package extractor

import (
	"log/slog"
	"sort"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/modpeek/pkg/parser"
)

// Extractor parses Python source files into ModuleDecls.
//
// Safe for concurrent use: it keeps no per-file state and the underlying
// parser manager pools parsers per language.
type Extractor struct {
	parsers *parser.Manager
	logger  *slog.Logger
}

// New creates an Extractor backed by the given parser manager.
// Logger can be nil (falls back to slog.Default()).
func New(pm *parser.Manager, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{parsers: pm, logger: logger}
}

// ExtractSource extracts declarations from source text. The path is used
// only for error reporting and language detection defaults to Python.
func (e *Extractor) ExtractSource(source []byte, path string) (*ModuleDecls, error) {
	tree, err := e.parsers.Parse(source, parser.LanguagePython)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, &ParseError{Path: path}
	}

	decls := &ModuleDecls{
		Signatures:  make(map[string]Signature),
		ImportEdges: make(map[string]ImportEdge),
	}
	raw := &rawNames{}

	e.collectBlock(root, source, decls, raw, false)
	finalize(decls, raw)

	return decls, nil
}

// rawNames accumulates names before the __all__ filter is applied.
type rawNames struct {
	functions []string
	classes   []string
	constants []string
}

// collectBlock walks the direct statements of a module or block node.
//
// inConditional marks that we already descended into one if/elif/else
// level; nested conditionals (and function bodies) are not entered.
func (e *Extractor) collectBlock(block *ts.Node, source []byte, decls *ModuleDecls, raw *rawNames, inConditional bool) {
	for i := uint(0); i < block.NamedChildCount(); i++ {
		stmt := block.NamedChild(i)
		if stmt == nil {
			continue
		}
		e.collectStatement(stmt, source, decls, raw, inConditional)
	}
}

func (e *Extractor) collectStatement(stmt *ts.Node, source []byte, decls *ModuleDecls, raw *rawNames, inConditional bool) {
	switch stmt.GrammarName() {
	case "function_definition":
		e.collectFunction(stmt, source, decls, raw)

	case "class_definition":
		e.collectClass(stmt, source, decls, raw)

	case "decorated_definition":
		if def := stmt.ChildByFieldName("definition"); def != nil {
			e.collectStatement(def, source, decls, raw, inConditional)
		}

	case "expression_statement":
		if inner := stmt.NamedChild(0); inner != nil && inner.GrammarName() == "assignment" {
			e.collectAssignment(inner, source, decls, raw)
		}

	case "import_statement":
		e.collectImport(stmt, source, decls)

	case "import_from_statement":
		e.collectImportFrom(stmt, source, decls)

	case "if_statement":
		if inConditional {
			return
		}
		// Descend one level into conditional blocks so declarations behind
		// TYPE_CHECKING-style guards are still discovered.
		if body := stmt.ChildByFieldName("consequence"); body != nil {
			e.collectBlock(body, source, decls, raw, true)
		}
		for i := uint(0); i < stmt.NamedChildCount(); i++ {
			clause := stmt.NamedChild(i)
			if clause == nil {
				continue
			}
			switch clause.GrammarName() {
			case "elif_clause":
				if body := clause.ChildByFieldName("consequence"); body != nil {
					e.collectBlock(body, source, decls, raw, true)
				}
			case "else_clause":
				if body := clause.ChildByFieldName("body"); body != nil {
					e.collectBlock(body, source, decls, raw, true)
				}
			}
		}
	}
}

// collectFunction records a top-level function declaration.
func (e *Extractor) collectFunction(fn *ts.Node, source []byte, decls *ModuleDecls, raw *rawNames) {
	nameNode := fn.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Utf8Text(source)

	sig := Signature{
		Name:       name,
		Parameters: formatParameters(fn.ChildByFieldName("parameters"), source, false),
	}
	if ret := fn.ChildByFieldName("return_type"); ret != nil {
		sig.ReturnType = formatAnnotation(ret, source)
	}
	decls.Signatures[name] = sig
	raw.functions = append(raw.functions, name)
}

// collectClass records a class declaration, its constructor signature and
// qualified method signatures.
func (e *Extractor) collectClass(cls *ts.Node, source []byte, decls *ModuleDecls, raw *rawNames) {
	nameNode := cls.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	className := nameNode.Utf8Text(source)
	raw.classes = append(raw.classes, className)

	body := cls.ChildByFieldName("body")
	if body == nil {
		return
	}

	for i := uint(0); i < body.NamedChildCount(); i++ {
		stmt := body.NamedChild(i)
		if stmt == nil {
			continue
		}
		if stmt.GrammarName() == "decorated_definition" {
			stmt = stmt.ChildByFieldName("definition")
			if stmt == nil {
				continue
			}
		}
		if stmt.GrammarName() != "function_definition" {
			continue
		}

		methodNode := stmt.ChildByFieldName("name")
		if methodNode == nil {
			continue
		}
		methodName := methodNode.Utf8Text(source)

		sig := Signature{
			Name:       methodName,
			Parameters: formatParameters(stmt.ChildByFieldName("parameters"), source, true),
		}
		if ret := stmt.ChildByFieldName("return_type"); ret != nil {
			sig.ReturnType = formatAnnotation(ret, source)
		}

		decls.Signatures[className+"."+methodName] = sig

		// The constructor doubles as the class's own signature.
		if methodName == "__init__" {
			decls.Signatures[className] = Signature{
				Name:       className,
				Parameters: sig.Parameters,
			}
		}
	}
}

// collectAssignment picks up __all__ allowlists and uppercase constants.
func (e *Extractor) collectAssignment(assign *ts.Node, source []byte, decls *ModuleDecls, raw *rawNames) {
	left := assign.ChildByFieldName("left")
	if left == nil || left.GrammarName() != "identifier" {
		return
	}
	name := left.Utf8Text(source)

	if name == "__all__" {
		right := assign.ChildByFieldName("right")
		if right == nil || right.GrammarName() != "list" {
			return
		}
		var exports []string
		for i := uint(0); i < right.NamedChildCount(); i++ {
			elt := right.NamedChild(i)
			if elt != nil && elt.GrammarName() == "string" {
				exports = append(exports, stringContent(elt, source))
			}
		}
		if len(exports) > 0 {
			decls.Exports = exports
		}
		return
	}

	if isConstantName(name) {
		raw.constants = append(raw.constants, name)
	}
}

// isConstantName reports whether name is an all-uppercase constant name
// (underscores and digits allowed). Privacy is decided later: __all__ may
// export an underscore-prefixed constant.
func isConstantName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r != '_' && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return strings.ToLower(name) != name
}

// stringContent returns the inner text of a string literal node.
func stringContent(str *ts.Node, source []byte) string {
	for i := uint(0); i < str.NamedChildCount(); i++ {
		child := str.NamedChild(i)
		if child != nil && child.GrammarName() == "string_content" {
			return child.Utf8Text(source)
		}
	}
	return ""
}

// finalize applies visibility rules to the name collections and sorts them
// for deterministic output. When __all__ is present it is authoritative
// (underscore-prefixed names it lists stay in); otherwise the leading
// underscore marks a name private. Signatures and import edges are left
// untouched so the import-chain resolver can still see them.
func finalize(decls *ModuleDecls, raw *rawNames) {
	var allowed map[string]bool
	if decls.Exports != nil {
		allowed = make(map[string]bool, len(decls.Exports))
		for _, name := range decls.Exports {
			allowed[name] = true
		}
	}

	decls.Functions = filterNames(raw.functions, allowed)
	decls.Classes = filterNames(raw.classes, allowed)
	decls.Constants = filterNames(raw.constants, allowed)

	sort.Strings(decls.Functions)
	sort.Strings(decls.Classes)
	sort.Strings(decls.Constants)
}

// filterNames keeps visible names: members of the allowlist when one
// exists, public (no leading underscore) names otherwise. Duplicates from
// conditional redefinitions collapse to one entry.
func filterNames(names []string, allowed map[string]bool) []string {
	kept := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		if allowed != nil {
			if allowed[name] {
				kept = append(kept, name)
			}
		} else if !strings.HasPrefix(name, "_") {
			kept = append(kept, name)
		}
	}
	return kept
}

package extractor

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// collectImport records edges from "import x" and "import x as y"
// statements. Bare imports bind a module, not a symbol, so Origin stays
// empty and Name carries the dotted module path.
func (e *Extractor) collectImport(stmt *ts.Node, source []byte, decls *ModuleDecls) {
	for i := uint(0); i < stmt.NamedChildCount(); i++ {
		item := stmt.NamedChild(i)
		if item == nil {
			continue
		}

		switch item.GrammarName() {
		case "dotted_name":
			name := item.Utf8Text(source)
			// "import a.b" binds "a" locally, but keeping the full dotted
			// path lets the resolver follow the module itself.
			decls.ImportEdges[name] = ImportEdge{
				Name:  name,
				Alias: name,
			}

		case "aliased_import":
			nameNode := item.ChildByFieldName("name")
			aliasNode := item.ChildByFieldName("alias")
			if nameNode == nil || aliasNode == nil {
				continue
			}
			name := nameNode.Utf8Text(source)
			alias := aliasNode.Utf8Text(source)
			decls.ImportEdges[alias] = ImportEdge{
				Name:  name,
				Alias: alias,
			}
		}
	}
}

// collectImportFrom records edges from "from m import a, b as c"
// statements, including relative forms like "from . import x".
func (e *Extractor) collectImportFrom(stmt *ts.Node, source []byte, decls *ModuleDecls) {
	moduleNode := stmt.ChildByFieldName("module_name")
	if moduleNode == nil {
		return
	}
	origin := moduleNode.Utf8Text(source)
	relative := strings.HasPrefix(origin, ".")

	for i := uint(0); i < stmt.NamedChildCount(); i++ {
		item := stmt.NamedChild(i)
		if item == nil || item.StartByte() == moduleNode.StartByte() {
			continue
		}

		switch item.GrammarName() {
		case "dotted_name", "identifier":
			name := item.Utf8Text(source)
			decls.ImportEdges[name] = ImportEdge{
				Origin:   origin,
				Name:     name,
				Alias:    name,
				Relative: relative,
			}

		case "aliased_import":
			nameNode := item.ChildByFieldName("name")
			aliasNode := item.ChildByFieldName("alias")
			if nameNode == nil || aliasNode == nil {
				continue
			}
			name := nameNode.Utf8Text(source)
			alias := aliasNode.Utf8Text(source)
			decls.ImportEdges[alias] = ImportEdge{
				Origin:   origin,
				Name:     name,
				Alias:    alias,
				Relative: relative,
			}

		case "wildcard_import":
			// "from m import *" binds nothing resolvable statically.
		}
	}
}

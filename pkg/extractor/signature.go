package extractor

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// maxDefaultLen bounds the rendered length of a default value. Longer
// expressions collapse to "..." so signatures stay one-line readable.
const maxDefaultLen = 20

// formatParameters renders a parameters node as a comma-joined list,
// preserving star prefixes and the `/` and `*` separators.
//
// stripSelf drops a leading bare self/cls parameter, used for methods so
// the rendered signature matches the caller's view.
func formatParameters(params *ts.Node, source []byte, stripSelf bool) string {
	if params == nil {
		return ""
	}

	var parts []string
	for i := uint(0); i < params.NamedChildCount(); i++ {
		param := params.NamedChild(i)
		if param == nil {
			continue
		}
		rendered := formatParameter(param, source)
		if rendered == "" {
			continue
		}
		if stripSelf && len(parts) == 0 && (rendered == "self" || rendered == "cls") {
			stripSelf = false
			continue
		}
		parts = append(parts, rendered)
	}

	return strings.Join(parts, ", ")
}

// formatParameter renders a single parameter node.
func formatParameter(param *ts.Node, source []byte) string {
	switch param.GrammarName() {
	case "identifier":
		return param.Utf8Text(source)

	case "typed_parameter":
		// Child 0 is the name (possibly star-prefixed), the annotation
		// lives in the type field.
		name := ""
		if inner := param.NamedChild(0); inner != nil {
			name = formatParameter(inner, source)
		}
		if annot := param.ChildByFieldName("type"); annot != nil {
			return name + ": " + formatAnnotation(annot, source)
		}
		return name

	case "default_parameter":
		name := ""
		if n := param.ChildByFieldName("name"); n != nil {
			name = formatParameter(n, source)
		}
		if value := param.ChildByFieldName("value"); value != nil {
			return name + "=" + formatDefault(value, source)
		}
		return name

	case "typed_default_parameter":
		name := ""
		if n := param.ChildByFieldName("name"); n != nil {
			name = formatParameter(n, source)
		}
		if annot := param.ChildByFieldName("type"); annot != nil {
			name += ": " + formatAnnotation(annot, source)
		}
		if value := param.ChildByFieldName("value"); value != nil {
			name += "=" + formatDefault(value, source)
		}
		return name

	case "list_splat_pattern":
		if inner := param.NamedChild(0); inner != nil {
			return "*" + inner.Utf8Text(source)
		}
		return "*"

	case "dictionary_splat_pattern":
		if inner := param.NamedChild(0); inner != nil {
			return "**" + inner.Utf8Text(source)
		}
		return "**"

	case "keyword_separator":
		return "*"

	case "positional_separator":
		return "/"

	case "tuple_pattern":
		return param.Utf8Text(source)

	default:
		return param.Utf8Text(source)
	}
}

// formatAnnotation renders a type annotation node into a compact string.
//
// Known node shapes are rebuilt structurally (so whitespace and comments
// in the source never leak through); anything unrecognized collapses to
// "...".
func formatAnnotation(annot *ts.Node, source []byte) string {
	if annot == nil {
		return ""
	}

	switch annot.GrammarName() {
	case "type":
		// Wrapper node around the actual annotation expression.
		if inner := annot.NamedChild(0); inner != nil {
			return formatAnnotation(inner, source)
		}
		return "..."

	case "identifier":
		return annot.Utf8Text(source)

	case "none":
		return "None"

	case "true":
		return "True"

	case "false":
		return "False"

	case "string":
		// Forward references like "Model" render as their content.
		if content := stringContent(annot, source); content != "" {
			return content
		}
		return "'...'"

	case "ellipsis":
		return "..."

	case "attribute":
		obj := annot.ChildByFieldName("object")
		attr := annot.ChildByFieldName("attribute")
		if obj != nil && attr != nil {
			return formatAnnotation(obj, source) + "." + attr.Utf8Text(source)
		}
		return annot.Utf8Text(source)

	case "subscript", "generic_type":
		return formatSubscript(annot, source)

	case "binary_operator", "union_type":
		left := annot.ChildByFieldName("left")
		right := annot.ChildByFieldName("right")
		if left != nil && right != nil {
			return formatAnnotation(left, source) + " | " + formatAnnotation(right, source)
		}
		return "..."

	case "member_type":
		// X.Y inside a type context.
		if annot.NamedChildCount() == 2 {
			base := annot.NamedChild(0)
			member := annot.NamedChild(1)
			if base != nil && member != nil {
				return formatAnnotation(base, source) + "." + member.Utf8Text(source)
			}
		}
		return annot.Utf8Text(source)

	case "tuple", "expression_list":
		var parts []string
		for i := uint(0); i < annot.NamedChildCount(); i++ {
			if elt := annot.NamedChild(i); elt != nil {
				parts = append(parts, formatAnnotation(elt, source))
			}
		}
		return strings.Join(parts, ", ")

	case "list":
		var parts []string
		for i := uint(0); i < annot.NamedChildCount(); i++ {
			if elt := annot.NamedChild(i); elt != nil {
				parts = append(parts, formatAnnotation(elt, source))
			}
		}
		return "[" + strings.Join(parts, ", ") + "]"

	default:
		return "..."
	}
}

// formatSubscript renders Container[Args] annotations.
//
// Handles both the expression-context shape (subscript with value and
// subscript fields) and the type-context shape (generic_type with a base
// child and a type_parameter child).
func formatSubscript(annot *ts.Node, source []byte) string {
	if value := annot.ChildByFieldName("value"); value != nil {
		base := formatAnnotation(value, source)
		var args []string
		for i := uint(0); i < annot.NamedChildCount(); i++ {
			child := annot.NamedChild(i)
			if child == nil || child.StartByte() == value.StartByte() {
				continue
			}
			args = append(args, formatAnnotation(child, source))
		}
		return base + "[" + strings.Join(args, ", ") + "]"
	}

	// generic_type: first named child is the base, the rest sit inside a
	// type_parameter node.
	base := ""
	var args []string
	for i := uint(0); i < annot.NamedChildCount(); i++ {
		child := annot.NamedChild(i)
		if child == nil {
			continue
		}
		if i == 0 {
			base = formatAnnotation(child, source)
			continue
		}
		if child.GrammarName() == "type_parameter" {
			for j := uint(0); j < child.NamedChildCount(); j++ {
				if arg := child.NamedChild(j); arg != nil {
					args = append(args, formatAnnotation(arg, source))
				}
			}
		} else {
			args = append(args, formatAnnotation(child, source))
		}
	}
	return base + "[" + strings.Join(args, ", ") + "]"
}

// formatDefault renders a default value expression.
//
// Simple literals render as written; empty containers keep their literal
// form; anything else, or anything longer than maxDefaultLen, collapses
// to "...".
func formatDefault(value *ts.Node, source []byte) string {
	if value == nil {
		return ""
	}

	var rendered string
	switch value.GrammarName() {
	case "integer", "float", "string", "concatenated_string",
		"true", "false", "none", "identifier", "attribute":
		rendered = value.Utf8Text(source)

	case "unary_operator":
		// Negative numbers mostly.
		rendered = value.Utf8Text(source)

	case "list":
		if value.NamedChildCount() == 0 {
			return "[]"
		}
		rendered = value.Utf8Text(source)

	case "dictionary":
		if value.NamedChildCount() == 0 {
			return "{}"
		}
		rendered = value.Utf8Text(source)

	case "tuple":
		if value.NamedChildCount() == 0 {
			return "()"
		}
		rendered = value.Utf8Text(source)

	case "ellipsis":
		return "..."

	default:
		return "..."
	}

	if len(rendered) > maxDefaultLen || strings.ContainsAny(rendered, "\n\r") {
		return "..."
	}
	return rendered
}

// SplitParameters splits a formatted parameter list on top-level commas,
// ignoring commas nested inside brackets or string literals.
//
// It is the inverse of the join performed by signature formatting:
//
//	SplitParameters("a, b: int, *args, c=1, **kwargs")
//	// ["a", "b: int", "*args", "c=1", "**kwargs"]
func SplitParameters(params string) []string {
	if strings.TrimSpace(params) == "" {
		return nil
	}

	var (
		parts   []string
		depth   int
		quote   rune
		start   int
		escaped bool
	)

	for i, r := range params {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}

		switch r {
		case '\'', '"':
			quote = r
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(params[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(params[start:]))

	return parts
}

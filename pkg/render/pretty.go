package render

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gnana997/modpeek/pkg/explorer"
	"github.com/gnana997/modpeek/pkg/extractor"
)

// PrettyRenderer produces human-readable tree and signature output.
type PrettyRenderer struct {
	config DisplayConfig
}

// NewPrettyRenderer creates a renderer for the given display config.
func NewPrettyRenderer(config DisplayConfig) *PrettyRenderer {
	return &PrettyRenderer{config: config}
}

// paint applies a foreground color when colors are enabled.
func (r *PrettyRenderer) paint(text, hexColor string) string {
	if !r.config.UseColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor)).Render(text)
}

// Tree renders a module tree.
//
// Layout, for a package with one submodule:
//
//	📦 mypkg
//	├── 📜 __all__: run
//	├── ⚡ functions: run
//	└── 📦 extra
//	    └── ⚡ functions: more
func (r *PrettyRenderer) Tree(record *explorer.ModuleRecord, moduleName string) string {
	var b strings.Builder
	b.WriteString(r.paint(r.config.ModuleIcon, r.config.Colors.Module))
	b.WriteString(" ")
	b.WriteString(r.paint(moduleName, r.config.Colors.Module))
	b.WriteString("\n")

	r.writeNode(&b, record, "")
	return b.String()
}

func (r *PrettyRenderer) writeNode(b *strings.Builder, record *explorer.ModuleRecord, prefix string) {
	items := r.apiItems(record)
	subNames := sortedSubmodules(record)

	for i, item := range items {
		last := i == len(items)-1 && len(subNames) == 0
		b.WriteString(prefix)
		b.WriteString(r.paint(r.branch(last), r.config.Colors.Tree))
		b.WriteString(item)
		b.WriteString("\n")
	}

	for i, name := range subNames {
		last := i == len(subNames)-1
		b.WriteString(prefix)
		b.WriteString(r.paint(r.branch(last), r.config.Colors.Tree))
		b.WriteString(r.paint(r.config.ModuleIcon, r.config.Colors.Module))
		b.WriteString(" ")
		b.WriteString(r.paint(name, r.config.Colors.Module))
		b.WriteString("\n")

		childPrefix := prefix + r.config.TreeVertical
		if last {
			childPrefix = prefix + r.config.TreeEmpty
		}
		r.writeNode(b, record.Submodules[name], childPrefix)
	}
}

// apiItems builds the per-node summary lines; empty collections are
// omitted entirely.
func (r *PrettyRenderer) apiItems(record *explorer.ModuleRecord) []string {
	var items []string

	if len(record.Exports) > 0 {
		items = append(items, r.paint(r.config.ExportsIcon, r.config.Colors.Exports)+
			" __all__: "+strings.Join(record.Exports, ", "))
	}
	if len(record.Functions) > 0 {
		items = append(items, r.paint(r.config.FunctionIcon, r.config.Colors.Function)+
			" functions: "+strings.Join(record.Functions, ", "))
	}
	if len(record.Classes) > 0 {
		items = append(items, r.paint(r.config.ClassIcon, r.config.Colors.Class)+
			" classes: "+strings.Join(record.Classes, ", "))
	}
	if len(record.Constants) > 0 {
		items = append(items, r.paint(r.config.ConstantIcon, r.config.Colors.Constant)+
			" constants: "+strings.Join(record.Constants, ", "))
	}
	return items
}

func (r *PrettyRenderer) branch(last bool) string {
	if last {
		return r.config.TreeLast
	}
	return r.config.TreeBranch
}

// Signature renders a callable signature.
//
//	📎 connect
//	├── Parameters:
//	├── host: str
//	├── port=5432
//	└── Returns:
//	    └── Connection
func (r *PrettyRenderer) Signature(sig *explorer.Signature) string {
	var b strings.Builder
	b.WriteString(r.paint(r.config.SignatureIcon, r.config.Colors.Signature))
	b.WriteString(" ")
	b.WriteString(r.paint(sig.Name, r.config.Colors.Signature))
	b.WriteString("\n")
	b.WriteString(r.paint(r.config.TreeBranch, r.config.Colors.Tree))
	b.WriteString("Parameters:\n")

	params := extractor.SplitParameters(sig.Parameters)
	if len(params) == 0 {
		b.WriteString(r.paint(r.branch(sig.ReturnType == ""), r.config.Colors.Tree))
		b.WriteString("(no parameters)\n")
	}
	for i, param := range params {
		last := i == len(params)-1 && sig.ReturnType == ""
		b.WriteString(r.paint(r.branch(last), r.config.Colors.Tree))
		b.WriteString(r.paint(param, r.config.Colors.Param))
		b.WriteString("\n")
	}

	if sig.ReturnType != "" {
		b.WriteString(r.paint(r.config.TreeLast, r.config.Colors.Tree))
		b.WriteString("Returns:\n")
		b.WriteString(r.config.TreeEmpty)
		b.WriteString(r.paint(r.config.TreeLast, r.config.Colors.Tree))
		b.WriteString(r.paint(sig.ReturnType, r.config.Colors.Type))
		b.WriteString("\n")
	}
	return b.String()
}

// SignatureNotAvailable renders the soft-miss message for an object
// whose signature could not be discovered.
func (r *PrettyRenderer) SignatureNotAvailable(objectName string) string {
	return r.paint(r.config.SignatureIcon, r.config.Colors.Signature) + " " +
		r.paint(objectName, r.config.Colors.Signature) + " (signature not available)"
}

func sortedSubmodules(record *explorer.ModuleRecord) []string {
	names := make([]string, 0, len(record.Submodules))
	for name := range record.Submodules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

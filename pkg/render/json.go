package render

import (
	"encoding/json"

	"github.com/gnana997/modpeek/pkg/explorer"
	"github.com/gnana997/modpeek/pkg/extractor"
)

// JSONRenderer produces machine-readable output mirroring the pretty
// renderer's information content.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// treeDocument is the top-level tree output shape.
type treeDocument struct {
	Module string   `json:"module"`
	Tree   treeNode `json:"tree"`
}

// treeNode wraps one module's API summary and its children.
type treeNode struct {
	API        apiNode             `json:"api"`
	Submodules map[string]treeNode `json:"submodules,omitempty"`
}

type apiNode struct {
	All       []string `json:"all,omitempty"`
	Functions []string `json:"functions"`
	Classes   []string `json:"classes"`
	Constants []string `json:"constants"`
}

// Tree serializes a module tree.
func (r *JSONRenderer) Tree(record *explorer.ModuleRecord, moduleName string) (string, error) {
	doc := treeDocument{
		Module: moduleName,
		Tree:   toTreeNode(record),
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func toTreeNode(record *explorer.ModuleRecord) treeNode {
	node := treeNode{
		API: apiNode{
			All:       record.Exports,
			Functions: emptyNotNil(record.Functions),
			Classes:   emptyNotNil(record.Classes),
			Constants: emptyNotNil(record.Constants),
		},
	}
	if len(record.Submodules) > 0 {
		node.Submodules = make(map[string]treeNode, len(record.Submodules))
		for name, sub := range record.Submodules {
			node.Submodules[name] = toTreeNode(sub)
		}
	}
	return node
}

// signatureDocument is the signature output shape.
type signatureDocument struct {
	Name       string   `json:"name"`
	Parameters []string `json:"parameters"`
	ReturnType string   `json:"return_type,omitempty"`
}

// Signature serializes a callable signature, with the parameter list
// split on top-level commas.
func (r *JSONRenderer) Signature(sig *explorer.Signature) (string, error) {
	doc := signatureDocument{
		Name:       sig.Name,
		Parameters: emptyNotNil(extractor.SplitParameters(sig.Parameters)),
		ReturnType: sig.ReturnType,
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// SignatureNotAvailable serializes the soft-miss shape.
func (r *JSONRenderer) SignatureNotAvailable(objectName string) (string, error) {
	doc := map[string]any{
		"name":      objectName,
		"available": false,
		"reason":    "signature not available",
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// emptyNotNil keeps JSON arrays present even when empty.
func emptyNotNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

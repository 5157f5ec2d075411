// Package surface is the orchestration facade: it parses module
// specifiers, drives exploration, escalates through import-chain
// resolution, and scopes package acquisition to a single retry.
package surface

import (
	"fmt"
	"strings"
)

// Spec is a parsed module specifier.
//
// Grammar: [package::]dotted.path[:objectName][@version|@latest]
//
// The package override covers distributions whose install name differs
// from their import name ("pillow::PIL"). An empty Version means latest.
type Spec struct {
	// Package is the distribution name override, empty when the first
	// path segment doubles as the package name.
	Package string

	// ModulePath is the dotted import path.
	ModulePath string

	// Object is the object name after a ':' separator, empty for plain
	// module specs.
	Object string

	// Version is the explicit version pin, empty for latest.
	Version string
}

// ParseSpec parses a raw module specifier.
func ParseSpec(raw string) (*Spec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty module specifier")
	}

	spec := &Spec{}

	if pkg, rest, found := strings.Cut(raw, "::"); found {
		if pkg == "" || rest == "" {
			return nil, fmt.Errorf("invalid module specifier %q", raw)
		}
		spec.Package = pkg
		raw = rest
	}

	if path, version, found := strings.Cut(raw, "@"); found {
		if version != "" && version != "latest" {
			spec.Version = version
		}
		raw = path
	}

	if module, object, found := strings.Cut(raw, ":"); found {
		if module == "" || object == "" || strings.Contains(object, ":") {
			return nil, fmt.Errorf("invalid module specifier %q", raw)
		}
		spec.ModulePath = sanitizeModulePath(module)
		spec.Object = object
	} else {
		spec.ModulePath = sanitizeModulePath(raw)
	}

	if spec.ModulePath == "" {
		return nil, fmt.Errorf("empty module path in specifier %q", raw)
	}
	return spec, nil
}

// sanitizeModulePath strips PEP 508 style extras and version markers that
// users paste from requirements files ("requests[socks]>=2").
func sanitizeModulePath(path string) string {
	if i := strings.IndexAny(path, "[><=!"); i >= 0 {
		path = path[:i]
	}
	return strings.TrimSpace(path)
}

// AcquireSpec returns the "name[@version]" string handed to the package
// acquirer: the explicit override or the first path segment, with any
// version pin preserved.
func (s *Spec) AcquireSpec() string {
	name := s.Package
	if name == "" {
		name = baseModule(s.ModulePath)
	}
	if s.Version != "" {
		return name + "@" + s.Version
	}
	return name
}

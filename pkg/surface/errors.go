package surface

import "fmt"

// SymbolNotFound is the soft outcome of a signature lookup that exhausted
// every strategy. Callers render it as a message, not a failure.
type SymbolNotFound struct {
	Module string
	Symbol string
}

func (e *SymbolNotFound) Error() string {
	return fmt.Sprintf("signature not available for %s", e.Symbol)
}

// MissingDependencyError reports that a module could not be explored
// because its package is absent locally and acquisition failed.
type MissingDependencyError struct {
	Package string
	Err     error
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("missing dependency %q: %v", e.Package, e.Err)
}

func (e *MissingDependencyError) Unwrap() error {
	return e.Err
}

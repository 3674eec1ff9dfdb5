// Package data implements data-category providers and the permission
// guard they embed.
package data

import (
	"errors"
	"fmt"
	"slices"
)

// Distinct error kinds so callers can branch on read-only versus
// file-scope violations.
var (
	ErrReadOnly     = errors.New("provider is read-only")
	ErrAccessDenied = errors.New("resource is outside the provider's managed files")
)

// Guard enforces the access restrictions of one data provider. Checks run
// synchronously at the start of each operation, before any I/O, so a
// denied write never partially applies.
type Guard struct {
	// ReadOnly rejects every write operation.
	ReadOnly bool

	// ManagedFiles, when non-empty, is the explicit allow-list of
	// resource identifiers the provider may touch. Empty means all
	// resources.
	ManagedFiles []string
}

// CheckRead verifies the resource is within scope.
func (g Guard) CheckRead(resource string) error {
	return g.checkScope(resource)
}

// CheckWrite verifies the provider is writable and the resource is within
// scope. The read-only check runs first.
func (g Guard) CheckWrite(resource string) error {
	if g.ReadOnly {
		return fmt.Errorf("%w: cannot write %q", ErrReadOnly, resource)
	}

	return g.checkScope(resource)
}

func (g Guard) checkScope(resource string) error {
	if len(g.ManagedFiles) == 0 {
		return nil
	}

	if !slices.Contains(g.ManagedFiles, resource) {
		return fmt.Errorf("%w: %q (managed: %v)", ErrAccessDenied, resource, g.ManagedFiles)
	}

	return nil
}

// errors.go
package ftrecipe

import (
	"fmt"

	"github.com/arc-language/ftrecipe/pkg/core"
	"github.com/arc-language/ftrecipe/pkg/patch"
)

var (
	// ErrOptionNotDefined indicates an option that does not exist for the platform
	ErrOptionNotDefined = core.ErrOptionNotDefined

	// ErrInvalidSetting indicates an unknown setting name or value
	ErrInvalidSetting = core.ErrInvalidSetting

	// ErrDuplicateRequirement indicates two different edges for one package
	ErrDuplicateRequirement = core.ErrDuplicateRequirement

	// ErrDependencyNotResolved indicates a requirement the registry cannot satisfy
	ErrDependencyNotResolved = core.ErrDependencyNotResolved

	// ErrPhaseOrder indicates a lifecycle hook ran out of order
	ErrPhaseOrder = core.ErrPhaseOrder

	// ErrUnsupportedPlatform indicates the build system cannot target the platform
	ErrUnsupportedPlatform = core.ErrUnsupportedPlatform

	// ErrHashMismatch indicates a hash verification failure
	ErrHashMismatch = core.ErrHashMismatch

	// ErrPatternNotFound indicates a required patch did not match the sources
	ErrPatternNotFound = patch.ErrPatternNotFound
)

// Error wraps an error with additional context
type Error struct {
	Op      string // Phase or operation that failed
	Package string // Package reference if applicable
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Package, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

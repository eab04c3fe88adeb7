// pkg/core/errors.go
package core

import "errors"

var (
	// ErrOptionNotDefined indicates an option that does not exist for the current platform
	ErrOptionNotDefined = errors.New("option not defined")

	// ErrInvalidSetting indicates a setting name or value that is not recognised
	ErrInvalidSetting = errors.New("invalid setting")

	// ErrDuplicateRequirement indicates a second, different edge for an already required package
	ErrDuplicateRequirement = errors.New("duplicate requirement")

	// ErrDependencyNotResolved indicates a required package has no registry entry or libraries
	ErrDependencyNotResolved = errors.New("dependency not resolved")

	// ErrPhaseOrder indicates a lifecycle hook ran before its predecessor completed
	ErrPhaseOrder = errors.New("lifecycle phase out of order")

	// ErrUnsupportedPlatform indicates the build system cannot run on the target platform
	ErrUnsupportedPlatform = errors.New("platform not supported")

	// ErrHashMismatch indicates a downloaded archive failed checksum verification
	ErrHashMismatch = errors.New("hash mismatch")
)

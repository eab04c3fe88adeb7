// pkg/core/interface.go
package core

import "context"

// Phase is one step of the recipe lifecycle
type Phase int

// Lifecycle phases in the only order they may run
const (
	PhaseNone Phase = iota
	PhaseRequirements
	PhaseConfigure
	PhaseSource
	PhaseBuild
	PhasePackage
	PhasePackageInfo
)

var phaseNames = map[Phase]string{
	PhaseNone:         "none",
	PhaseRequirements: "requirements",
	PhaseConfigure:    "configure",
	PhaseSource:       "source",
	PhaseBuild:        "build",
	PhasePackage:      "package",
	PhasePackageInfo:  "package_info",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParsePhase returns the phase with the given name
func ParsePhase(name string) (Phase, bool) {
	for p, n := range phaseNames {
		if n == name && p != PhaseNone {
			return p, true
		}
	}
	return PhaseNone, false
}

// Recipe defines the lifecycle hooks a package recipe exposes to the engine
type Recipe interface {
	// Reference returns the package being built
	Reference() Reference

	// Requirements declares the dependency edges for the current options
	Requirements() (*Requirements, error)

	// Configure prunes options and settings that do not apply to the platform
	Configure() error

	// PackageID identifies the binary produced for the configured inputs
	PackageID() (string, error)

	// UseLayout tells the recipe where to work and where to package
	UseLayout(layout Layout)

	// Source materializes the source tree
	Source(ctx context.Context) error

	// Build configures and runs the underlying build tool
	Build(ctx context.Context, deps Dependencies) error

	// Package installs and collects the artifacts into the package folder
	Package(ctx context.Context, deps Dependencies) error

	// PackageInfo reports what the package provides to consumers
	PackageInfo() (*CppInfo, error)
}

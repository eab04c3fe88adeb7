// pkg/platform/detect.go
package platform

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/arc-language/ftrecipe/pkg/core"
)

var osNames = map[string]string{
	"linux":   core.OSLinux,
	"windows": core.OSWindows,
	"darwin":  core.OSMacos,
	"freebsd": core.OSFreeBSD,
}

var archNames = map[string]string{
	"amd64": "x86_64",
	"386":   "x86",
	"arm64": "armv8",
	"arm":   "armv7",
}

// Detect returns default settings for the host
func Detect() (core.Settings, error) {
	return DetectFor(runtime.GOOS, runtime.GOARCH)
}

// DetectFor returns default settings for a GOOS/GOARCH pair
func DetectFor(goos, goarch string) (core.Settings, error) {
	osName, ok := osNames[goos]
	if !ok {
		return core.Settings{}, fmt.Errorf("unsupported operating system: %s", goos)
	}
	arch, ok := archNames[goarch]
	if !ok {
		return core.Settings{}, fmt.Errorf("unsupported architecture: %s", goarch)
	}

	s := core.Settings{
		OS:        osName,
		Arch:      arch,
		BuildType: core.BuildTypeRelease,
	}

	switch osName {
	case core.OSWindows:
		s.Compiler = core.Compiler{Name: core.CompilerVisualStudio, Version: "16", Runtime: "MD"}
	case core.OSMacos:
		s.Compiler = core.Compiler{Name: core.CompilerAppleClang, Libcxx: "libc++"}
	case core.OSFreeBSD:
		s.Compiler = core.Compiler{Name: core.CompilerClang, Libcxx: "libc++"}
	default:
		s.Compiler = core.Compiler{Name: core.CompilerGCC, Libcxx: "libstdc++11"}
		if commandExists("clang") && !commandExists("gcc") {
			s.Compiler.Name = core.CompilerClang
		}
	}

	return s, nil
}

// Tools reports which build tools are reachable through PATH
func Tools() map[string]bool {
	tools := map[string]bool{}
	for _, name := range []string{"cmake", "make", "ninja", "pkg-config"} {
		tools[name] = commandExists(name)
	}
	return tools
}

// commandExists checks if a command is available in PATH
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

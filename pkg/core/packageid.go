// pkg/core/packageid.go
package core

import (
	"io"

	"zombiezen.com/go/nix"
)

// packageIDLength is the number of nix-base32 characters kept, the same as a store path hash
const packageIDLength = 32

// ComputePackageID hashes the canonical reference, settings, options and
// requirements. Identical inputs always give the same id.
func ComputePackageID(ref Reference, settings Settings, opts Options, reqs *Requirements) string {
	h := nix.NewHasher(nix.SHA256)
	io.WriteString(h, "[reference]\n"+ref.String()+"\n")
	io.WriteString(h, "[settings]\n"+settings.Canonical()+"\n")
	io.WriteString(h, "[options]\n"+opts.Canonical()+"\n")
	if reqs != nil {
		io.WriteString(h, "[requires]\n"+reqs.Canonical()+"\n")
	}
	return h.SumHash().Base32()[:packageIDLength]
}

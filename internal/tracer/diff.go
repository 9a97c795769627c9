package tracer

import (
	"github.com/google/go-cmp/cmp"
	"github.com/transitorykris/bgpconverge/internal/bgp"
)

// DiffPaths explains how two forwarding paths for the same (source, prefix)
// differ across a re-convergence — an enrichment beyond the base tracer
// contract (section 2a), used by tests that assert a path changed in a
// specific way rather than by the tracer itself. Returns "" if the paths
// are identical.
func DiffPaths(before, after []bgp.RouterId) string {
	return cmp.Diff(before, after)
}

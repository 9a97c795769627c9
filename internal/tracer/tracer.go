// Package tracer implements the route tracer of section 4.8: given a
// source router and a prefix, it walks the chain of selected next hops
// toward the BGP next hop, resolving each internal hop through that
// router's own IGP forwarding table, until it reaches an external router,
// a forwarding loop, or a black hole.
//
// The walk style — an iterative loop over a visited set, rather than
// recursion — is grounded on the teacher's own small focused
// helper-function shape (kbgp/network/network.go's short, single-purpose
// functions); no library in the retrieval pack performs this kind of
// abstract next-hop walk, so the core logic is standard library only.
package tracer

import (
	"github.com/transitorykris/bgpconverge/internal/bgp"
	"github.com/transitorykris/bgpconverge/internal/bgperr"
	"github.com/transitorykris/bgpconverge/internal/netdriver"
)

// Trace walks from source toward prefix, following each internal router's
// selected next hop resolved through its own IGP table, and returns the
// full path it walked. If source is already external, the path is just
// [source]. A *bgperr.ForwardingLoopError or *bgperr.ForwardingBlackHoleError
// is returned, carrying the partial path, if the walk cannot reach an
// external router.
func Trace(d *netdriver.Driver, source bgp.RouterId, prefix bgp.Prefix) ([]bgp.RouterId, error) {
	path := []bgp.RouterId{source}
	visited := map[bgp.RouterId]struct{}{source: {}}
	current := source

	for {
		if !d.IsInternal(current) {
			return path, nil
		}

		entry, ok, err := d.GetRoute(current, prefix)
		if err != nil {
			return path, err
		}
		if !ok {
			return path, &bgperr.ForwardingBlackHoleError{Path: clone(path)}
		}

		nextHop := entry.Route.NextHop
		if nextHop == current {
			// The router's own selected next hop is itself: the BGP next
			// hop is already reached, nothing further to resolve.
			return path, nil
		}

		table, err := d.IGPTable(current)
		if err != nil {
			return path, err
		}
		h, ok := table.Lookup(nextHop)
		if !ok || h.Cost.IsInf() {
			return path, &bgperr.ForwardingBlackHoleError{Path: clone(path)}
		}

		current = h.NextHop
		if _, seen := visited[current]; seen {
			path = append(path, current)
			return path, &bgperr.ForwardingLoopError{Path: clone(path)}
		}
		visited[current] = struct{}{}
		path = append(path, current)
	}
}

func clone(path []bgp.RouterId) []bgp.RouterId {
	out := make([]bgp.RouterId, len(path))
	copy(out, path)
	return out
}

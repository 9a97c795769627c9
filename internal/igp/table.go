// Package igp computes, for a single internal router, the shortest-path
// next hop and cost to every other router in the topology (section 4.1).
//
// The algorithm is Bellman-Ford, so that a future
// topology with negative link weights (never produced by this simulator's
// own construction surface, but not disallowed by the data model) still
// resolves correctly or is rejected as a bad topology rather than silently
// mishandled by an algorithm that assumes nonnegative weights.
package igp

import (
	"fmt"
	"sort"

	"github.com/transitorykris/bgpconverge/internal/bgp"
	"github.com/transitorykris/bgpconverge/internal/bgperr"
	"github.com/transitorykris/bgpconverge/internal/topo"
)

// Hop is the resolved next hop and total cost to a destination.
type Hop struct {
	NextHop bgp.RouterId
	Cost    bgp.LinkWeight
}

// Table maps every destination known to the topology (other than the root)
// to its Hop. A present entry with Cost == bgp.Inf means "known but
// unreachable"; a wholly absent key means the destination is not a node in
// this topology at all. Section 4.4.1's decision process distinguishes
// these two cases as RouterNotReachable versus RouterNotFound.
type Table map[bgp.RouterId]Hop

// Lookup returns the Hop for dst and whether it is present.
func (t Table) Lookup(dst bgp.RouterId) (Hop, bool) {
	h, ok := t[dst]
	return h, ok
}

// Compute runs single-source shortest paths from root over g and derives,
// for every reachable destination, the next hop adjacent to root (section
// 4.1's contract). Topology nodes left at infinite distance stay in the
// returned Table with Cost bgp.Inf; only the root itself is absent.
func Compute(g *topo.Graph, root bgp.RouterId) (Table, error) {
	nodes := g.Nodes()
	dist := make(map[bgp.RouterId]bgp.LinkWeight, len(nodes))
	pred := make(map[bgp.RouterId]bgp.RouterId, len(nodes))
	for _, n := range nodes {
		dist[n] = bgp.Inf
	}
	dist[root] = 0

	// Relax all edges |V|-1 times; stop early once nothing changes.
	for i := 0; i < len(nodes)-1; i++ {
		changed := false
		for _, u := range nodes {
			if dist[u].IsInf() {
				continue
			}
			for v, w := range g.Neighbors(u) {
				nd := dist[u] + w
				if nd < dist[v] {
					dist[v] = nd
					pred[v] = u
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	// One more relaxation pass detects a negative cycle reachable from root.
	for _, u := range nodes {
		if dist[u].IsInf() {
			continue
		}
		for v, w := range g.Neighbors(u) {
			if dist[u]+w < dist[v] {
				return nil, fmt.Errorf("%w: negative cycle reachable from %s", bgperr.ErrBadIgpTopology, root)
			}
		}
	}

	// Derive next hops in ascending-distance order so each destination's
	// next hop is read off its predecessor's already-computed next hop in
	// O(1), per section 4.1's amortized-O(V) construction.
	reachable := make([]bgp.RouterId, 0, len(nodes))
	for _, n := range nodes {
		if n != root && !dist[n].IsInf() {
			reachable = append(reachable, n)
		}
	}
	sort.Slice(reachable, func(i, j int) bool { return dist[reachable[i]] < dist[reachable[j]] })

	nextHop := make(map[bgp.RouterId]bgp.RouterId, len(reachable))
	table := make(Table, len(nodes))
	for _, v := range reachable {
		p := pred[v]
		if p == root {
			nextHop[v] = v
		} else {
			nextHop[v] = nextHop[p]
		}
		table[v] = Hop{NextHop: nextHop[v], Cost: dist[v]}
	}
	// Every other topology node is known but unreachable: keep it present
	// in the table (Cost: Inf) so Lookup can distinguish "known but
	// unreachable" from "not a node in this topology at all", which
	// section 4.4.1's RouterNotReachable vs RouterNotFound distinction
	// depends on.
	for _, n := range nodes {
		if n == root {
			continue
		}
		if _, ok := table[n]; !ok {
			table[n] = Hop{Cost: bgp.Inf}
		}
	}
	return table, nil
}

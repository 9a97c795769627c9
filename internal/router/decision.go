package router

import (
	"fmt"

	"github.com/transitorykris/bgpconverge/internal/bgp"
	"github.com/transitorykris/bgpconverge/internal/bgperr"
)

// decide implements the section 4.4 decision process for a single prefix:
// process every RIB-in candidate, pick the maximum under bgp.Compare, and
// commit it to RIB-local if it differs from what is already selected.
func (r *Internal) decide(prefix bgp.Prefix) error {
	byNeighbor := r.ribIn[prefix]
	candidates := make([]bgp.Candidate, 0, len(byNeighbor))
	for from, entry := range byNeighbor {
		// A session may have closed after the entry was ingested; decision
		// tolerates stale entries rather than erroring (section 3's
		// invariant on rib_in's from_id).
		if _, ok := r.SessionType(from); !ok {
			continue
		}
		c, err := r.process(entry)
		if err != nil {
			return err
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		delete(r.rib, prefix)
		return nil
	}

	winner := candidates[bgp.Best(candidates)]
	resolved := bgp.RIBEntry{
		Route: bgp.Route{
			Prefix:    prefix,
			ASPath:    winner.Entry.Route.ASPath,
			NextHop:   winner.NextHop,
			LocalPref: bgp.SetU32(winner.LocalPref),
			MED:       bgp.SetU32(winner.MED),
		},
		FromType: winner.FromType,
		FromID:   winner.FromID,
	}
	if winner.FromType.IsIBGP() {
		cost := winner.IGPCost
		resolved.IGPCost = &cost
	}

	if current, exists := r.rib[prefix]; !exists || !current.EqualForDissemination(resolved) {
		r.rib[prefix] = resolved
	}
	return nil
}

// process computes the processed form (section 4.4.1) of a single RIB-in
// entry: defaulted attributes, eBGP policy/next-hop rewriting, and iBGP IGP
// cost resolution.
func (r *Internal) process(entry bgp.RIBEntry) (bgp.Candidate, error) {
	route := entry.Route
	localPref := route.LocalPref.Resolve(bgp.DefaultLocalPref)
	med := route.MED.Resolve(bgp.DefaultMED)
	nextHop := route.NextHop
	var igpCost bgp.LinkWeight

	if entry.FromType == bgp.EBGP {
		if override, ok := r.policyLocalPref[entry.FromID]; ok {
			localPref = override
		} else {
			localPref = bgp.DefaultLocalPref
		}
		igpCost = 0
		nextHop = entry.FromID
	} else {
		if nextHop == r.id {
			igpCost = 0
		} else {
			hop, ok := r.igpTable.Lookup(nextHop)
			if !ok {
				return bgp.Candidate{}, fmt.Errorf("%w: %s", bgperr.ErrRouterNotFound, nextHop)
			}
			if hop.Cost.IsInf() {
				return bgp.Candidate{}, fmt.Errorf("%w: %s", bgperr.ErrRouterNotReachable, nextHop)
			}
			igpCost = hop.Cost
		}
	}

	return bgp.Candidate{
		Entry:     entry,
		LocalPref: localPref,
		ASPathLen: len(route.ASPath),
		MED:       med,
		FromType:  entry.FromType,
		IGPCost:   igpCost,
		NextHop:   nextHop,
		FromID:    entry.FromID,
	}, nil
}

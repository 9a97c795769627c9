package router

import (
	"github.com/transitorykris/bgpconverge/internal/bgp"
	"github.com/transitorykris/bgpconverge/internal/event"
)

// disseminate implements section 4.5 for a single prefix: compute what
// should be announced to every current session neighbor and diff it
// against what was last announced (RIB-out) to decide whether to emit an
// Update, a Withdraw, or nothing.
func (r *Internal) disseminate(prefix bgp.Prefix) []event.Event {
	var out []event.Event
	best, hasBest := r.rib[prefix]

	for _, peer := range r.Sessions() {
		var bestForPeer *bgp.RIBEntry
		if hasBest {
			clone := best
			clone.Route = best.Route.Clone()
			if peerType, _ := r.SessionType(peer); peerType == bgp.EBGP {
				clone.Route.NextHop = r.id
				clone.Route.LocalPref = bgp.UnsetU32()
			}
			bestForPeer = &clone
		}

		old, hadOld := r.ribOut[prefix][peer]

		if bestForPeer == nil {
			if hadOld {
				r.deleteRIBOut(prefix, peer)
				out = append(out, event.Event{From: r.id, To: peer, Msg: event.WithdrawMessage(prefix)})
			}
			continue
		}

		if !hadOld {
			if r.shouldExport(best.FromType, best.FromID, peer) {
				r.setRIBOut(prefix, peer, *bestForPeer)
				out = append(out, event.Event{From: r.id, To: peer, Msg: event.UpdateMessage(bestForPeer.Route)})
			}
			continue
		}

		if bestForPeer.EqualForDissemination(old) {
			continue
		}

		if r.shouldExport(best.FromType, best.FromID, peer) {
			r.setRIBOut(prefix, peer, *bestForPeer)
			out = append(out, event.Event{From: r.id, To: peer, Msg: event.UpdateMessage(bestForPeer.Route)})
		} else {
			r.deleteRIBOut(prefix, peer)
			out = append(out, event.Event{From: r.id, To: peer, Msg: event.WithdrawMessage(prefix)})
		}
	}
	return out
}

// shouldExport implements the export filter of section 4.5: split horizon
// on the learning neighbor, explicit no-export policy, then the
// route-reflection matrix (whose only "no" cell is iBGP-peer learned,
// iBGP-peer exported).
func (r *Internal) shouldExport(learnedFrom bgp.SessionType, fromID, peer bgp.RouterId) bool {
	if peer == fromID {
		return false
	}
	if _, ok := r.policyNoExport[noExportKey{fromID, peer}]; ok {
		return false
	}
	peerType, _ := r.SessionType(peer)
	if learnedFrom == bgp.IBGPPeer && peerType == bgp.IBGPPeer {
		return false
	}
	return true
}

func (r *Internal) setRIBOut(prefix bgp.Prefix, peer bgp.RouterId, entry bgp.RIBEntry) {
	if r.ribOut[prefix] == nil {
		r.ribOut[prefix] = make(map[bgp.RouterId]bgp.RIBEntry)
	}
	r.ribOut[prefix][peer] = entry
}

func (r *Internal) deleteRIBOut(prefix bgp.Prefix, peer bgp.RouterId) {
	byNeighbor, ok := r.ribOut[prefix]
	if !ok {
		return
	}
	delete(byNeighbor, peer)
	if len(byNeighbor) == 0 {
		delete(r.ribOut, prefix)
	}
}

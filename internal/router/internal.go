package router

import (
	"fmt"

	"github.com/transitorykris/bgpconverge/internal/bgp"
	"github.com/transitorykris/bgpconverge/internal/bgperr"
	"github.com/transitorykris/bgpconverge/internal/event"
	"github.com/transitorykris/bgpconverge/internal/igp"
)

type noExportKey struct {
	From, To bgp.RouterId
}

// Internal is a BGP speaker inside this AS: the full RIB-in / decision /
// RIB-out state machine of sections 4.3-4.6.
type Internal struct {
	id bgp.RouterId

	igpTable igp.Table

	ebgpSessions       map[bgp.RouterId]struct{}
	ibgpPeerSessions   map[bgp.RouterId]struct{}
	ibgpClientSessions map[bgp.RouterId]struct{}

	ribIn  map[bgp.Prefix]map[bgp.RouterId]bgp.RIBEntry
	rib    map[bgp.Prefix]bgp.RIBEntry
	ribOut map[bgp.Prefix]map[bgp.RouterId]bgp.RIBEntry

	knownPrefixes map[bgp.Prefix]struct{}

	policyLocalPref map[bgp.RouterId]uint32
	policyNoExport  map[noExportKey]struct{}
}

// NewInternal creates an internal router with no sessions, no routes, and
// no IGP table installed yet.
func NewInternal(id bgp.RouterId) *Internal {
	return &Internal{
		id:                 id,
		igpTable:           igp.Table{},
		ebgpSessions:       make(map[bgp.RouterId]struct{}),
		ibgpPeerSessions:   make(map[bgp.RouterId]struct{}),
		ibgpClientSessions: make(map[bgp.RouterId]struct{}),
		ribIn:              make(map[bgp.Prefix]map[bgp.RouterId]bgp.RIBEntry),
		rib:                make(map[bgp.Prefix]bgp.RIBEntry),
		ribOut:             make(map[bgp.Prefix]map[bgp.RouterId]bgp.RIBEntry),
		knownPrefixes:      make(map[bgp.Prefix]struct{}),
		policyLocalPref:    make(map[bgp.RouterId]uint32),
		policyNoExport:     make(map[noExportKey]struct{}),
	}
}

// ID implements Device.
func (r *Internal) ID() bgp.RouterId { return r.id }

// SetIGPTable installs the forwarding table the driver computed for this
// router (section 4.7's write_igp_fw_tables). Decision re-runs are not
// triggered automatically.
func (r *Internal) SetIGPTable(t igp.Table) { r.igpTable = t }

// IGPTable returns the currently installed forwarding table.
func (r *Internal) IGPTable() igp.Table { return r.igpTable }

// --- Session management (section 4.3) ---------------------------------

// EstablishSession adds peer to the session set matching sessionType. It
// fails with ErrSessionAlreadyExists if peer is already present in any of
// the three (disjoint) session sets.
func (r *Internal) EstablishSession(peer bgp.RouterId, sessionType bgp.SessionType) error {
	if _, ok := r.SessionType(peer); ok {
		return fmt.Errorf("%w: %s and %s", bgperr.ErrSessionAlreadyExists, r.id, peer)
	}
	switch sessionType {
	case bgp.EBGP:
		r.ebgpSessions[peer] = struct{}{}
	case bgp.IBGPPeer:
		r.ibgpPeerSessions[peer] = struct{}{}
	case bgp.IBGPClient:
		r.ibgpClientSessions[peer] = struct{}{}
	default:
		return fmt.Errorf("unknown session type %v", sessionType)
	}
	return nil
}

// CloseSession removes peer from whichever session set contains it and
// purges every RIB-in/RIB-out entry mentioning it. It fails with
// ErrNoBgpSession if peer has no session with this router.
func (r *Internal) CloseSession(peer bgp.RouterId) error {
	_, ok := r.SessionType(peer)
	if !ok {
		return fmt.Errorf("%w: %s has no session with %s", bgperr.ErrNoBgpSession, peer, r.id)
	}
	delete(r.ebgpSessions, peer)
	delete(r.ibgpPeerSessions, peer)
	delete(r.ibgpClientSessions, peer)

	for prefix, byNeighbor := range r.ribIn {
		delete(byNeighbor, peer)
		if len(byNeighbor) == 0 {
			delete(r.ribIn, prefix)
		}
	}
	for prefix, byNeighbor := range r.ribOut {
		delete(byNeighbor, peer)
		if len(byNeighbor) == 0 {
			delete(r.ribOut, prefix)
		}
	}
	return nil
}

// SessionType reports the session type under which peer is known, if any.
func (r *Internal) SessionType(peer bgp.RouterId) (bgp.SessionType, bool) {
	if _, ok := r.ebgpSessions[peer]; ok {
		return bgp.EBGP, true
	}
	if _, ok := r.ibgpPeerSessions[peer]; ok {
		return bgp.IBGPPeer, true
	}
	if _, ok := r.ibgpClientSessions[peer]; ok {
		return bgp.IBGPClient, true
	}
	return 0, false
}

// Sessions returns the union of all three session sets, in no particular
// order.
func (r *Internal) Sessions() []bgp.RouterId {
	out := make([]bgp.RouterId, 0, len(r.ebgpSessions)+len(r.ibgpPeerSessions)+len(r.ibgpClientSessions))
	for p := range r.ebgpSessions {
		out = append(out, p)
	}
	for p := range r.ibgpPeerSessions {
		out = append(out, p)
	}
	for p := range r.ibgpClientSessions {
		out = append(out, p)
	}
	return out
}

// --- Policy (section 3) -------------------------------------------------

// SetLocalPrefPolicy overrides the local_pref assigned to routes learned
// over eBGP from peer.
func (r *Internal) SetLocalPrefPolicy(peer bgp.RouterId, localPref uint32) {
	r.policyLocalPref[peer] = localPref
}

// ClearLocalPrefPolicy removes any override previously set for peer.
func (r *Internal) ClearLocalPrefPolicy(peer bgp.RouterId) {
	delete(r.policyLocalPref, peer)
}

// SetNoExport forbids re-exporting routes learned from "from" toward "to".
func (r *Internal) SetNoExport(from, to bgp.RouterId) {
	r.policyNoExport[noExportKey{from, to}] = struct{}{}
}

// ClearNoExport removes a no-export rule previously set via SetNoExport.
func (r *Internal) ClearNoExport(from, to bgp.RouterId) {
	delete(r.policyNoExport, noExportKey{from, to})
}

// --- Diagnostics ---------------------------------------------------------

// GetRoute returns the currently selected RIB entry for prefix, if any.
func (r *Internal) GetRoute(prefix bgp.Prefix) (bgp.RIBEntry, bool) {
	e, ok := r.rib[prefix]
	return e, ok
}

// KnownPrefixes returns every prefix this router has ever seen in an event,
// in no particular order.
func (r *Internal) KnownPrefixes() []bgp.Prefix {
	out := make([]bgp.Prefix, 0, len(r.knownPrefixes))
	for p := range r.knownPrefixes {
		out = append(out, p)
	}
	return out
}

// RIBInEntries returns the per-neighbor RIB-in entries for prefix.
func (r *Internal) RIBInEntries(prefix bgp.Prefix) map[bgp.RouterId]bgp.RIBEntry {
	return r.ribIn[prefix]
}

// RIBOutEntries returns the per-neighbor RIB-out entries for prefix.
func (r *Internal) RIBOutEntries(prefix bgp.Prefix) map[bgp.RouterId]bgp.RIBEntry {
	return r.ribOut[prefix]
}

// --- Event handling (section 4.6) ---------------------------------------

// HandleEvent implements Device, dispatching to the three-phase update loop
// for the event's prefix.
func (r *Internal) HandleEvent(ev event.Event) ([]event.Event, error) {
	if ev.To != r.id {
		return nil, nil
	}
	switch ev.Msg.Kind {
	case event.Update:
		return r.handleUpdate(ev.From, ev.Msg.Route)
	case event.Withdraw:
		return r.handleWithdraw(ev.From, ev.Msg.Prefix)
	default:
		return nil, fmt.Errorf("unknown message kind %v", ev.Msg.Kind)
	}
}

func (r *Internal) handleUpdate(from bgp.RouterId, route bgp.Route) ([]event.Event, error) {
	sessionType, ok := r.SessionType(from)
	if !ok {
		return nil, fmt.Errorf("%w: update from %s to %s", bgperr.ErrNoBgpSession, from, r.id)
	}
	if r.ribIn[route.Prefix] == nil {
		r.ribIn[route.Prefix] = make(map[bgp.RouterId]bgp.RIBEntry)
	}
	r.ribIn[route.Prefix][from] = bgp.RIBEntry{
		Route:    route,
		FromType: sessionType,
		FromID:   from,
	}
	r.knownPrefixes[route.Prefix] = struct{}{}
	return r.RunUpdate(route.Prefix)
}

func (r *Internal) handleWithdraw(from bgp.RouterId, prefix bgp.Prefix) ([]event.Event, error) {
	if byNeighbor, ok := r.ribIn[prefix]; ok {
		delete(byNeighbor, from)
		if len(byNeighbor) == 0 {
			delete(r.ribIn, prefix)
		}
	}
	r.knownPrefixes[prefix] = struct{}{}
	return r.RunUpdate(prefix)
}

// RunUpdate runs decision then dissemination for a single prefix and
// returns the events dissemination produced. It is exported so the network
// driver's schedule_update (section 4.7) can drive it directly, without
// synthesizing a fake incoming event.
func (r *Internal) RunUpdate(prefix bgp.Prefix) ([]event.Event, error) {
	if err := r.decide(prefix); err != nil {
		return nil, err
	}
	return r.disseminate(prefix), nil
}

// ScheduleUpdate runs RunUpdate across every known prefix, in no particular
// order, collecting all produced events. It stops and returns the first
// error encountered, per section 7's "every other error aborts the current
// driver call" policy — events already produced by prior prefixes are
// still returned so the caller can decide whether to enqueue a partial
// batch.
func (r *Internal) ScheduleUpdate() ([]event.Event, error) {
	var out []event.Event
	for prefix := range r.knownPrefixes {
		evs, err := r.RunUpdate(prefix)
		out = append(out, evs...)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

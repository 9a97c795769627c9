package router

import (
	"github.com/transitorykris/bgpconverge/internal/bgp"
	"github.com/transitorykris/bgpconverge/internal/event"
)

// External represents a BGP peer outside this AS (section 4.2). It never
// runs the decision process — it only emits UPDATE/WITHDRAW events toward
// every configured neighbor.
type External struct {
	id        bgp.RouterId
	asID      bgp.AsId
	neighbors map[bgp.RouterId]struct{}
}

// NewExternal creates an external router with the given id and AS number.
func NewExternal(id bgp.RouterId, asID bgp.AsId) *External {
	return &External{
		id:        id,
		asID:      asID,
		neighbors: make(map[bgp.RouterId]struct{}),
	}
}

// ID implements Device.
func (e *External) ID() bgp.RouterId { return e.id }

// ASID returns the external router's AS number.
func (e *External) ASID() bgp.AsId { return e.asID }

// AddNeighbor registers peer as reachable from this external router. The
// network driver calls this when an edge touching an external router is
// added (section 6).
func (e *External) AddNeighbor(peer bgp.RouterId) {
	e.neighbors[peer] = struct{}{}
}

// Neighbors returns the current neighbor set.
func (e *External) Neighbors() []bgp.RouterId {
	out := make([]bgp.RouterId, 0, len(e.neighbors))
	for n := range e.neighbors {
		out = append(out, n)
	}
	return out
}

// Advertise builds an Update event toward every neighbor, with next_hop set
// to this router and local_pref left absent (section 4.2).
func (e *External) Advertise(prefix bgp.Prefix, asPath []bgp.AsId, med bgp.OptionalU32) []event.Event {
	route := bgp.Route{
		Prefix:    prefix,
		ASPath:    asPath,
		NextHop:   e.id,
		LocalPref: bgp.UnsetU32(),
		MED:       med,
	}
	msg := event.UpdateMessage(route)
	out := make([]event.Event, 0, len(e.neighbors))
	for n := range e.neighbors {
		out = append(out, event.Event{From: e.id, To: n, Msg: msg})
	}
	return out
}

// Withdraw builds a Withdraw event toward every neighbor.
func (e *External) Withdraw(prefix bgp.Prefix) []event.Event {
	msg := event.WithdrawMessage(prefix)
	out := make([]event.Event, 0, len(e.neighbors))
	for n := range e.neighbors {
		out = append(out, event.Event{From: e.id, To: n, Msg: msg})
	}
	return out
}

// HandleEvent implements Device. External routers never process inbound
// events.
func (e *External) HandleEvent(event.Event) ([]event.Event, error) {
	return nil, nil
}

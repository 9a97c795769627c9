// Package router implements the two kinds of BGP speaker in the simulation:
// Internal (the full three-phase decision process) and External (a stub
// that only emits events).
//
// Internal's field layout and constructor shape descend from
// kbgp/speaker/speaker.go (a Speaker owning a locRIB, a peer collection, and
// New/AddPeer/RemovePeer-style mutators) and kbgp/fsm/fsm.go's per-peer
// adjRIBIn/adjRIBOut fields, generalized from one peer to the N-neighbor
// RIB-in/RIB-out maps this spec requires.
package router

import (
	"github.com/transitorykris/bgpconverge/internal/bgp"
	"github.com/transitorykris/bgpconverge/internal/event"
)

// Device is the shared surface between Internal and External routers: the
// only operation the network driver needs to treat them polymorphically is
// event delivery. Per section 9's design note, this is deliberately a thin
// interface rather than a shared base type.
type Device interface {
	ID() bgp.RouterId
	// HandleEvent processes ev (addressed to this device) and returns any
	// events it produces as a result. Events addressed to another router
	// are the caller's problem to route, not this method's to reject.
	HandleEvent(ev event.Event) ([]event.Event, error)
}

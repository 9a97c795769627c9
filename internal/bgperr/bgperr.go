// Package bgperr names the error taxonomy of section 7 as package-level
// sentinels, wrapped at the call site with fmt.Errorf("%w: ...", ...) so
// callers can both errors.Is the kind and read a human-readable message.
//
// This mirrors the shape of the teacher's bgpError (a struct pairing a
// numeric NOTIFICATION code with a message) without carrying over wire
// protocol code/subcode numbers, which belong to the BGP NOTIFICATION
// message this simulator never models.
package bgperr

import "errors"

var (
	// ErrDeviceNotFound is returned when a caller references a RouterId
	// the driver has never registered.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrDeviceIsExternalRouter is returned when an operation requires a
	// router of one kind (internal or external) but the given RouterId
	// names the other — e.g. establishing a BGP session against an
	// external router, or originating an external advertisement from an
	// internal one.
	ErrDeviceIsExternalRouter = errors.New("device is the wrong router kind for this operation")

	// ErrSessionAlreadyExists is returned by EstablishSession when the
	// peer is already present in any of the three session sets.
	ErrSessionAlreadyExists = errors.New("session already exists")

	// ErrNoBgpSession is returned by CloseSession when the peer has no
	// session, and by event delivery when the sender's session was closed
	// between enqueue and delivery (the driver recovers from this last
	// case locally). Decision does not return it: RIB-in entries whose
	// neighbor has no session are skipped.
	ErrNoBgpSession = errors.New("no bgp session")

	// ErrRouterNotFound is returned during iBGP decision when the IGP
	// table has no entry at all for the route's next hop.
	ErrRouterNotFound = errors.New("router not found in igp table")

	// ErrRouterNotReachable is returned during iBGP decision when the IGP
	// table knows of the route's next hop but marks it unreachable.
	ErrRouterNotReachable = errors.New("router not reachable in igp table")

	// ErrBadIgpTopology is returned by IGP shortest-path computation when
	// the topology cannot produce a well-defined result (a negative
	// cycle).
	ErrBadIgpTopology = errors.New("bad igp topology")
)

package bgp

// SessionType tags the kind of BGP adjacency an entry arrived over, which
// the decision process (section 4.4d) and the dissemination export table
// (section 4.5) both key off of.
type SessionType int

const (
	// EBGP is a session to a peer outside this AS.
	EBGP SessionType = iota
	// IBGPPeer is a non-reflector iBGP session — the client side of a
	// route-reflector relationship, or either side of a full-mesh peering.
	IBGPPeer
	// IBGPClient is the reflector side of a route-reflector relationship.
	IBGPClient
)

func (t SessionType) String() string {
	switch t {
	case EBGP:
		return "eBGP"
	case IBGPPeer:
		return "iBGP-peer"
	case IBGPClient:
		return "iBGP-client"
	default:
		return "unknown-session"
	}
}

// IsIBGP reports whether t is either flavor of internal session.
func (t SessionType) IsIBGP() bool { return t == IBGPPeer || t == IBGPClient }

package bgp

// Route is the advertisement payload carried by UPDATE events. ORIGIN is
// implicitly IGP; ATOMIC_AGGREGATE and AGGREGATOR are not modeled, per the
// simulator's scope.
type Route struct {
	Prefix    Prefix
	ASPath    []AsId
	NextHop   RouterId
	LocalPref OptionalU32
	MED       OptionalU32
}

// Clone returns a deep copy safe to mutate independently of r (dissemination
// rewrites NextHop/LocalPref per neighbor and must never alias the sender's
// copy).
func (r Route) Clone() Route {
	path := make([]AsId, len(r.ASPath))
	copy(path, r.ASPath)
	return Route{
		Prefix:    r.Prefix,
		ASPath:    path,
		NextHop:   r.NextHop,
		LocalPref: r.LocalPref,
		MED:       r.MED,
	}
}

// Equal implements the section 3 route equality: prefix, AS path, next hop,
// and the *defaulted* local_pref/med must all match. Absent and
// explicitly-default attributes are indistinguishable here by construction.
func (r Route) Equal(o Route) bool {
	if r.Prefix != o.Prefix || r.NextHop != o.NextHop {
		return false
	}
	if r.LocalPref.Resolve(DefaultLocalPref) != o.LocalPref.Resolve(DefaultLocalPref) {
		return false
	}
	if r.MED.Resolve(DefaultMED) != o.MED.Resolve(DefaultMED) {
		return false
	}
	if len(r.ASPath) != len(o.ASPath) {
		return false
	}
	for i, a := range r.ASPath {
		if a != o.ASPath[i] {
			return false
		}
	}
	return true
}

// RIBEntry is a stored route plus its provenance. Entries living in RIB-in
// carry an absent IGPCost; decision populates IGPCost only for resolved
// iBGP-learned entries (section 3).
type RIBEntry struct {
	Route    Route
	FromType SessionType
	FromID   RouterId
	IGPCost  *LinkWeight
}

// EqualForDissemination is the equality used when comparing a candidate
// RIB-out value against the previously announced one (section 4.5): route
// equality plus FromID.
func (e RIBEntry) EqualForDissemination(o RIBEntry) bool {
	return e.Route.Equal(o.Route) && e.FromID == o.FromID
}

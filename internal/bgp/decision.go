package bgp

// Candidate is the processed form of a RIBEntry used by the decision
// process (section 4.4.1): all attributes already defaulted/rewritten, so
// the comparator never has to special-case absence.
type Candidate struct {
	Entry     RIBEntry
	LocalPref uint32
	ASPathLen int
	MED       uint32
	FromType  SessionType
	IGPCost   LinkWeight
	NextHop   RouterId
	FromID    RouterId
}

// Compare implements the strict lexicographic order of section 4.4.2.
// It returns a positive number if a is strictly preferred over b, a
// negative number if b is strictly preferred, and 0 only when every
// criterion ties (which, because FromID is a total order and the final
// tie-break, can only happen when a and b are the same entry).
func Compare(a, b Candidate) int {
	if d := cmpUint32Desc(a.LocalPref, b.LocalPref); d != 0 {
		return d
	}
	if d := cmpIntAsc(a.ASPathLen, b.ASPathLen); d != 0 {
		return d
	}
	if d := cmpUint32Asc(a.MED, b.MED); d != 0 {
		return d
	}
	if d := cmpSessionEBGPFirst(a.FromType, b.FromType); d != 0 {
		return d
	}
	if d := cmpLinkWeightAsc(a.IGPCost, b.IGPCost); d != 0 {
		return d
	}
	if d := cmpRouterIdAsc(a.NextHop, b.NextHop); d != 0 {
		return d
	}
	return cmpRouterIdAsc(a.FromID, b.FromID)
}

// Best returns the index of the preferred candidate among cs under Compare,
// or -1 if cs is empty. The comparator is total, so the result does not
// depend on iteration order.
func Best(cs []Candidate) int {
	if len(cs) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(cs); i++ {
		if Compare(cs[i], cs[best]) > 0 {
			best = i
		}
	}
	return best
}

func cmpUint32Desc(a, b uint32) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

func cmpUint32Asc(a, b uint32) int {
	switch {
	case a < b:
		return 1
	case a > b:
		return -1
	default:
		return 0
	}
}

func cmpIntAsc(a, b int) int {
	switch {
	case a < b:
		return 1
	case a > b:
		return -1
	default:
		return 0
	}
}

func cmpLinkWeightAsc(a, b LinkWeight) int {
	switch {
	case a < b:
		return 1
	case a > b:
		return -1
	default:
		return 0
	}
}

func cmpRouterIdAsc(a, b RouterId) int {
	switch {
	case a < b:
		return 1
	case a > b:
		return -1
	default:
		return 0
	}
}

// cmpSessionEBGPFirst prefers eBGP-learned entries over iBGP-learned ones
// (section 4.4.2d); the two iBGP flavors are equally preferred at this step.
func cmpSessionEBGPFirst(a, b SessionType) int {
	ae, be := a == EBGP, b == EBGP
	switch {
	case ae == be:
		return 0
	case ae:
		return 1
	default:
		return -1
	}
}

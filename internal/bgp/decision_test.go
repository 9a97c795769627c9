package bgp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func candidate(localPref uint32, asPathLen int, med uint32, fromType SessionType, igpCost LinkWeight, nextHop, fromID RouterId) Candidate {
	return Candidate{
		LocalPref: localPref,
		ASPathLen: asPathLen,
		MED:       med,
		FromType:  fromType,
		IGPCost:   igpCost,
		NextHop:   nextHop,
		FromID:    fromID,
	}
}

func TestCompareLocalPrefDominates(t *testing.T) {
	high := candidate(200, 5, 5, IBGPPeer, 10, 1, 1)
	low := candidate(100, 0, 0, EBGP, 0, 1, 1)
	require.Positive(t, Compare(high, low))
	require.Negative(t, Compare(low, high))
}

func TestCompareASPathLengthBreaksLocalPrefTie(t *testing.T) {
	short := candidate(100, 1, 0, EBGP, 0, 1, 1)
	long := candidate(100, 3, 0, EBGP, 0, 1, 1)
	require.Positive(t, Compare(short, long))
}

func TestCompareMEDLowerWins(t *testing.T) {
	lowMED := candidate(100, 1, 5, EBGP, 0, 1, 1)
	highMED := candidate(100, 1, 50, EBGP, 0, 1, 1)
	require.Positive(t, Compare(lowMED, highMED))
}

func TestCompareEBGPPreferredOverIBGP(t *testing.T) {
	eBGP := candidate(100, 1, 0, EBGP, 0, 1, 1)
	iBGP := candidate(100, 1, 0, IBGPPeer, 0, 1, 1)
	require.Positive(t, Compare(eBGP, iBGP))
}

func TestCompareIGPCostLowerWins(t *testing.T) {
	near := candidate(100, 1, 0, IBGPPeer, 1, 1, 1)
	far := candidate(100, 1, 0, IBGPPeer, 50, 1, 1)
	require.Positive(t, Compare(near, far))
}

func TestCompareNextHopThenFromIDFinalTieBreak(t *testing.T) {
	lowNextHop := candidate(100, 1, 0, IBGPPeer, 1, 2, 9)
	highNextHop := candidate(100, 1, 0, IBGPPeer, 1, 5, 9)
	require.Positive(t, Compare(lowNextHop, highNextHop))

	tiedExceptFromID := candidate(100, 1, 0, IBGPPeer, 1, 2, 3)
	higherFromID := candidate(100, 1, 0, IBGPPeer, 1, 2, 9)
	require.Positive(t, Compare(tiedExceptFromID, higherFromID))
}

func TestCompareIsTotalAndReflexive(t *testing.T) {
	c := candidate(100, 1, 0, IBGPPeer, 1, 2, 3)
	require.Zero(t, Compare(c, c))
}

func TestBestPicksMaximum(t *testing.T) {
	cs := []Candidate{
		candidate(100, 2, 0, EBGP, 0, 1, 1),
		candidate(200, 5, 0, EBGP, 0, 1, 1),
		candidate(100, 0, 0, EBGP, 0, 1, 1),
	}
	require.Equal(t, 1, Best(cs))
}

func TestBestEmpty(t *testing.T) {
	require.Equal(t, -1, Best(nil))
}

package router

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/transitorykris/bgpconverge/internal/bgp"
	"github.com/transitorykris/bgpconverge/internal/bgperr"
)

func TestEstablishSessionRejectsDuplicatePeer(t *testing.T) {
	r := NewInternal(1)
	require.NoError(t, r.EstablishSession(2, bgp.EBGP))
	err := r.EstablishSession(2, bgp.IBGPPeer)
	require.ErrorIs(t, err, bgperr.ErrSessionAlreadyExists)
}

func TestCloseSessionMissingPeerFails(t *testing.T) {
	r := NewInternal(1)
	err := r.CloseSession(2)
	require.ErrorIs(t, err, bgperr.ErrNoBgpSession)
}

func TestCloseSessionPurgesRIBInAndRIBOut(t *testing.T) {
	r := NewInternal(1)
	require.NoError(t, r.EstablishSession(2, bgp.EBGP))
	require.NoError(t, r.EstablishSession(3, bgp.IBGPPeer))

	r.ribIn[10] = map[bgp.RouterId]bgp.RIBEntry{
		2: {Route: bgp.Route{Prefix: 10}, FromType: bgp.EBGP, FromID: 2},
		3: {Route: bgp.Route{Prefix: 10}, FromType: bgp.IBGPPeer, FromID: 3},
	}
	r.ribOut[10] = map[bgp.RouterId]bgp.RIBEntry{
		2: {Route: bgp.Route{Prefix: 10}},
		3: {Route: bgp.Route{Prefix: 10}},
	}

	require.NoError(t, r.CloseSession(2))

	_, stillThere := r.ribIn[10][2]
	require.False(t, stillThere)
	_, untouched := r.ribIn[10][3]
	require.True(t, untouched)

	_, ribOutStillThere := r.ribOut[10][2]
	require.False(t, ribOutStillThere)

	_, hasSession := r.SessionType(2)
	require.False(t, hasSession)
}

func TestSessionsReturnsUnionOfAllThreeSets(t *testing.T) {
	r := NewInternal(1)
	require.NoError(t, r.EstablishSession(2, bgp.EBGP))
	require.NoError(t, r.EstablishSession(3, bgp.IBGPPeer))
	require.NoError(t, r.EstablishSession(4, bgp.IBGPClient))
	require.ElementsMatch(t, []bgp.RouterId{2, 3, 4}, r.Sessions())
}

package bgp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRouteEqualDefaultsAbsentAndExplicit(t *testing.T) {
	absent := Route{Prefix: 1, NextHop: 10, ASPath: []AsId{1, 2}}
	explicit := Route{Prefix: 1, NextHop: 10, ASPath: []AsId{1, 2}, LocalPref: SetU32(DefaultLocalPref), MED: SetU32(DefaultMED)}

	require.True(t, absent.Equal(explicit), "an explicit default must equal an absent attribute")
	require.True(t, explicit.Equal(absent))
}

func TestRouteEqualDiffersOnASPath(t *testing.T) {
	a := Route{Prefix: 1, NextHop: 10, ASPath: []AsId{1, 2}}
	b := Route{Prefix: 1, NextHop: 10, ASPath: []AsId{1, 2, 3}}
	require.False(t, a.Equal(b))
}

func TestRouteCloneIsIndependent(t *testing.T) {
	r := Route{Prefix: 1, NextHop: 10, ASPath: []AsId{1, 2}}
	clone := r.Clone()
	clone.ASPath[0] = 99
	require.Equal(t, AsId(1), r.ASPath[0], "mutating the clone must not affect the original")
}

func TestOptionalU32Resolve(t *testing.T) {
	require.Equal(t, DefaultLocalPref, UnsetU32().Resolve(DefaultLocalPref))
	require.Equal(t, uint32(200), SetU32(200).Resolve(DefaultLocalPref))
	require.False(t, UnsetU32().Present())
	require.True(t, SetU32(100).Present())
}

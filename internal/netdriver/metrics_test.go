package netdriver

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/transitorykris/bgpconverge/internal/bgp"
)

func TestMultipleDriversDoNotPanicOnMetricRegistration(t *testing.T) {
	d1 := New()
	d2 := New()
	require.NotNil(t, d1.Metrics())
	require.NotNil(t, d2.Metrics())

	families, err := d1.Metrics().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestMetricsCountEventsProcessed(t *testing.T) {
	d := New()
	r1 := d.AddRouter("r1")
	ext := d.AddExternalRouter("isp", 65002)
	require.NoError(t, d.AddEdge(r1, ext, 1, nil))

	converged, err := d.AdvertiseExternalRoute(ext, 10, []bgp.AsId{65002}, bgp.UnsetU32(), true)
	require.NoError(t, err)
	require.True(t, converged)

	require.Greater(t, testutil.ToFloat64(d.metrics.eventsProcessed), float64(0))
}

package netdriver_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/transitorykris/bgpconverge/internal/bgp"
	"github.com/transitorykris/bgpconverge/internal/bgperr"
	"github.com/transitorykris/bgpconverge/internal/netdriver"
	"github.com/transitorykris/bgpconverge/internal/scenario"
	"github.com/transitorykris/bgpconverge/internal/tracer"
)

// These mirror the six convergence scenarios, replayed directly against a
// netdriver.Driver rather than asserted from within the scenario package
// itself, so the driver's own public surface is what's under test here.

func loadScenario(t *testing.T, name string) *scenario.Scenario {
	t.Helper()
	data, err := os.ReadFile("../scenario/testdata/" + name)
	require.NoError(t, err)
	s, err := scenario.Decode(data)
	require.NoError(t, err)
	return s
}

func TestScenarioTwoExitSymmetricConverges(t *testing.T) {
	s := loadScenario(t, "s1.yaml")
	d := netdriver.New()
	res, err := scenario.Replay(d, s)
	require.NoError(t, err)
	require.True(t, res.Converged)

	route, ok, err := d.GetRoute(res.IDs["b0"], 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, res.IDs["e0"], route.FromID)

	route, ok, err = d.GetRoute(res.IDs["b1"], 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, res.IDs["e1"], route.FromID)
}

func TestScenarioOrderIndependenceBothOrdersAgree(t *testing.T) {
	run := func(reverse bool) bgp.RouterId {
		s := loadScenario(t, "s2.yaml")
		if reverse {
			s.Steps[1], s.Steps[2] = s.Steps[2], s.Steps[1]
		}
		d := netdriver.New()
		res, err := scenario.Replay(d, s)
		require.NoError(t, err)
		require.True(t, res.Converged)
		route, ok, err := d.GetRoute(res.IDs["r0"], 0)
		require.NoError(t, err)
		require.True(t, ok)
		return route.FromID
	}

	require.Equal(t, run(false), run(true))
}

func TestScenarioBadGadgetHitsIterationCap(t *testing.T) {
	s := loadScenario(t, "s3.yaml")
	d := netdriver.New()
	res, err := scenario.Replay(d, s)
	require.NoError(t, err)
	require.False(t, res.Converged, "e0's advertisement must leave the queue non-empty even with the spec's literal 1000-event cap")
	require.Equal(t, []bool{true, true, false}, res.ConvergeResults,
		"e2 and e1's advertisements must converge individually before e0's fails to")
}

func TestScenarioWithdrawThenReadvertiseRestoresState(t *testing.T) {
	s := loadScenario(t, "s4.yaml")
	d := netdriver.New()
	res, err := scenario.Replay(d, s)
	require.NoError(t, err)
	require.True(t, res.Converged)

	wantExit := map[string]string{"r0": "e0", "b0": "e0", "r1": "e1", "b1": "e1"}
	for _, name := range []string{"r0", "r1", "b0", "b1"} {
		route, ok, err := d.GetRoute(res.IDs[name], 0)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, res.IDs[wantExit[name]], route.Route.NextHop)
	}
}

func TestScenarioSessionCloseFallsBackToPeerSession(t *testing.T) {
	s := loadScenario(t, "s5.yaml")
	d := netdriver.New()
	res, err := scenario.Replay(d, s)
	require.NoError(t, err)
	require.True(t, res.Converged)

	route, ok, err := d.GetRoute(res.IDs["r0"], 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, res.IDs["e1"], route.Route.NextHop)
}

func carouselPathNames(d *netdriver.Driver, path []bgp.RouterId) []string {
	names := make([]string, len(path))
	for i, id := range path {
		names[i] = d.Name(id)
	}
	return names
}

func assertCarouselPath(t *testing.T, d *netdriver.Driver, res scenario.Result, source string, prefix bgp.Prefix, want ...string) {
	t.Helper()
	path, err := tracer.Trace(d, res.IDs[source], prefix)
	require.NoError(t, err, "expected a good path on %s for prefix %d", source, prefix)
	require.Equal(t, want, carouselPathNames(d, path), "unexpected path on %s for prefix %d", source, prefix)
}

func assertCarouselLoop(t *testing.T, d *netdriver.Driver, res scenario.Result, source string, prefix bgp.Prefix, want ...string) {
	t.Helper()
	_, err := tracer.Trace(d, res.IDs[source], prefix)
	var loopErr *bgperr.ForwardingLoopError
	require.ErrorAs(t, err, &loopErr, "expected a forwarding loop on %s for prefix %d", source, prefix)
	require.Equal(t, want, carouselPathNames(d, loopErr.Path), "unexpected loop path on %s for prefix %d", source, prefix)
}

// TestScenarioCarouselGadget mirrors TestS6CarouselGadget, replayed
// directly against a netdriver.Driver per this file's own convention
// (see the file-level comment).
func TestScenarioCarouselGadget(t *testing.T) {
	s := loadScenario(t, "s6.yaml")

	phase1 := *s
	phase1.Steps = s.Steps[:12]
	d1 := netdriver.New()
	res1, err := scenario.Replay(d1, &phase1)
	require.NoError(t, err)
	require.True(t, res1.Converged)

	assertCarouselPath(t, d1, res1, "rr", 1, "rr", "pr")
	assertCarouselPath(t, d1, res1, "rr", 2, "rr", "pr")
	assertCarouselPath(t, d1, res1, "r1", 1, "r1", "r2", "e1", "p1")
	assertCarouselPath(t, d1, res1, "r1", 2, "r1", "rr", "pr")
	assertCarouselPath(t, d1, res1, "r2", 1, "r2", "e1", "p1")
	assertCarouselPath(t, d1, res1, "r2", 2, "r2", "rr", "pr")
	assertCarouselPath(t, d1, res1, "r3", 1, "r3", "rr", "pr")
	assertCarouselPath(t, d1, res1, "r3", 2, "r3", "e4", "p4")
	assertCarouselPath(t, d1, res1, "r4", 1, "r4", "rr", "pr")
	assertCarouselPath(t, d1, res1, "r4", 2, "r4", "r3", "e4", "p4")
	assertCarouselPath(t, d1, res1, "e1", 1, "e1", "p1")
	assertCarouselPath(t, d1, res1, "e1", 2, "e1", "r2", "rr", "pr")
	assertCarouselPath(t, d1, res1, "e2", 1, "e2", "r1", "r2", "e1", "p1")
	assertCarouselPath(t, d1, res1, "e2", 2, "e2", "r4", "r3", "e4", "p4")
	assertCarouselPath(t, d1, res1, "e3", 1, "e3", "r1", "r2", "e1", "p1")
	assertCarouselPath(t, d1, res1, "e3", 2, "e3", "r4", "r3", "e4", "p4")
	assertCarouselPath(t, d1, res1, "e4", 1, "e4", "r3", "rr", "pr")
	assertCarouselPath(t, d1, res1, "e4", 2, "e4", "p4")

	phase2 := *s
	phase2.Steps = s.Steps[:15]
	d2 := netdriver.New()
	res2, err := scenario.Replay(d2, &phase2)
	require.NoError(t, err)
	require.True(t, res2.Converged)

	assertCarouselPath(t, d2, res2, "rr", 1, "rr", "pr")
	assertCarouselPath(t, d2, res2, "rr", 2, "rr", "pr")
	assertCarouselLoop(t, d2, res2, "r1", 1, "r1", "r2", "r1")
	assertCarouselPath(t, d2, res2, "r1", 2, "r1", "rr", "pr")
	assertCarouselLoop(t, d2, res2, "r2", 1, "r2", "r1", "r2")
	assertCarouselPath(t, d2, res2, "r2", 2, "r2", "r1", "rr", "pr")
	assertCarouselPath(t, d2, res2, "r3", 1, "r3", "r4", "e2", "p2")
	assertCarouselPath(t, d2, res2, "r3", 2, "r3", "r4", "e2", "p2")
	assertCarouselPath(t, d2, res2, "r4", 1, "r4", "e2", "p2")
	assertCarouselPath(t, d2, res2, "r4", 2, "r4", "e2", "p2")
	assertCarouselPath(t, d2, res2, "e1", 1, "e1", "p1")
	assertCarouselPath(t, d2, res2, "e1", 2, "e1", "r2", "r1", "rr", "pr")
	assertCarouselPath(t, d2, res2, "e2", 1, "e2", "p2")
	assertCarouselPath(t, d2, res2, "e2", 2, "e2", "p2")
	assertCarouselPath(t, d2, res2, "e3", 1, "e3", "r4", "e2", "p2")
	assertCarouselPath(t, d2, res2, "e3", 2, "e3", "r4", "e2", "p2")
	assertCarouselPath(t, d2, res2, "e4", 1, "e4", "r3", "r4", "e2", "p2")
	assertCarouselPath(t, d2, res2, "e4", 2, "e4", "p4")

	d3 := netdriver.New()
	res3, err := scenario.Replay(d3, s)
	require.NoError(t, err)
	require.True(t, res3.Converged)

	assertCarouselPath(t, d3, res3, "rr", 1, "rr", "pr")
	assertCarouselPath(t, d3, res3, "rr", 2, "rr", "pr")
	assertCarouselPath(t, d3, res3, "r1", 1, "r1", "e3", "p3")
	assertCarouselPath(t, d3, res3, "r1", 2, "r1", "e3", "p3")
	assertCarouselPath(t, d3, res3, "r2", 1, "r2", "r1", "e3", "p3")
	assertCarouselPath(t, d3, res3, "r2", 2, "r2", "r1", "e3", "p3")
	assertCarouselPath(t, d3, res3, "r3", 1, "r3", "r4", "e2", "p2")
	assertCarouselPath(t, d3, res3, "r3", 2, "r3", "r4", "e2", "p2")
	assertCarouselPath(t, d3, res3, "r4", 1, "r4", "e2", "p2")
	assertCarouselPath(t, d3, res3, "r4", 2, "r4", "e2", "p2")
	assertCarouselPath(t, d3, res3, "e1", 1, "e1", "p1")
	assertCarouselPath(t, d3, res3, "e1", 2, "e1", "r2", "r1", "e3", "p3")
	assertCarouselPath(t, d3, res3, "e2", 1, "e2", "p2")
	assertCarouselPath(t, d3, res3, "e2", 2, "e2", "p2")
	assertCarouselPath(t, d3, res3, "e3", 1, "e3", "p3")
	assertCarouselPath(t, d3, res3, "e3", 2, "e3", "p3")
	assertCarouselPath(t, d3, res3, "e4", 1, "e4", "r3", "r4", "e2", "p2")
	assertCarouselPath(t, d3, res3, "e4", 2, "e4", "p4")
}

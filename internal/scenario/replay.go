package scenario

import (
	"fmt"

	"github.com/transitorykris/bgpconverge/internal/bgp"
	"github.com/transitorykris/bgpconverge/internal/netdriver"
)

// Result is what Replay returns: the name→RouterId assignment so callers
// (tests, the CLI) can inspect results by the scenario's own names, the
// convergence outcome of the last "converge" step that ran (true if no
// such step ran — vacuously converged), and the outcome of every
// "converge" step in order, for scenarios whose steps interleave multiple
// converge checkpoints (section 8 scenario 3's per-advertisement
// convergence assertions).
type Result struct {
	IDs             map[string]bgp.RouterId
	Converged       bool
	ConvergeResults []bool
}

// Replay builds the scenario's topology on d and runs its steps in order,
// using only d's public API.
func Replay(d *netdriver.Driver, s *Scenario) (Result, error) {
	ids := make(map[string]bgp.RouterId, len(s.Routers)+len(s.ExternalRouters))
	res := Result{IDs: ids, Converged: true}
	for _, r := range s.Routers {
		ids[r.Name] = d.AddRouter(r.Name)
	}
	for _, r := range s.ExternalRouters {
		ids[r.Name] = d.AddExternalRouter(r.Name, bgp.AsId(r.AS))
	}

	resolve := func(name string) (bgp.RouterId, error) {
		id, ok := ids[name]
		if !ok {
			return 0, fmt.Errorf("scenario: unknown router %q", name)
		}
		return id, nil
	}

	for _, e := range s.Edges {
		from, err := resolve(e.From)
		if err != nil {
			return res, err
		}
		to, err := resolve(e.To)
		if err != nil {
			return res, err
		}
		var rev *bgp.LinkWeight
		if e.RevWeight != nil {
			w := bgp.LinkWeight(*e.RevWeight)
			rev = &w
		}
		if err := d.AddEdge(from, to, bgp.LinkWeight(e.Weight), rev); err != nil {
			return res, fmt.Errorf("scenario: edge %s->%s: %w", e.From, e.To, err)
		}
	}

	for _, decl := range s.IBGPSessions {
		source, err := resolve(decl.Source)
		if err != nil {
			return res, err
		}
		target, err := resolve(decl.Target)
		if err != nil {
			return res, err
		}
		if _, err := d.AddIBGPSession(source, target, decl.RouteReflector, false); err != nil {
			return res, fmt.Errorf("scenario: ibgp session %s<->%s: %w", decl.Source, decl.Target, err)
		}
	}

	for i, step := range s.Steps {
		converged, err := applyStep(d, resolve, step)
		if err != nil {
			return res, fmt.Errorf("scenario: step %d: %w", i, err)
		}
		if step.Converge != nil {
			res.Converged = converged
			res.ConvergeResults = append(res.ConvergeResults, converged)
		}
	}
	return res, nil
}

func applyStep(d *netdriver.Driver, resolve func(string) (bgp.RouterId, error), step Step) (bool, error) {
	switch {
	case step.WriteIGPTables != nil:
		converged, err := d.WriteIGPForwardingTables(false)
		return converged, err

	case step.Advertise != nil:
		a := step.Advertise
		from, err := resolve(a.From)
		if err != nil {
			return false, err
		}
		asPath := make([]bgp.AsId, len(a.ASPath))
		for i, v := range a.ASPath {
			asPath[i] = bgp.AsId(v)
		}
		med := bgp.UnsetU32()
		if a.MED != nil {
			med = bgp.SetU32(*a.MED)
		}
		converged, err := d.AdvertiseExternalRoute(from, bgp.Prefix(a.Prefix), asPath, med, false)
		return converged, err

	case step.Retract != nil:
		r := step.Retract
		from, err := resolve(r.From)
		if err != nil {
			return false, err
		}
		converged, err := d.RetractExternalRoute(from, bgp.Prefix(r.Prefix), false)
		return converged, err

	case step.CloseSession != nil:
		c := step.CloseSession
		router, err := resolve(c.Router)
		if err != nil {
			return false, err
		}
		peer, err := resolve(c.Peer)
		if err != nil {
			return false, err
		}
		converged, err := d.RemoveIBGPSession(router, peer, false)
		return converged, err

	case step.AddIBGPSession != nil:
		a := step.AddIBGPSession
		source, err := resolve(a.Source)
		if err != nil {
			return false, err
		}
		target, err := resolve(a.Target)
		if err != nil {
			return false, err
		}
		converged, err := d.AddIBGPSession(source, target, a.RouteReflector, false)
		return converged, err

	case step.SetLocalPref != nil:
		p := step.SetLocalPref
		router, err := resolve(p.Router)
		if err != nil {
			return false, err
		}
		peer, err := resolve(p.Peer)
		if err != nil {
			return false, err
		}
		return true, d.SetLocalPrefPolicy(router, peer, p.Value)

	case step.ClearLocalPref != nil:
		p := step.ClearLocalPref
		router, err := resolve(p.Router)
		if err != nil {
			return false, err
		}
		peer, err := resolve(p.Peer)
		if err != nil {
			return false, err
		}
		return true, d.ClearLocalPrefPolicy(router, peer)

	case step.SetNoExport != nil:
		n := step.SetNoExport
		router, err := resolve(n.Router)
		if err != nil {
			return false, err
		}
		from, err := resolve(n.From)
		if err != nil {
			return false, err
		}
		to, err := resolve(n.To)
		if err != nil {
			return false, err
		}
		return true, d.SetNoExport(router, from, to)

	case step.ClearNoExport != nil:
		n := step.ClearNoExport
		router, err := resolve(n.Router)
		if err != nil {
			return false, err
		}
		from, err := resolve(n.From)
		if err != nil {
			return false, err
		}
		to, err := resolve(n.To)
		if err != nil {
			return false, err
		}
		return true, d.ClearNoExport(router, from, to)

	case step.RunDecision != nil:
		router, err := resolve(step.RunDecision.Router)
		if err != nil {
			return false, err
		}
		return true, d.RunDecision(router)

	case step.StopAfterQueue != nil:
		d.StopAfterQueue(step.StopAfterQueue.N)
		return true, nil

	case step.Converge != nil:
		converged, err := d.DoQueue()
		return converged, err

	default:
		return false, fmt.Errorf("empty step")
	}
}

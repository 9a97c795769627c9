// Package netdriver implements the network driver of section 4.7: the
// global event queue, the router registry, and the full topology
// construction surface of section 6. It is the only component that may
// mutate more than one router's state in a single call (by draining the
// queue), per section 5's shared-resource policy.
//
// Its shape descends from kbgp's queue.Queue (generalized here from raw
// wire bytes to structured event.Event values, see internal/event) plus
// kbgp/speaker.go's pattern of a single owner type exposing
// Add/Remove-style mutators over a map of peers — generalized from one
// speaker's peer map to a registry of many routers.
package netdriver

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/transitorykris/bgpconverge/internal/bgp"
	"github.com/transitorykris/bgpconverge/internal/bgperr"
	"github.com/transitorykris/bgpconverge/internal/event"
	"github.com/transitorykris/bgpconverge/internal/igp"
	"github.com/transitorykris/bgpconverge/internal/router"
	"github.com/transitorykris/bgpconverge/internal/topo"
)

// Driver owns the router registry, the IGP topology, and the event queue.
// There is exactly one Driver per simulated network.
type Driver struct {
	devices  map[bgp.RouterId]router.Device
	internal map[bgp.RouterId]*router.Internal
	external map[bgp.RouterId]*router.External
	names    map[bgp.RouterId]string

	graph *topo.Graph
	queue *event.Queue

	cap    int
	nextID bgp.RouterId

	log     *slog.Logger
	reg     *prometheus.Registry
	metrics *metricsSet
}

// New constructs an empty Driver with the default iteration cap, a discard
// logger, and a private metrics registry.
func New(opts ...Option) *Driver {
	d := &Driver{
		devices:  make(map[bgp.RouterId]router.Device),
		internal: make(map[bgp.RouterId]*router.Internal),
		external: make(map[bgp.RouterId]*router.External),
		names:    make(map[bgp.RouterId]string),
		graph:    topo.New(),
		queue:    event.NewQueue(),
		cap:      defaultIterationCap,
		log:      discardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.reg = prometheus.NewRegistry()
	d.metrics = newMetricsSet(d.reg)
	return d
}

// Metrics returns the Driver's private Prometheus registry for scraping.
func (d *Driver) Metrics() *prometheus.Registry { return d.reg }

func (d *Driver) allocateID() bgp.RouterId {
	id := d.nextID
	d.nextID++
	return id
}

// AddRouter registers a new internal router named name, with AS fixed at
// bgp.DefaultInternalAS by convention, and returns its id.
func (d *Driver) AddRouter(name string) bgp.RouterId {
	id := d.allocateID()
	r := router.NewInternal(id)
	d.internal[id] = r
	d.devices[id] = r
	d.names[id] = name
	d.graph.AddNode(id)
	d.log.Debug("router added", "id", id, "name", name)
	return id
}

// AddExternalRouter registers a new external router named name in AS asID
// and returns its id.
func (d *Driver) AddExternalRouter(name string, asID bgp.AsId) bgp.RouterId {
	id := d.allocateID()
	e := router.NewExternal(id, asID)
	d.external[id] = e
	d.devices[id] = e
	d.names[id] = name
	d.log.Debug("external router added", "id", id, "name", name, "as", asID)
	return id
}

func (d *Driver) isExternal(id bgp.RouterId) bool {
	_, ok := d.external[id]
	return ok
}

// AddEdge installs a directed edge source -> target with the given weight,
// and target -> source with revWeight if provided, else the same weight
// (section 6). If either endpoint is external, the other end is added to
// the external router's neighbor set and the internal side automatically
// establishes an eBGP session toward it.
func (d *Driver) AddEdge(source, target bgp.RouterId, weight bgp.LinkWeight, revWeight *bgp.LinkWeight) error {
	if _, ok := d.devices[source]; !ok {
		return fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, source)
	}
	if _, ok := d.devices[target]; !ok {
		return fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, target)
	}

	d.graph.AddEdge(source, target, weight)
	back := weight
	if revWeight != nil {
		back = *revWeight
	}
	d.graph.AddEdge(target, source, back)

	if err := d.linkExternalEndpoint(source, target); err != nil {
		return err
	}
	if err := d.linkExternalEndpoint(target, source); err != nil {
		return err
	}
	return nil
}

// linkExternalEndpoint handles the case where one is external: the
// internal side establishes (or already has) an eBGP session toward it,
// and the external side learns it as a neighbor.
func (d *Driver) linkExternalEndpoint(maybeExternal, other bgp.RouterId) error {
	ext, ok := d.external[maybeExternal]
	if !ok {
		return nil
	}
	ext.AddNeighbor(other)
	internalRouter, ok := d.internal[other]
	if !ok {
		// Two external routers wired directly to each other: nothing on
		// the BGP side to establish.
		return nil
	}
	if _, has := internalRouter.SessionType(maybeExternal); has {
		return nil
	}
	if err := internalRouter.EstablishSession(maybeExternal, bgp.EBGP); err != nil {
		return err
	}
	return nil
}

// UpdateEdgeWeight overwrites an existing edge's weight without
// recomputing IGP tables (section 9's Open Question resolution).
func (d *Driver) UpdateEdgeWeight(source, target bgp.RouterId, weight bgp.LinkWeight) error {
	if !d.graph.UpdateEdgeWeight(source, target, weight) {
		return fmt.Errorf("%w: no edge %s -> %s", bgperr.ErrDeviceNotFound, source, target)
	}
	return nil
}

// AddIBGPSession establishes an iBGP session between source and target. If
// routeReflector, source treats target as iBGP-client and target treats
// source as iBGP-peer; otherwise both sides see iBGP-peer. If update, both
// sides are scheduled and the queue is drained.
func (d *Driver) AddIBGPSession(source, target bgp.RouterId, routeReflector, update bool) (bool, error) {
	src, ok := d.internal[source]
	if !ok {
		if d.isExternal(source) {
			return false, fmt.Errorf("%w: %s", bgperr.ErrDeviceIsExternalRouter, source)
		}
		return false, fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, source)
	}
	dst, ok := d.internal[target]
	if !ok {
		if d.isExternal(target) {
			return false, fmt.Errorf("%w: %s", bgperr.ErrDeviceIsExternalRouter, target)
		}
		return false, fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, target)
	}

	sourceSees := bgp.IBGPPeer
	targetSees := bgp.IBGPPeer
	if routeReflector {
		sourceSees = bgp.IBGPClient
	}

	if err := src.EstablishSession(target, sourceSees); err != nil {
		return false, err
	}
	if err := dst.EstablishSession(source, targetSees); err != nil {
		return false, err
	}

	if !update {
		return true, nil
	}
	return d.updateAndDrain(source, target)
}

// RemoveIBGPSession closes an iBGP session from both sides, purging RIB-in
// and RIB-out entries learned through it. If update, the affected routers
// are scheduled and the queue is drained.
func (d *Driver) RemoveIBGPSession(source, target bgp.RouterId, update bool) (bool, error) {
	src, ok := d.internal[source]
	if !ok {
		return false, fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, source)
	}
	dst, ok := d.internal[target]
	if !ok {
		return false, fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, target)
	}
	if err := src.CloseSession(target); err != nil {
		return false, err
	}
	if err := dst.CloseSession(source); err != nil {
		return false, err
	}
	if !update {
		return true, nil
	}
	return d.updateAndDrain(source, target)
}

// WriteIGPForwardingTables recomputes and installs the IGP forwarding
// table for every internal router, in unspecified order. If update, every
// internal router is scheduled and the queue is drained.
func (d *Driver) WriteIGPForwardingTables(update bool) (bool, error) {
	order := make([]bgp.RouterId, 0, len(d.internal))
	for id := range d.internal {
		order = append(order, id)
	}
	return d.WriteIGPForwardingTablesOrder(order, update)
}

// WriteIGPForwardingTablesOrder is WriteIGPForwardingTables but installs
// tables, and (if update) schedules the resulting BGP convergence, in the
// caller-supplied order. Final converged state does not depend on this
// order (section 8's order-independence property); this entry point exists
// so tests can exercise that property directly.
func (d *Driver) WriteIGPForwardingTablesOrder(order []bgp.RouterId, update bool) (bool, error) {
	for _, id := range order {
		r, ok := d.internal[id]
		if !ok {
			return false, fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, id)
		}
		table, err := igp.Compute(d.graph, id)
		if err != nil {
			d.metrics.decisionErrors.WithLabelValues("bad_igp_topology").Inc()
			return false, err
		}
		r.SetIGPTable(table)
	}
	if !update {
		return true, nil
	}
	for _, id := range order {
		if err := d.scheduleUpdate(id); err != nil {
			return false, err
		}
	}
	return d.DoQueue()
}

// AdvertiseExternalRoute originates prefix from src toward every one of
// its neighbors. If update, the queue is drained afterward.
func (d *Driver) AdvertiseExternalRoute(src bgp.RouterId, prefix bgp.Prefix, asPath []bgp.AsId, med bgp.OptionalU32, update bool) (bool, error) {
	ext, ok := d.external[src]
	if !ok {
		if _, isInternal := d.internal[src]; isInternal {
			return false, fmt.Errorf("%w: %s", bgperr.ErrDeviceIsExternalRouter, src)
		}
		return false, fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, src)
	}
	evs := ext.Advertise(prefix, asPath, med)
	d.enqueue(evs)
	if !update {
		return true, nil
	}
	return d.DoQueue()
}

// RetractExternalRoute withdraws prefix from src toward every one of its
// neighbors. If update, the queue is drained afterward.
func (d *Driver) RetractExternalRoute(src bgp.RouterId, prefix bgp.Prefix, update bool) (bool, error) {
	ext, ok := d.external[src]
	if !ok {
		if _, isInternal := d.internal[src]; isInternal {
			return false, fmt.Errorf("%w: %s", bgperr.ErrDeviceIsExternalRouter, src)
		}
		return false, fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, src)
	}
	evs := ext.Withdraw(prefix)
	d.enqueue(evs)
	if !update {
		return true, nil
	}
	return d.DoQueue()
}

// StopAfterQueue sets the iteration cap to n. A nil n restores the
// default cap (section 6).
func (d *Driver) StopAfterQueue(n *int) {
	if n == nil {
		d.cap = defaultIterationCap
		return
	}
	d.cap = *n
}

func (d *Driver) updateAndDrain(ids ...bgp.RouterId) (bool, error) {
	for _, id := range ids {
		if err := d.scheduleUpdate(id); err != nil {
			return false, err
		}
	}
	return d.DoQueue()
}

func (d *Driver) scheduleUpdate(id bgp.RouterId) error {
	r, ok := d.internal[id]
	if !ok {
		return fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, id)
	}
	evs, err := r.ScheduleUpdate()
	d.enqueue(evs)
	if err != nil {
		d.metrics.decisionErrors.WithLabelValues("schedule_update").Inc()
		return err
	}
	return nil
}

// ScheduleUpdate is the exported form of section 4.7's schedule_update: it
// enqueues the events produced by running decision and dissemination for
// every known prefix on router id, without draining the queue.
func (d *Driver) ScheduleUpdate(id bgp.RouterId) error {
	return d.scheduleUpdate(id)
}

func (d *Driver) enqueue(evs []event.Event) {
	if len(evs) == 0 {
		return
	}
	d.queue.PushAll(evs)
	d.metrics.eventsEnqueued.Add(float64(len(evs)))
	d.metrics.queueDepth.Set(float64(d.queue.Len()))
}

// DoQueue drains the event queue, dispatching each event to its
// destination device, up to the iteration cap (section 4.7). It returns
// true if the queue drained (converged), false if the cap was exhausted
// with events still pending, and a non-nil error for any structural
// failure other than a recovered NoBgpSession.
func (d *Driver) DoQueue() (bool, error) {
	remaining := d.cap
	for remaining > 0 {
		ev, ok := d.queue.Pop()
		if !ok {
			d.metrics.convergenceRuns.WithLabelValues("converged").Inc()
			return true, nil
		}
		d.metrics.eventsProcessed.Inc()
		d.metrics.queueDepth.Set(float64(d.queue.Len()))
		remaining--

		dev, ok := d.devices[ev.To]
		if !ok {
			// The destination was removed after the event was enqueued;
			// there is no router interface left to route this case
			// through, so treat it the same as a locally recovered
			// missing session.
			d.log.Warn("event addressed to unknown device, dropping", "to", ev.To)
			d.metrics.sessionsDropped.Inc()
			continue
		}

		produced, err := dev.HandleEvent(ev)
		if err != nil {
			if errors.Is(err, bgperr.ErrNoBgpSession) {
				d.log.Warn("no bgp session for delivered event, dropping", "from", ev.From, "to", ev.To, "error", err)
				d.metrics.sessionsDropped.Inc()
				continue
			}
			d.metrics.decisionErrors.WithLabelValues("handle_event").Inc()
			d.metrics.convergenceRuns.WithLabelValues("error").Inc()
			return false, err
		}
		d.enqueue(produced)
	}

	if d.queue.Len() > 0 {
		d.metrics.convergenceRuns.WithLabelValues("cap_exceeded").Inc()
		return false, nil
	}
	d.metrics.convergenceRuns.WithLabelValues("converged").Inc()
	return true, nil
}

// --- Diagnostic surface (section 6, read-only) --------------------------

// GetRoute returns the currently selected RIB entry for prefix on an
// internal router, if any.
func (d *Driver) GetRoute(router bgp.RouterId, prefix bgp.Prefix) (bgp.RIBEntry, bool, error) {
	r, ok := d.internal[router]
	if !ok {
		return bgp.RIBEntry{}, false, fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, router)
	}
	entry, ok := r.GetRoute(prefix)
	return entry, ok, nil
}

// GetSelectedBGPRoute is an alias for GetRoute kept for parity with the
// section 6 diagnostic surface's naming.
func (d *Driver) GetSelectedBGPRoute(router bgp.RouterId, prefix bgp.Prefix) (bgp.RIBEntry, bool, error) {
	return d.GetRoute(router, prefix)
}

// GetKnownBGPRoutes returns every prefix router has ever seen in an event.
func (d *Driver) GetKnownBGPRoutes(router bgp.RouterId) ([]bgp.Prefix, error) {
	r, ok := d.internal[router]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, router)
	}
	return r.KnownPrefixes(), nil
}

// IGPTable returns the currently installed IGP forwarding table for an
// internal router, used by internal/tracer to resolve next hops.
func (d *Driver) IGPTable(id bgp.RouterId) (igp.Table, error) {
	r, ok := d.internal[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, id)
	}
	return r.IGPTable(), nil
}

// Name returns the human-readable name a router was registered with.
func (d *Driver) Name(id bgp.RouterId) string { return d.names[id] }

// IsInternal reports whether id names an internal router known to this
// driver.
func (d *Driver) IsInternal(id bgp.RouterId) bool {
	_, ok := d.internal[id]
	return ok
}

// SetLocalPrefPolicy exposes Internal's per-neighbor local_pref override
// through the driver, for scenario/CLI callers that only hold a Driver.
func (d *Driver) SetLocalPrefPolicy(router, peer bgp.RouterId, localPref uint32) error {
	r, ok := d.internal[router]
	if !ok {
		return fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, router)
	}
	r.SetLocalPrefPolicy(peer, localPref)
	return nil
}

// SetNoExport exposes Internal's per-pair no-export policy through the
// driver, for scenario/CLI callers that only hold a Driver.
func (d *Driver) SetNoExport(router, from, to bgp.RouterId) error {
	r, ok := d.internal[router]
	if !ok {
		return fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, router)
	}
	r.SetNoExport(from, to)
	return nil
}

// ClearLocalPrefPolicy removes a local_pref override previously set via
// SetLocalPrefPolicy.
func (d *Driver) ClearLocalPrefPolicy(router, peer bgp.RouterId) error {
	r, ok := d.internal[router]
	if !ok {
		return fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, router)
	}
	r.ClearLocalPrefPolicy(peer)
	return nil
}

// ClearNoExport removes a no-export rule previously set via SetNoExport.
func (d *Driver) ClearNoExport(router, from, to bgp.RouterId) error {
	r, ok := d.internal[router]
	if !ok {
		return fmt.Errorf("%w: %s", bgperr.ErrDeviceNotFound, router)
	}
	r.ClearNoExport(from, to)
	return nil
}

// RunDecision re-runs decision and dissemination for every known prefix on
// router, enqueueing the resulting events without draining the queue. It
// is the scenario surface's hook for "re-run decision on the affected
// egress" after a policy change (section 8 scenario 6), which section 4.7
// does not otherwise expose as a standalone call distinct from
// ScheduleUpdate.
func (d *Driver) RunDecision(router bgp.RouterId) error {
	return d.scheduleUpdate(router)
}

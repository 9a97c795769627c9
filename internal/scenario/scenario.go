// Package scenario decodes a YAML description of a topology and a sequence
// of stimuli (advertisements, withdrawals, session and policy changes) and
// replays it against a netdriver.Driver using only that driver's public
// topology-construction surface — this package has no privileged access to
// driver internals (section 6's "Scenario surface").
//
// The struct-tag decoding style is grounded on
// malbeclabs-doublezero/lake/pkg/isis/location.go's yaml.Unmarshal-into-
// tagged-struct pattern.
package scenario

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Router is an internal router declared by name.
type Router struct {
	Name string `yaml:"name"`
}

// ExternalRouter is an external peer declared by name and AS number.
type ExternalRouter struct {
	Name string `yaml:"name"`
	AS   uint32 `yaml:"as"`
}

// Edge is a directed link plus optional asymmetric reverse weight,
// matching netdriver.Driver.AddEdge's signature.
type Edge struct {
	From      string   `yaml:"from"`
	To        string   `yaml:"to"`
	Weight    float64  `yaml:"weight"`
	RevWeight *float64 `yaml:"rev_weight,omitempty"`
}

// IBGPSessionDecl declares an iBGP session at topology-construction time,
// before any step runs.
type IBGPSessionDecl struct {
	Source         string `yaml:"source"`
	Target         string `yaml:"target"`
	RouteReflector bool   `yaml:"route_reflector"`
}

// AdvertiseStep originates a prefix from an external router.
type AdvertiseStep struct {
	From   string   `yaml:"from"`
	Prefix uint32   `yaml:"prefix"`
	ASPath []uint32 `yaml:"as_path"`
	MED    *uint32  `yaml:"med,omitempty"`
}

// RetractStep withdraws a previously advertised prefix.
type RetractStep struct {
	From   string `yaml:"from"`
	Prefix uint32 `yaml:"prefix"`
}

// CloseSessionStep closes an iBGP session established earlier, either
// declared up front or via an AddIBGPSessionStep.
type CloseSessionStep struct {
	Router string `yaml:"router"`
	Peer   string `yaml:"peer"`
}

// AddIBGPSessionStep establishes an iBGP session mid-scenario (as opposed
// to at topology-construction time via IBGPSessionDecl), used by scenarios
// that re-establish a session closed by an earlier CloseSessionStep.
type AddIBGPSessionStep struct {
	Source         string `yaml:"source"`
	Target         string `yaml:"target"`
	RouteReflector bool   `yaml:"route_reflector"`
}

// PolicyPeerStep names a router and a peer, shared by the local_pref
// set/clear steps.
type PolicyPeerStep struct {
	Router string `yaml:"router"`
	Peer   string `yaml:"peer"`
	Value  uint32 `yaml:"value,omitempty"`
}

// NoExportStep names a router and the (from, to) pair a no-export rule
// applies to.
type NoExportStep struct {
	Router string `yaml:"router"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
}

// RunDecisionStep re-runs decision and dissemination on a single router
// without draining the queue (section 8 scenario 6's "re-run decision on
// the affected egress").
type RunDecisionStep struct {
	Router string `yaml:"router"`
}

// StopAfterQueueStep sets the driver's iteration cap (section 6's
// stop_after_queue). A nil N restores the default cap.
type StopAfterQueueStep struct {
	N *int `yaml:"n,omitempty"`
}

// Step is a tagged union of the scenario step kinds: the decoder sets
// exactly one field per YAML list entry. Decode accepts an all-nil Step;
// Replay rejects it as an empty step.
type Step struct {
	WriteIGPTables *struct{}           `yaml:"write_igp_tables,omitempty"`
	Advertise      *AdvertiseStep      `yaml:"advertise,omitempty"`
	Retract        *RetractStep        `yaml:"retract,omitempty"`
	CloseSession   *CloseSessionStep   `yaml:"close_session,omitempty"`
	AddIBGPSession *AddIBGPSessionStep `yaml:"add_ibgp_session,omitempty"`
	SetLocalPref   *PolicyPeerStep     `yaml:"set_local_pref,omitempty"`
	ClearLocalPref *PolicyPeerStep     `yaml:"clear_local_pref,omitempty"`
	SetNoExport    *NoExportStep       `yaml:"set_no_export,omitempty"`
	ClearNoExport  *NoExportStep       `yaml:"clear_no_export,omitempty"`
	RunDecision    *RunDecisionStep    `yaml:"run_decision,omitempty"`
	StopAfterQueue *StopAfterQueueStep `yaml:"stop_after_queue,omitempty"`
	Converge       *struct{}           `yaml:"converge,omitempty"`
}

// Scenario is the full decoded YAML document: a topology plus an ordered
// sequence of stimuli.
type Scenario struct {
	Name            string            `yaml:"name"`
	Routers         []Router          `yaml:"routers"`
	ExternalRouters []ExternalRouter  `yaml:"external_routers"`
	Edges           []Edge            `yaml:"edges"`
	IBGPSessions    []IBGPSessionDecl `yaml:"ibgp_sessions"`
	Steps           []Step            `yaml:"steps"`
}

// Decode parses a scenario document.
func Decode(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: decode: %w", err)
	}
	return &s, nil
}

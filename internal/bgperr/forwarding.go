package bgperr

import (
	"fmt"
	"strings"

	"github.com/transitorykris/bgpconverge/internal/bgp"
)

// ForwardingLoopError is returned by the tracer when walking the selected
// next hops revisits a router already on the path. It carries the partial
// path accumulated up to (and including) the repeated hop.
type ForwardingLoopError struct {
	Path []bgp.RouterId
}

func (e *ForwardingLoopError) Error() string {
	return fmt.Sprintf("forwarding loop: %s", formatPath(e.Path))
}

// ForwardingBlackHoleError is returned by the tracer when a router on the
// path has no selected route for the traced prefix. It carries the partial
// path accumulated up to (and including) the router with no route.
type ForwardingBlackHoleError struct {
	Path []bgp.RouterId
}

func (e *ForwardingBlackHoleError) Error() string {
	return fmt.Sprintf("forwarding black hole: %s", formatPath(e.Path))
}

func formatPath(path []bgp.RouterId) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = id.String()
	}
	return strings.Join(parts, " -> ")
}

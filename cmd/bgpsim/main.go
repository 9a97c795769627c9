// Command bgpsim is a thin Cobra CLI over the internal/scenario replay
// surface: it loads a YAML scenario, runs it to convergence (or until the
// iteration cap is hit), and prints the resulting RIB selections.
//
// Its shape is restructured from kbgp/cmd/main.go's bare demo harness into
// the NewXCmd().Command() constructor pattern of
// malbeclabs-doublezero/controlplane/telemetry/internal/data/cli/root.go.
package main

import (
	"os"

	"github.com/transitorykris/bgpconverge/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}

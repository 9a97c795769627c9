package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/transitorykris/bgpconverge/internal/bgp"
	"github.com/transitorykris/bgpconverge/internal/netdriver"
	"github.com/transitorykris/bgpconverge/internal/scenario"
	"github.com/transitorykris/bgpconverge/internal/tracer"
)

// RunCmd implements "bgpsim run <scenario.yaml>".
type RunCmd struct{}

// NewRunCmd constructs the run command.
func NewRunCmd() *RunCmd { return &RunCmd{} }

// Command returns the cobra.Command for run.
func (c *RunCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml|s1..s6>",
		Short: "Replay a scenario to convergence and print the resulting RIBs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
			if err != nil {
				return fmt.Errorf("failed to get verbose flag: %w", err)
			}
			traceSpecs, err := cmd.Flags().GetStringSlice("trace")
			if err != nil {
				return fmt.Errorf("failed to get trace flag: %w", err)
			}

			log := newLogger(verbose)

			data, err := loadScenarioSource(args[0])
			if err != nil {
				return fmt.Errorf("failed to read scenario: %w", err)
			}
			s, err := scenario.Decode(data)
			if err != nil {
				return fmt.Errorf("failed to decode scenario: %w", err)
			}

			d := netdriver.New(netdriver.WithLogger(log))
			res, err := scenario.Replay(d, s)
			if err != nil {
				return fmt.Errorf("failed to replay scenario %q: %w", s.Name, err)
			}

			printRIBs(d, res)

			if !res.Converged {
				fmt.Fprintln(os.Stderr, "did not converge: iteration cap exhausted with events still pending")
			}

			for _, spec := range traceSpecs {
				if err := runTrace(d, res, spec); err != nil {
					log.Error("trace failed", "spec", spec, "error", err)
				}
			}

			if !res.Converged {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringSlice("trace", nil, "Trace a forwarding path as router:prefix (repeatable)")

	return cmd
}

// loadScenarioSource resolves arg as one of the bundled s1..s6 scenarios
// by short name, falling back to reading it as a file path.
func loadScenarioSource(arg string) ([]byte, error) {
	if data, ok := scenario.Builtin(arg); ok {
		return data, nil
	}
	return os.ReadFile(arg)
}

func printRIBs(d *netdriver.Driver, res scenario.Result) {
	names := make([]string, 0, len(res.IDs))
	for name := range res.IDs {
		names = append(names, name)
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Router", "Prefix", "Next Hop", "AS Path", "Local Pref", "MED", "IGP Cost", "Learned From"})
	table.SetAutoFormatHeaders(false)
	table.SetRowLine(true)

	for _, name := range names {
		id := res.IDs[name]
		if !d.IsInternal(id) {
			continue
		}
		prefixes, err := d.GetKnownBGPRoutes(id)
		if err != nil {
			continue
		}
		sort.Slice(prefixes, func(i, j int) bool { return prefixes[i] < prefixes[j] })
		for _, prefix := range prefixes {
			entry, ok, err := d.GetRoute(id, prefix)
			if err != nil || !ok {
				table.Append([]string{name, prefix.String(), "-", "-", "-", "-", "-", "(no selected route)"})
				continue
			}
			igpCost := "-"
			if entry.IGPCost != nil {
				igpCost = strconv.FormatFloat(float64(*entry.IGPCost), 'f', -1, 64)
			}
			table.Append([]string{
				name,
				prefix.String(),
				entry.Route.NextHop.String(),
				formatASPath(entry.Route.ASPath),
				strconv.FormatUint(uint64(entry.Route.LocalPref.Resolve(bgp.DefaultLocalPref)), 10),
				strconv.FormatUint(uint64(entry.Route.MED.Resolve(bgp.DefaultMED)), 10),
				igpCost,
				d.Name(entry.FromID),
			})
		}
	}
	table.Render()
}

func formatASPath(path []bgp.AsId) string {
	if len(path) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(path))
	for i, as := range path {
		parts[i] = strconv.FormatUint(uint64(as), 10)
	}
	return strings.Join(parts, " ")
}

func runTrace(d *netdriver.Driver, res scenario.Result, spec string) error {
	router, prefixStr, ok := strings.Cut(spec, ":")
	if !ok {
		return fmt.Errorf("trace spec %q must be router:prefix", spec)
	}
	id, ok := res.IDs[router]
	if !ok {
		return fmt.Errorf("unknown router %q", router)
	}
	prefixNum, err := strconv.ParseUint(prefixStr, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid prefix %q: %w", prefixStr, err)
	}

	path, err := tracer.Trace(d, id, bgp.Prefix(prefixNum))
	names := make([]string, len(path))
	for i, hop := range path {
		names[i] = d.Name(hop)
	}
	fmt.Printf("trace %s for %s: %s\n", router, bgp.Prefix(prefixNum), strings.Join(names, " -> "))
	return err
}

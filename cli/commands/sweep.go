package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/robgonnella/fleetprobe/internal/core"
	"github.com/robgonnella/fleetprobe/internal/discovery"
	"github.com/robgonnella/fleetprobe/internal/event"
	"github.com/spf13/cobra"
)

func sweep(props *CommandProps) *cobra.Command {
	var ports []int
	var minOctet int
	var maxOctet int
	var concurrency int
	var noThreads bool
	var dryRun bool
	var strategy string
	var noMatch bool
	var progress bool

	cmd := &cobra.Command{
		Use:   "sweep [ranges...]",
		Short: "Sweep address ranges for open service ports",
		Long: `Sweep address ranges for open service ports and classify every open
host as a registered target or an unknown server.

Ranges use dotted octet notation where each octet is a value (10),
an inclusive range (1-20) or a list (1,5,9). Missing trailing octets
expand to the --min and --max bounds. CIDR notation is also accepted.

  fleetprobe sweep 10.1.1-2 -p 5989 -p 5988
  fleetprobe sweep 10.1.1.1,2 --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appCore, err := props.core()

			if err != nil {
				return err
			}

			conf := appCore.Conf()

			req := discovery.SweepRequest{
				Ranges:      args,
				Ports:       conf.Sweep.Ports,
				MinOctet:    conf.Sweep.MinOctet,
				MaxOctet:    conf.Sweep.MaxOctet,
				Concurrency: conf.Sweep.Concurrency,
				DryRun:      dryRun,
			}

			flags := cmd.Flags()

			if flags.Changed("port") {
				req.Ports = ports
			}

			if flags.Changed("min") {
				req.MinOctet = minOctet
			}

			if flags.Changed("max") {
				req.MaxOctet = maxOctet
			}

			if flags.Changed("concurrency") {
				req.Concurrency = concurrency
			}

			if noThreads {
				req.Concurrency = 1
			}

			if !flags.Changed("strategy") {
				strategy = conf.Sweep.Strategy
			}

			req.Strategy, err = discovery.ParseStrategy(strategy)

			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			stop := func() {}

			if progress && !dryRun {
				stop = followSweep(appCore.Events(), out)
			}

			report, err := appCore.Sweep(cmd.Context(), req, !noMatch)

			stop()

			if err != nil {
				return err
			}

			printSweepReport(out, report, !noMatch)

			return nil
		},
	}

	cmd.Flags().IntSliceVarP(&ports, "port", "p", nil, "port to test, repeatable (default from config)")
	cmd.Flags().IntVar(&minOctet, "min", 1, "lowest value for unspecified octets")
	cmd.Flags().IntVar(&maxOctet, "max", 254, "highest value for unspecified octets")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", discovery.DefaultConcurrency, "number of concurrent probes")
	cmd.Flags().BoolVar(&noThreads, "no-threads", false, "probe one target at a time")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list targets without probing")
	cmd.Flags().StringVar(&strategy, "strategy", "connect", "probe strategy: connect, handshake or both")
	cmd.Flags().BoolVar(&noMatch, "no-match", false, "do not match open hosts against the registry")
	cmd.Flags().BoolVar(&progress, "progress", false, "print open hosts as they are found")

	return cmd
}

// followSweep prints open ports as they are found until the returned
// function is called
func followSweep(events event.Manager, out io.Writer) func() {
	return follow(events, event.SweepResultType, out, func(out io.Writer, evt event.Event) {
		if r, ok := evt.Payload.(discovery.ScanResult); ok && r.Open {
			fmt.Fprintf(out, "open %s:%d\n", r.Address, r.Port)
		}
	})
}

func printSweepReport(out io.Writer, report *core.SweepReport, matched bool) {
	if report.DryRun {
		tw := newTable(out, "ADDRESS", "PORT")

		for _, t := range report.Listing {
			row(tw, t.Address, t.Port)
		}

		tw.Flush()

		fmt.Fprintf(out, "\nplanned: %d\n", report.Planned)

		return
	}

	if matched && len(report.Matches) > 0 {
		tw := newTable(out, "ADDRESS", "PORT", "CLASS", "TARGET", "STATUS", "PRINCIPAL", "NAMESPACE", "DETAIL")

		for _, m := range report.Matches {
			targetID := "-"

			if m.TargetID > 0 {
				targetID = fmt.Sprint(m.TargetID)
			}

			category := "-"

			if m.Category != "" {
				category = m.Category.String()
			}

			row(tw, m.Address, m.Port, m.Classification, targetID, category, m.Principal, m.Namespace, m.Detail)
		}

		tw.Flush()
	} else {
		tw := newTable(out, "ADDRESS", "PORT")

		for _, h := range report.OpenHosts {
			row(tw, h.Address, h.Port)
		}

		tw.Flush()
	}

	fmt.Fprintf(
		out,
		"\nsweep %s: planned %d, tested %d, open %d, known %d, unknown %d, elapsed %s\n",
		report.ID,
		report.Planned,
		report.Tested,
		len(report.OpenHosts),
		report.Known,
		report.Unknown,
		report.Elapsed.Round(time.Millisecond),
	)

	if report.Interrupted {
		fmt.Fprintln(out, "sweep interrupted: partial results")
	}

	if len(report.Failures) > 0 {
		fmt.Fprintln(out)
		printFailures(out, report.Failures)
	}
}

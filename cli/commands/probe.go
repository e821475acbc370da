package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/robgonnella/fleetprobe/internal/config"
	"github.com/robgonnella/fleetprobe/internal/core"
	"github.com/robgonnella/fleetprobe/internal/event"
	"github.com/robgonnella/fleetprobe/internal/health"
	"github.com/robgonnella/fleetprobe/internal/status"
	"github.com/robgonnella/fleetprobe/internal/target"
	"github.com/spf13/cobra"
)

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))

	for _, a := range args {
		id, err := strconv.Atoi(a)

		if err != nil {
			return nil, fmt.Errorf("invalid target id %q", a)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func probe(props *CommandProps) *cobra.Command {
	var sequential bool
	var noPing bool
	var noStore bool
	var followRecords bool

	cmd := &cobra.Command{
		Use:   "probe [ids...]",
		Short: "Health check registered targets and record the outcome",
		Long: `Health check registered targets. With no ids every registered target
is probed. Disabled targets are recorded as Disabled without any network
traffic.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)

			if err != nil {
				return err
			}

			appCore, err := props.core(func(conf *config.Config) {
				if noPing {
					conf.Probe.SkipPing = true
				}
			})

			if err != nil {
				return err
			}

			mode := health.ModeThreaded

			if sequential {
				mode = health.ModeSequential
			}

			out := cmd.OutOrStdout()

			stop := func() {}

			if followRecords && !noStore {
				stop = followOutcomes(appCore.Events(), out)
			}

			report, err := appCore.ProbeFleet(cmd.Context(), ids, mode, !noStore)

			stop()

			if err != nil {
				return err
			}

			targets, err := appCore.Targets().List(&target.Filter{IDs: ids})

			if err != nil {
				return err
			}

			printProbeReport(out, report, targets)

			return nil
		},
	}

	cmd.Flags().BoolVar(&sequential, "sequential", false, "probe one target at a time in id order")
	cmd.Flags().BoolVar(&noPing, "no-ping", false, "skip the reachability ping")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not record outcomes in the history")
	cmd.Flags().BoolVar(&followRecords, "follow", false, "print outcomes as they are recorded")

	return cmd
}

// followOutcomes prints outcomes as they are recorded until the returned
// function is called
func followOutcomes(events event.Manager, out io.Writer) func() {
	return follow(events, event.OutcomeRecordedType, out, func(out io.Writer, evt event.Event) {
		if o, ok := evt.Payload.(*status.Outcome); ok {
			fmt.Fprintf(out, "recorded target %d: %s\n", o.TargetID, o.Category)
		}
	})
}

func printProbeReport(out io.Writer, report *core.ProbeReport, targets []*target.Target) {
	byID := map[int]*target.Target{}

	for _, t := range targets {
		byID[t.ID] = t
	}

	tw := newTable(out, "ID", "ENDPOINT", "COMPANY", "STATUS", "CODE", "ELAPSED", "DETAIL")

	for _, o := range report.Outcomes {
		endpoint, company := "-", "-"

		if t, ok := byID[o.TargetID]; ok {
			endpoint = t.HostPort()
			company = t.Company
		}

		row(tw, o.TargetID, endpoint, company, o.Category, o.Category.Code(), o.Elapsed.Round(time.Millisecond), o.Detail)
	}

	tw.Flush()

	fmt.Fprintln(out)

	printCategorySummary(out, report.Summary)

	fmt.Fprintf(out, "\nprobed %d targets in %s\n", len(report.Outcomes), report.Elapsed.Round(time.Millisecond))

	if report.Interrupted {
		fmt.Fprintln(out, "probe interrupted: partial results")
	}

	if !report.Persisted {
		fmt.Fprintln(out, "outcomes not recorded")
	}
}

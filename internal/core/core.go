package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robgonnella/fleetprobe/internal/config"
	"github.com/robgonnella/fleetprobe/internal/discovery"
	"github.com/robgonnella/fleetprobe/internal/event"
	"github.com/robgonnella/fleetprobe/internal/health"
	"github.com/robgonnella/fleetprobe/internal/history"
	"github.com/robgonnella/fleetprobe/internal/logger"
	"github.com/robgonnella/fleetprobe/internal/matcher"
	"github.com/robgonnella/fleetprobe/internal/status"
	"github.com/robgonnella/fleetprobe/internal/target"
)

// SweepReport the result of a sweep and the classification of its
// open hosts
type SweepReport struct {
	*discovery.SweepResult
	Matches []matcher.Match
	Known   int
	Unknown int
}

// ProbeReport the result of probing the fleet
type ProbeReport struct {
	Outcomes    []*status.Outcome
	Summary     map[status.Category]int
	Persisted   bool
	Interrupted bool
	Elapsed     time.Duration
}

// Core represents our core data structure
type Core struct {
	conf     *config.Config
	targets  *target.TargetService
	store    history.Store
	reporter *history.Reporter
	sweeper  Sweeper
	matcher  Classifier
	fleet    FleetProber
	events   event.Manager
	log      logger.Logger
}

// New returns new core module for given configuration and collaborators
func New(
	conf *config.Config,
	targets *target.TargetService,
	store history.Store,
	sweeper Sweeper,
	matcher Classifier,
	fleet FleetProber,
	events event.Manager,
) *Core {
	return &Core{
		conf:     conf,
		targets:  targets,
		store:    store,
		reporter: history.NewReporter(store),
		sweeper:  sweeper,
		matcher:  matcher,
		fleet:    fleet,
		events:   events,
		log:      logger.New(),
	}
}

// Conf returns the active configuration
func (c *Core) Conf() *config.Config {
	return c.conf
}

// Targets returns the target registry service
func (c *Core) Targets() *target.TargetService {
	return c.targets
}

// Events returns the event manager used to follow sweeps and probes
func (c *Core) Events() event.Manager {
	return c.events
}

// Sweep sweeps the requested ranges and, when match is set, classifies
// every open host against the registry
func (c *Core) Sweep(ctx context.Context, req discovery.SweepRequest, match bool) (*SweepReport, error) {
	result, err := c.sweeper.Sweep(ctx, req)

	if err != nil {
		return nil, err
	}

	report := &SweepReport{
		SweepResult: result,
		Matches:     []matcher.Match{},
	}

	if match && !result.DryRun && len(result.OpenHosts) > 0 {
		matches, err := c.matcher.Classify(ctx, result.OpenHosts)

		if err != nil && !isCancellation(err) {
			return nil, err
		}

		report.Matches = matches
		report.Known, report.Unknown = matcher.Counts(matches)
		report.Interrupted = report.Interrupted || err != nil
	}

	c.events.Send(event.Event{
		Type:    event.SweepCompleteType,
		Payload: report,
	})

	return report, nil
}

// ProbeFleet health checks the targets identified by ids, every target when
// ids is empty, and appends every outcome to the history store when persist
// is set. A history store failure aborts the run.
func (c *Core) ProbeFleet(ctx context.Context, ids []int, mode health.Mode, persist bool) (*ProbeReport, error) {
	start := time.Now()

	outcomes, err := c.fleet.ProbeAll(ctx, ids, mode)

	if err != nil && !isCancellation(err) {
		return nil, err
	}

	report := &ProbeReport{
		Outcomes:    outcomes,
		Summary:     health.Summarize(outcomes),
		Persisted:   persist,
		Interrupted: err != nil,
	}

	if persist {
		// interrupted runs still record what they gathered
		storeCtx := context.WithoutCancel(ctx)

		for _, o := range outcomes {
			if err := c.store.Append(storeCtx, o); err != nil {
				wrapped := fmt.Errorf("failed to record outcome for target %d: %w", o.TargetID, err)
				c.events.ReportFatalError(wrapped)
				return nil, wrapped
			}

			c.events.Send(event.Event{
				Type:    event.OutcomeRecordedType,
				Payload: o,
			})
		}
	}

	report.Elapsed = time.Since(start)

	c.log.Info().
		Int("outcomes", len(outcomes)).
		Int("healthy", report.Summary[status.Healthy]).
		Bool("persisted", persist).
		Bool("interrupted", report.Interrupted).
		Dur("elapsed", report.Elapsed).
		Msg("Probe run complete")

	return report, nil
}

// Counts returns status counts per target in the window
func (c *Core) Counts(ctx context.Context, w history.Window, filter []int) (map[int]map[status.Category]int, error) {
	return c.reporter.Counts(ctx, w, filter)
}

// Percent returns percent healthy per target in the window
func (c *Core) Percent(ctx context.Context, w history.Window, filter []int) (map[int]history.Percent, error) {
	return c.reporter.Percent(ctx, w, filter)
}

// Changes returns the status change timeline for the window
func (c *Core) Changes(ctx context.Context, w history.Window, filter []int) ([]history.Change, error) {
	return c.reporter.Changes(ctx, w, filter)
}

// Summaries returns a status summary per target in the window
func (c *Core) Summaries(ctx context.Context, w history.Window, filter []int) (map[int]*history.Summary, error) {
	return c.reporter.Summaries(ctx, w, filter)
}

// Weekly returns percent healthy today, this week and year to date
func (c *Core) Weekly(ctx context.Context, filter []int) (map[int]*history.Weekly, error) {
	return c.reporter.Weekly(ctx, filter)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

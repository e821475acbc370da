package health

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robgonnella/fleetprobe/internal/exception"
	"github.com/robgonnella/fleetprobe/internal/logger"
	"github.com/robgonnella/fleetprobe/internal/status"
	"github.com/robgonnella/fleetprobe/internal/target"
	"github.com/robgonnella/fleetprobe/internal/util"
)

// DefaultConcurrency number of concurrent probes in threaded mode
const DefaultConcurrency = 100

// Fleet probes many registered targets with per-target failure isolation
type Fleet struct {
	registry    target.Registry
	checker     Checker
	concurrency int
	log         logger.Logger
}

// NewFleet returns a new instance of Fleet
func NewFleet(registry target.Registry, checker Checker, concurrency int) *Fleet {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	return &Fleet{
		registry:    registry,
		checker:     checker,
		concurrency: concurrency,
		log:         logger.New(),
	}
}

// ProbeAll probes the targets identified by ids, every registered target
// when ids is empty. One outcome is returned per target sorted by id. If
// ctx is cancelled no new probes start and the outcomes collected so far
// are returned with ctx.Err().
func (f *Fleet) ProbeAll(ctx context.Context, ids []int, mode Mode) ([]*status.Outcome, error) {
	targets, err := f.resolve(ids)

	if err != nil {
		return nil, err
	}

	f.log.Info().
		Int("targets", len(targets)).
		Str("mode", string(mode)).
		Msg("Probing fleet...")

	start := time.Now()

	var outcomes []*status.Outcome

	if mode == ModeSequential {
		outcomes = f.sequential(ctx, targets)
	} else {
		outcomes = f.threaded(ctx, targets)
	}

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].TargetID < outcomes[j].TargetID
	})

	f.log.Info().
		Int("probed", len(outcomes)).
		Dur("elapsed", time.Since(start)).
		Msg("Fleet probe complete")

	return outcomes, ctx.Err()
}

func (f *Fleet) resolve(ids []int) ([]*target.Target, error) {
	if len(ids) == 0 {
		targets, err := f.registry.List(nil)

		if err != nil {
			return nil, fmt.Errorf("failed to list targets: %w", err)
		}

		sortTargets(targets)

		return targets, nil
	}

	targets := []*target.Target{}

	for _, id := range util.Unique(ids) {
		t, err := f.registry.Get(id)

		if errors.Is(err, exception.ErrRecordNotFound) {
			return nil, fmt.Errorf("target %d: %w", id, err)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to load target %d: %w", id, err)
		}

		targets = append(targets, t)
	}

	sortTargets(targets)

	return targets, nil
}

func (f *Fleet) sequential(ctx context.Context, targets []*target.Target) []*status.Outcome {
	outcomes := make([]*status.Outcome, 0, len(targets))

	for _, t := range targets {
		if ctx.Err() != nil {
			break
		}

		outcomes = append(outcomes, f.probe(ctx, t))
	}

	return outcomes
}

func (f *Fleet) threaded(ctx context.Context, targets []*target.Target) []*status.Outcome {
	concurrency := f.concurrency

	if concurrency > len(targets) {
		concurrency = len(targets)
	}

	jobs := make(chan *target.Target)
	results := make(chan *status.Outcome)

	// in-flight probes end on their own timeout
	probeCtx := context.WithoutCancel(ctx)

	wg := &sync.WaitGroup{}

	for i := 0; i < concurrency; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for t := range jobs {
				results <- f.probe(probeCtx, t)
			}
		}()
	}

	go func() {
		defer close(jobs)

		for _, t := range targets {
			select {
			case <-ctx.Done():
				return
			default:
			}

			select {
			case <-ctx.Done():
				return
			case jobs <- t:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]*status.Outcome, 0, len(targets))

	for o := range results {
		outcomes = append(outcomes, o)
	}

	return outcomes
}

func (f *Fleet) probe(ctx context.Context, t *target.Target) (outcome *status.Outcome) {
	if !t.ScanEnabled {
		return &status.Outcome{
			TargetID:  t.ID,
			Timestamp: time.Now(),
			Category:  status.Disabled,
			Detail:    "scan disabled",
		}
	}

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			outcome = &status.Outcome{
				TargetID:  t.ID,
				Timestamp: start,
				Category:  status.UnknownError,
				Detail:    fmt.Sprintf("probe panic: %v", r),
				Elapsed:   time.Since(start),
			}
		}
	}()

	outcome = f.checker.Probe(ctx, t)

	if outcome == nil {
		outcome = &status.Outcome{
			TargetID:  t.ID,
			Timestamp: start,
			Category:  status.UnknownError,
			Detail:    "no outcome",
			Elapsed:   time.Since(start),
		}
	}

	return outcome
}

// Summarize counts outcomes per category
func Summarize(outcomes []*status.Outcome) map[status.Category]int {
	summary := map[status.Category]int{}

	for _, o := range outcomes {
		summary[o.Category]++
	}

	return summary
}

func sortTargets(targets []*target.Target) {
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].ID < targets[j].ID
	})
}

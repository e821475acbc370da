package history

import (
	"context"
	"fmt"
	"time"

	"github.com/robgonnella/fleetprobe/internal/status"
)

// Reporter runs the aggregations against records loaded from a Store
type Reporter struct {
	store Store
	now   func() time.Time
}

// ReporterOption configures a Reporter
type ReporterOption func(r *Reporter)

// WithClock sets the clock used for the weekly report
func WithClock(now func() time.Time) ReporterOption {
	return func(r *Reporter) {
		r.now = now
	}
}

// NewReporter returns a new instance of Reporter
func NewReporter(store Store, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		store: store,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Reporter) load(ctx context.Context, w Window, filter []int) ([]*status.Outcome, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	records, err := r.store.Query(ctx, w, filter)

	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	return records, nil
}

// Counts returns status counts per target
func (r *Reporter) Counts(ctx context.Context, w Window, filter []int) (map[int]map[status.Category]int, error) {
	records, err := r.load(ctx, w, filter)

	if err != nil {
		return nil, err
	}

	return StatusCounts(records, w, filter), nil
}

// Percent returns percent healthy per target
func (r *Reporter) Percent(ctx context.Context, w Window, filter []int) (map[int]Percent, error) {
	records, err := r.load(ctx, w, filter)

	if err != nil {
		return nil, err
	}

	return PercentHealthy(records, w, filter), nil
}

// Changes returns the status change timeline
func (r *Reporter) Changes(ctx context.Context, w Window, filter []int) ([]Change, error) {
	records, err := r.load(ctx, w, filter)

	if err != nil {
		return nil, err
	}

	return DetectChanges(records, w, filter), nil
}

// Summaries returns a Summary per target
func (r *Reporter) Summaries(ctx context.Context, w Window, filter []int) (map[int]*Summary, error) {
	records, err := r.load(ctx, w, filter)

	if err != nil {
		return nil, err
	}

	return Summarize(records, w, filter), nil
}

// Weekly returns the today, week and year to date report
func (r *Reporter) Weekly(ctx context.Context, filter []int) (map[int]*Weekly, error) {
	now := r.now()

	records, err := r.load(ctx, WeeklySpan(now), filter)

	if err != nil {
		return nil, err
	}

	return WeeklyReport(records, now, filter), nil
}

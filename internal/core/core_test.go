package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/robgonnella/fleetprobe/internal/config"
	"github.com/robgonnella/fleetprobe/internal/core"
	"github.com/robgonnella/fleetprobe/internal/discovery"
	"github.com/robgonnella/fleetprobe/internal/event"
	"github.com/robgonnella/fleetprobe/internal/health"
	"github.com/robgonnella/fleetprobe/internal/history"
	"github.com/robgonnella/fleetprobe/internal/matcher"
	mock_core "github.com/robgonnella/fleetprobe/internal/mock/core"
	mock_event "github.com/robgonnella/fleetprobe/internal/mock/event"
	mock_history "github.com/robgonnella/fleetprobe/internal/mock/history"
	mock_target "github.com/robgonnella/fleetprobe/internal/mock/target"
	"github.com/robgonnella/fleetprobe/internal/status"
	"github.com/robgonnella/fleetprobe/internal/target"
	"github.com/stretchr/testify/assert"
)

type mocks struct {
	repo    *mock_target.MockRepo
	store   *mock_history.MockStore
	sweeper *mock_core.MockSweeper
	matcher *mock_core.MockClassifier
	fleet   *mock_core.MockFleetProber
	events  *mock_event.MockManager
}

func setup(ctrl *gomock.Controller) (*core.Core, *mocks) {
	m := &mocks{
		repo:    mock_target.NewMockRepo(ctrl),
		store:   mock_history.NewMockStore(ctrl),
		sweeper: mock_core.NewMockSweeper(ctrl),
		matcher: mock_core.NewMockClassifier(ctrl),
		fleet:   mock_core.NewMockFleetProber(ctrl),
		events:  mock_event.NewMockManager(ctrl),
	}

	c := core.New(
		config.Default(),
		target.NewService(m.repo),
		m.store,
		m.sweeper,
		m.matcher,
		m.fleet,
		m.events,
	)

	return c, m
}

func TestCoreSweep(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	req := discovery.SweepRequest{Ranges: []string{"10.0.0"}, Ports: []int{5989}}

	open := []discovery.ScanResult{
		{Address: "10.0.0.1", Port: 5989, Open: true},
		{Address: "10.0.0.2", Port: 5989, Open: true},
	}

	t.Run("classifies open hosts", func(st *testing.T) {
		c, m := setup(ctrl)

		m.sweeper.EXPECT().Sweep(gomock.Any(), req).Return(&discovery.SweepResult{
			OpenHosts: open,
			Planned:   254,
			Tested:    254,
		}, nil)
		m.matcher.EXPECT().Classify(gomock.Any(), open).Return([]matcher.Match{
			{Address: "10.0.0.1", Port: 5989, Classification: matcher.Known, TargetID: 1},
			{Address: "10.0.0.2", Port: 5989, Classification: matcher.Unknown, Category: status.AuthError},
		}, nil)
		m.events.EXPECT().Send(gomock.Any()).Do(func(evt event.Event) {
			assert.Equal(st, event.SweepCompleteType, evt.Type)
		})

		report, err := c.Sweep(context.Background(), req, true)

		assert.NoError(st, err)
		assert.Equal(st, 254, report.Tested)
		assert.Equal(st, 1, report.Known)
		assert.Equal(st, 1, report.Unknown)
		assert.Equal(st, 2, len(report.Matches))
	})

	t.Run("skips matching when disabled", func(st *testing.T) {
		c, m := setup(ctrl)

		m.sweeper.EXPECT().Sweep(gomock.Any(), req).Return(&discovery.SweepResult{OpenHosts: open}, nil)
		m.events.EXPECT().Send(gomock.Any())

		report, err := c.Sweep(context.Background(), req, false)

		assert.NoError(st, err)
		assert.Empty(st, report.Matches)
		assert.Equal(st, 2, len(report.OpenHosts))
	})

	t.Run("returns input errors", func(st *testing.T) {
		c, m := setup(ctrl)

		m.sweeper.EXPECT().Sweep(gomock.Any(), req).Return(nil, errors.New("invalid range"))

		_, err := c.Sweep(context.Background(), req, true)

		assert.Error(st, err)
	})

	t.Run("aborts on registry failure", func(st *testing.T) {
		c, m := setup(ctrl)

		m.sweeper.EXPECT().Sweep(gomock.Any(), req).Return(&discovery.SweepResult{OpenHosts: open}, nil)
		m.matcher.EXPECT().Classify(gomock.Any(), open).Return(nil, errors.New("database unavailable"))

		_, err := c.Sweep(context.Background(), req, true)

		assert.Error(st, err)
	})

	t.Run("keeps partial matches on interrupt", func(st *testing.T) {
		c, m := setup(ctrl)

		m.sweeper.EXPECT().Sweep(gomock.Any(), req).Return(&discovery.SweepResult{OpenHosts: open}, nil)
		m.matcher.EXPECT().Classify(gomock.Any(), open).Return([]matcher.Match{
			{Classification: matcher.Known},
			{Classification: matcher.Unknown, Category: status.UnknownError},
		}, context.Canceled)
		m.events.EXPECT().Send(gomock.Any())

		report, err := c.Sweep(context.Background(), req, true)

		assert.NoError(st, err)
		assert.True(st, report.Interrupted)
		assert.Equal(st, 2, len(report.Matches))
	})
}

func TestCoreProbeFleet(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	outcomes := []*status.Outcome{
		{TargetID: 1, Category: status.Healthy},
		{TargetID: 2, Category: status.Timeout},
		{TargetID: 3, Category: status.Healthy},
	}

	t.Run("persists every outcome", func(st *testing.T) {
		c, m := setup(ctrl)

		m.fleet.EXPECT().ProbeAll(gomock.Any(), []int{}, health.ModeThreaded).Return(outcomes, nil)

		for _, o := range outcomes {
			m.store.EXPECT().Append(gomock.Any(), o).Return(nil)
		}

		m.events.EXPECT().Send(gomock.Any()).Times(3)

		report, err := c.ProbeFleet(context.Background(), []int{}, health.ModeThreaded, true)

		assert.NoError(st, err)
		assert.Equal(st, 3, len(report.Outcomes))
		assert.Equal(st, 2, report.Summary[status.Healthy])
		assert.Equal(st, 1, report.Summary[status.Timeout])
		assert.True(st, report.Persisted)
	})

	t.Run("does not persist when disabled", func(st *testing.T) {
		c, m := setup(ctrl)

		m.fleet.EXPECT().ProbeAll(gomock.Any(), []int{2}, health.ModeSequential).Return(outcomes[1:2], nil)

		report, err := c.ProbeFleet(context.Background(), []int{2}, health.ModeSequential, false)

		assert.NoError(st, err)
		assert.Equal(st, 1, len(report.Outcomes))
		assert.False(st, report.Persisted)
	})

	t.Run("store failure is fatal", func(st *testing.T) {
		c, m := setup(ctrl)

		m.fleet.EXPECT().ProbeAll(gomock.Any(), nil, health.ModeThreaded).Return(outcomes, nil)
		m.store.EXPECT().Append(gomock.Any(), outcomes[0]).Return(errors.New("disk full"))
		m.events.EXPECT().ReportFatalError(gomock.Any())

		_, err := c.ProbeFleet(context.Background(), nil, health.ModeThreaded, true)

		assert.Error(st, err)
	})

	t.Run("records partial outcomes on interrupt", func(st *testing.T) {
		c, m := setup(ctrl)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		m.fleet.EXPECT().ProbeAll(gomock.Any(), nil, health.ModeThreaded).Return(outcomes[:1], context.Canceled)
		m.store.EXPECT().Append(gomock.Any(), outcomes[0]).DoAndReturn(
			func(ctx context.Context, _ *status.Outcome) error {
				return ctx.Err()
			},
		)
		m.events.EXPECT().Send(gomock.Any())

		report, err := c.ProbeFleet(ctx, nil, health.ModeThreaded, true)

		assert.NoError(st, err)
		assert.True(st, report.Interrupted)
		assert.Equal(st, 1, len(report.Outcomes))
	})

	t.Run("returns registry failures", func(st *testing.T) {
		c, m := setup(ctrl)

		m.fleet.EXPECT().ProbeAll(gomock.Any(), nil, health.ModeThreaded).Return(nil, errors.New("database unavailable"))

		_, err := c.ProbeFleet(context.Background(), nil, health.ModeThreaded, true)

		assert.Error(st, err)
	})
}

func TestCoreHistory(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	start := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	window := history.Window{Start: start, End: start.Add(24 * time.Hour)}

	records := []*status.Outcome{
		{TargetID: 1, Timestamp: start, Category: status.Healthy},
		{TargetID: 1, Timestamp: start.Add(time.Hour), Category: status.Timeout},
	}

	t.Run("reports from the history store", func(st *testing.T) {
		c, m := setup(ctrl)

		m.store.EXPECT().Query(gomock.Any(), window, []int{1}).Return(records, nil).Times(2)

		percents, err := c.Percent(context.Background(), window, []int{1})

		assert.NoError(st, err)
		assert.Equal(st, 50.0, percents[1].Percent)

		changes, err := c.Changes(context.Background(), window, []int{1})

		assert.NoError(st, err)
		assert.Equal(st, 1, len(changes))
	})

	t.Run("exposes target service", func(st *testing.T) {
		c, m := setup(ctrl)

		m.repo.EXPECT().List(nil).Return([]*target.Target{{ID: 1}}, nil)

		targets, err := c.Targets().List(nil)

		assert.NoError(st, err)
		assert.Equal(st, 1, len(targets))
	})
}

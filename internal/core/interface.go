package core

import (
	"context"

	"github.com/robgonnella/fleetprobe/internal/discovery"
	"github.com/robgonnella/fleetprobe/internal/health"
	"github.com/robgonnella/fleetprobe/internal/matcher"
	"github.com/robgonnella/fleetprobe/internal/status"
)

//go:generate mockgen -destination=../mock/core/mock_core.go -package=mock_core . Sweeper,Classifier,FleetProber

// Sweeper sweeps address ranges for open ports
type Sweeper interface {
	Sweep(ctx context.Context, req discovery.SweepRequest) (*discovery.SweepResult, error)
}

// Classifier matches open hosts against the registry
type Classifier interface {
	Classify(ctx context.Context, openHosts []discovery.ScanResult) ([]matcher.Match, error)
}

// FleetProber health checks registered targets
type FleetProber interface {
	ProbeAll(ctx context.Context, ids []int, mode health.Mode) ([]*status.Outcome, error)
}

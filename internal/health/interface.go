package health

import (
	"context"
	"fmt"
	"time"

	"github.com/robgonnella/fleetprobe/internal/protocol"
	"github.com/robgonnella/fleetprobe/internal/status"
	"github.com/robgonnella/fleetprobe/internal/target"
)

//go:generate mockgen -destination=../mock/health/mock_health.go -package=mock_health . Pinger,Connector,Checker

// Pinger reachability check run before connecting
type Pinger interface {
	Ping(ctx context.Context, address string, timeout time.Duration) bool
}

// Connector opens protocol sessions, satisfied by protocol.Registry
type Connector interface {
	Connect(ctx context.Context, req protocol.Request) (protocol.Session, error)
}

// Checker runs the full health check against a single target
type Checker interface {
	Probe(ctx context.Context, t *target.Target) *status.Outcome
}

// Mode how the fleet prober schedules targets
type Mode string

const (
	// ModeThreaded probes targets concurrently
	ModeThreaded Mode = "threaded"
	// ModeSequential probes targets one at a time in id order
	ModeSequential Mode = "sequential"
)

// ParseMode returns the Mode named s, empty means threaded
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeThreaded:
		return ModeThreaded, nil
	case ModeSequential:
		return ModeSequential, nil
	default:
		return "", fmt.Errorf("unknown probe mode: %s", s)
	}
}

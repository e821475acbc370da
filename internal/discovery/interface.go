package discovery

import (
	"context"
)

//go:generate mockgen -destination=../mock/discovery/mock_discovery.go -package=mock_discovery . Prober

// Prober tests a single address and port for reachability. Implementations
// never return errors, every failure is reported as closed with a reason.
type Prober interface {
	Probe(ctx context.Context, address string, port int) (bool, string)
}

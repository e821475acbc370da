package discovery

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robgonnella/fleetprobe/internal/logger"
)

// DualProber runs both the connect and handshake strategies and reports
// disagreements between them without failing the probe
type DualProber struct {
	connect       Prober
	handshake     Prober
	disagreements atomic.Int64
	log           logger.Logger
}

// NewDualProber returns a new instance of DualProber
func NewDualProber(connect, handshake Prober) *DualProber {
	return &DualProber{
		connect:   connect,
		handshake: handshake,
		log:       logger.New(),
	}
}

// Probe returns the handshake verdict
func (p *DualProber) Probe(ctx context.Context, address string, port int) (bool, string) {
	connectOpen, connectReason := p.connect.Probe(ctx, address, port)
	handshakeOpen, handshakeReason := p.handshake.Probe(ctx, address, port)

	if connectOpen != handshakeOpen {
		p.disagreements.Add(1)

		p.log.Warn().
			Str("address", address).
			Int("port", port).
			Bool("connectOpen", connectOpen).
			Str("connectReason", connectReason).
			Bool("handshakeOpen", handshakeOpen).
			Str("handshakeReason", handshakeReason).
			Msg("probe strategies disagree")
	}

	return handshakeOpen, handshakeReason
}

// Disagreements returns the number of probes where strategies disagreed
func (p *DualProber) Disagreements() int64 {
	return p.disagreements.Load()
}

// ProberOptions options used to build a Prober for a Strategy
type ProberOptions struct {
	Timeout   time.Duration
	Handshake bool
}

// NewProber returns the Prober implementing strategy
func NewProber(strategy Strategy, opts ProberOptions) Prober {
	connect := NewConnectProber(opts.Timeout)

	switch strategy {
	case StrategyHandshake:
		return NewHandshakeProber(opts.Handshake, opts.Timeout, connect)
	case StrategyBoth:
		return NewDualProber(
			connect,
			NewHandshakeProber(opts.Handshake, opts.Timeout, connect),
		)
	default:
		return connect
	}
}

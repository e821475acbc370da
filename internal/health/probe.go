package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/robgonnella/fleetprobe/internal/exception"
	"github.com/robgonnella/fleetprobe/internal/logger"
	"github.com/robgonnella/fleetprobe/internal/protocol"
	"github.com/robgonnella/fleetprobe/internal/status"
	"github.com/robgonnella/fleetprobe/internal/target"
)

// DefaultPingTimeout timeout used for the reachability check
const DefaultPingTimeout = 2 * time.Second

// Options probe settings
type Options struct {
	SkipPing    bool
	PingTimeout time.Duration
	Timeout     time.Duration
}

// Prober implements the Checker interface as a state machine of
// ping, connect and handshake stages
type Prober struct {
	pinger    Pinger
	connector Connector
	opts      Options
	log       logger.Logger
}

// NewProber returns a new instance of Prober
func NewProber(pinger Pinger, connector Connector, opts Options) *Prober {
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = DefaultPingTimeout
	}

	if opts.Timeout <= 0 {
		opts.Timeout = protocol.DefaultTimeout
	}

	return &Prober{
		pinger:    pinger,
		connector: connector,
		opts:      opts,
		log:       logger.New(),
	}
}

// Probe runs the health check sequence against t. Every path returns
// exactly one outcome.
func (p *Prober) Probe(ctx context.Context, t *target.Target) (outcome *status.Outcome) {
	start := time.Now()

	outcome = &status.Outcome{
		TargetID:  t.ID,
		Timestamp: start,
	}

	defer func() {
		if r := recover(); r != nil {
			outcome.Category = status.UnknownError
			outcome.Detail = fmt.Sprintf("probe panic: %v", r)
		}

		outcome.Elapsed = time.Since(start)

		p.log.Debug().
			Int("id", t.ID).
			Str("endpoint", t.HostPort()).
			Str("status", outcome.Category.String()).
			Str("detail", outcome.Detail).
			Dur("elapsed", outcome.Elapsed).
			Msg("probe complete")
	}()

	outcome.Category, outcome.Detail = p.run(ctx, t)

	return outcome
}

func (p *Prober) run(ctx context.Context, t *target.Target) (status.Category, string) {
	if !p.opts.SkipPing {
		if !p.pinger.Ping(ctx, t.Address, p.opts.PingTimeout) {
			return status.PingFailed, fmt.Sprintf("%s did not answer ping", t.Address)
		}
	}

	scheme := t.Scheme

	if scheme == "" {
		scheme = protocol.SchemeForPort(t.Port)
	}

	session, err := p.connector.Connect(ctx, protocol.Request{
		Address:    t.Address,
		Port:       t.Port,
		Scheme:     scheme,
		Principal:  t.Principal,
		Credential: t.Credential,
		Namespace:  t.Namespace,
		Timeout:    p.opts.Timeout,
	})

	if err != nil {
		return ClassifyConnectError(err), err.Error()
	}

	defer session.Close()

	if err := session.HealthCheck(ctx); err != nil {
		return ClassifyHealthError(err), err.Error()
	}

	return status.Healthy, "ok"
}

// ClassifyConnectError maps a connect stage error to a category
func ClassifyConnectError(err error) status.Category {
	switch {
	case errors.Is(err, exception.ErrAuth):
		return status.AuthError
	case errors.Is(err, exception.ErrProtocol), errors.Is(err, exception.ErrUnsupportedScheme):
		return status.ProtocolError
	case isTimeout(err):
		return status.Timeout
	default:
		return status.ConnectionError
	}
}

// ClassifyHealthError maps a handshake stage error to a category
func ClassifyHealthError(err error) status.Category {
	switch {
	case err == nil:
		return status.Healthy
	case errors.Is(err, exception.ErrAuth):
		return status.AuthError
	case errors.Is(err, exception.ErrProtocol):
		return status.ProtocolError
	case isTimeout(err):
		return status.Timeout
	default:
		return status.UnknownError
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, exception.ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded)
}

package discovery

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ullaakut/nmap/v3"
	"github.com/robgonnella/fleetprobe/internal/logger"
)

// SynScanFunc sends a single syn segment to address:port and returns the
// nmap port state ("open", "closed", "filtered")
type SynScanFunc func(ctx context.Context, address string, port int, timeout time.Duration) (string, error)

// HandshakeOption configures a HandshakeProber
type HandshakeOption func(p *HandshakeProber)

// WithSynScanner replaces the nmap backed syn scanner
func WithSynScanner(fn SynScanFunc) HandshakeOption {
	return func(p *HandshakeProber) {
		p.scan = fn
	}
}

// WithPrivilegeCheck replaces the raw socket privilege check
func WithPrivilegeCheck(fn func() (bool, error)) HandshakeOption {
	return func(p *HandshakeProber) {
		p.privileged = fn
	}
}

// HandshakeProber implements the Prober interface using half-open syn
// probes. It requires raw socket privilege and falls back to its fallback
// Prober when disabled or unprivileged.
type HandshakeProber struct {
	enabled    bool
	timeout    time.Duration
	fallback   Prober
	scan       SynScanFunc
	privileged func() (bool, error)
	checkOnce  sync.Once
	usable     atomic.Bool
	warnOnce   sync.Once
	log        logger.Logger
}

// NewHandshakeProber returns a new instance of HandshakeProber
func NewHandshakeProber(
	enabled bool,
	timeout time.Duration,
	fallback Prober,
	opts ...HandshakeOption,
) *HandshakeProber {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	p := &HandshakeProber{
		enabled:    enabled,
		timeout:    timeout,
		fallback:   fallback,
		scan:       nmapSynScan,
		privileged: canOpenRawSocket,
		log:        logger.New(),
	}

	for _, o := range opts {
		o(p)
	}

	return p
}

// Probe classifies the response to a syn segment: syn-ack is open,
// rst is closed, silence is filtered
func (p *HandshakeProber) Probe(ctx context.Context, address string, port int) (bool, string) {
	if !p.available() {
		return p.fallback.Probe(ctx, address, port)
	}

	state, err := p.scan(ctx, address, port, p.timeout)

	if err != nil {
		if errors.Is(err, nmap.ErrNmapNotInstalled) {
			p.warn("nmap not installed")
			p.usable.Store(false)
		} else {
			p.log.Debug().
				Err(err).
				Str("address", address).
				Int("port", port).
				Msg("syn probe failed, using connect strategy")
		}

		return p.fallback.Probe(ctx, address, port)
	}

	switch state {
	case "open":
		return true, ""
	case "closed":
		return false, "reset"
	default:
		return false, "no response"
	}
}

func (p *HandshakeProber) available() bool {
	p.checkOnce.Do(func() {
		if !p.enabled {
			p.warn("handshake strategy is disabled")
			return
		}

		ok, err := p.privileged()

		if err != nil || !ok {
			p.warn("raw socket privilege unavailable")
			return
		}

		p.usable.Store(true)
	})

	return p.usable.Load()
}

func (p *HandshakeProber) warn(reason string) {
	p.warnOnce.Do(func() {
		p.log.Warn().
			Str("reason", reason).
			Msg("falling back to connect strategy")
	})
}

// nmapSynScan runs a single target, single port syn scan
func nmapSynScan(ctx context.Context, address string, port int, timeout time.Duration) (string, error) {
	scanner, err := nmap.NewScanner(
		ctx,
		nmap.WithTargets(address),
		nmap.WithPorts(strconv.Itoa(port)),
		nmap.WithSYNScan(),
		nmap.WithSkipHostDiscovery(),
		nmap.WithHostTimeout(timeout),
		nmap.WithMaxRetries(1),
	)

	if err != nil {
		return "", err
	}

	result, warnings, err := scanner.Run()

	if warnings != nil && len(*warnings) > 0 {
		logger.New().Debug().
			Strs("warnings", *warnings).
			Str("address", address).
			Msg("encountered syn scan warnings")
	}

	if err != nil {
		return "", err
	}

	for _, host := range result.Hosts {
		for _, p := range host.Ports {
			if int(p.ID) == port {
				return p.State.State, nil
			}
		}
	}

	return "filtered", nil
}

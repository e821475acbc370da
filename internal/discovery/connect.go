package discovery

import (
	"context"
	"errors"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/robgonnella/fleetprobe/internal/logger"
)

// DefaultConnectTimeout timeout applied to each connect probe
const DefaultConnectTimeout = 2 * time.Second

// ConnectProber implements the Prober interface using full tcp connections
type ConnectProber struct {
	timeout time.Duration
	log     logger.Logger
}

// NewConnectProber returns a new instance of ConnectProber
func NewConnectProber(timeout time.Duration) *ConnectProber {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	return &ConnectProber{
		timeout: timeout,
		log:     logger.New(),
	}
}

// Probe opens and immediately closes a tcp connection to address:port
func (p *ConnectProber) Probe(ctx context.Context, address string, port int) (bool, string) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	dialer := net.Dialer{Timeout: p.timeout}

	conn, err := dialer.DialContext(
		ctx,
		"tcp",
		net.JoinHostPort(address, strconv.Itoa(port)),
	)

	if err != nil {
		reason := dialFailureReason(err)

		p.log.Debug().
			Str("address", address).
			Int("port", port).
			Str("reason", reason).
			Msg("port closed")

		return false, reason
	}

	conn.Close()

	return true, ""
}

// dialFailureReason reduces a dial error to the os level reason
func dialFailureReason(err error) string {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "connection refused"
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var netErr net.Error

	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}

	var opErr *net.OpError

	if errors.As(err, &opErr) && opErr.Err != nil {
		var dnsErr *net.DNSError

		if errors.As(opErr.Err, &dnsErr) {
			return dnsErr.Err
		}

		return unwrapAll(opErr.Err).Error()
	}

	return err.Error()
}

func unwrapAll(err error) error {
	for {
		next := errors.Unwrap(err)

		if next == nil {
			return err
		}

		err = next
	}
}

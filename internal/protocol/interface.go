package protocol

import (
	"context"
	"net"
	"strconv"
	"time"
)

//go:generate mockgen -destination=../mock/protocol/mock_protocol.go -package=mock_protocol . Connector,Session

// Request everything needed to open a protocol connection to a target
type Request struct {
	Address    string
	Port       int
	Scheme     string
	Principal  string
	Credential string
	Namespace  string
	Timeout    time.Duration
}

// Connector opens protocol level connections. Errors wrap one of
// exception.ErrAuth, ErrProtocol, ErrConnection or ErrTimeout.
type Connector interface {
	Connect(ctx context.Context, req Request) (Session, error)
}

// Session an open protocol connection able to run a minimal health operation
type Session interface {
	HealthCheck(ctx context.Context) error
	Close() error
}

// HostPort returns the request's network address
func (r Request) HostPort() string {
	return net.JoinHostPort(r.Address, strconv.Itoa(r.Port))
}

func (r Request) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}

	return r.Timeout
}

// DefaultTimeout operation timeout used when a request has none
const DefaultTimeout = 20 * time.Second

package protocol

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/robgonnella/fleetprobe/internal/exception"
)

// Registry dispatches connections to the Connector registered for the
// request's scheme
type Registry struct {
	connectors map[string]Connector
	mux        sync.RWMutex
}

// NewRegistry returns an empty Registry
func NewRegistry() *Registry {
	return &Registry{connectors: map[string]Connector{}}
}

// DefaultRegistry returns a Registry with every built-in connector
func DefaultRegistry(wbem WBEMOptions) *Registry {
	r := NewRegistry()

	wbemConnector := NewWBEMConnector(wbem)

	r.Register("http", wbemConnector)
	r.Register("https", wbemConnector)
	r.Register("ssh", NewSSHConnector())
	r.Register("redis", NewRedisConnector())
	r.Register("postgres", NewPostgresConnector())
	r.Register("snmp", NewSNMPConnector())

	return r
}

// Register adds or replaces the connector for scheme
func (r *Registry) Register(scheme string, c Connector) {
	r.mux.Lock()
	defer r.mux.Unlock()

	r.connectors[strings.ToLower(scheme)] = c
}

// Schemes returns the registered schemes in sorted order
func (r *Registry) Schemes() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()

	schemes := make([]string, 0, len(r.connectors))

	for s := range r.connectors {
		schemes = append(schemes, s)
	}

	sort.Strings(schemes)

	return schemes
}

// Connect implements the Connector interface
func (r *Registry) Connect(ctx context.Context, req Request) (Session, error) {
	r.mux.RLock()
	c, ok := r.connectors[strings.ToLower(req.Scheme)]
	r.mux.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", exception.ErrUnsupportedScheme, req.Scheme)
	}

	return c.Connect(ctx, req)
}

// SchemeForPort guesses a scheme from a well known port
func SchemeForPort(port int) string {
	switch port {
	case 5988:
		return "http"
	case 22:
		return "ssh"
	case 6379:
		return "redis"
	case 5432:
		return "postgres"
	case 161:
		return "snmp"
	default:
		return "https"
	}
}

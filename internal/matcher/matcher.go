package matcher

import (
	"context"
	"fmt"
	"time"

	"github.com/robgonnella/fleetprobe/internal/discovery"
	"github.com/robgonnella/fleetprobe/internal/health"
	"github.com/robgonnella/fleetprobe/internal/logger"
	"github.com/robgonnella/fleetprobe/internal/protocol"
	"github.com/robgonnella/fleetprobe/internal/status"
	"github.com/robgonnella/fleetprobe/internal/target"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -destination=../mock/matcher/mock_matcher.go -package=mock_matcher . Registry

// Registry the read-only registry view used to classify open hosts
type Registry interface {
	Index() (map[string]*target.Target, error)
	DistinctCredentials() ([]target.Credential, error)
}

// Classification whether an open host is registered
type Classification string

const (
	// Known the host matches a registered target
	Known Classification = "known"
	// Unknown the host is not registered
	Unknown Classification = "unknown"
)

// Match the classification of a single open host
type Match struct {
	Address        string
	Port           int
	Classification Classification
	TargetID       int
	Category       status.Category
	Detail         string
	Principal      string
	Namespace      string
	Attempts       int
}

// DefaultConcurrency number of unknown hosts checked at once
const DefaultConcurrency = 10

// failure precedence, higher is more informative
var rank = map[status.Category]int{
	status.ProtocolError:   5,
	status.AuthError:       4,
	status.Timeout:         3,
	status.ConnectionError: 2,
	status.UnknownError:    1,
}

// Matcher classifies open hosts as known or unknown, testing known
// credentials against unknown hosts
type Matcher struct {
	registry    Registry
	checker     health.Checker
	namespaces  []string
	concurrency int
	log         logger.Logger
}

// New returns a new instance of Matcher. The checker should skip the ping
// stage since every host handed to Classify has already answered on a port.
func New(registry Registry, checker health.Checker, namespaces []string, concurrency int) *Matcher {
	if len(namespaces) == 0 {
		namespaces = []string{protocol.DefaultNamespace}
	}

	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	return &Matcher{
		registry:    registry,
		checker:     checker,
		namespaces:  namespaces,
		concurrency: concurrency,
		log:         logger.New(),
	}
}

// Classify returns exactly one Match per open host in input order.
// Registry failures abort the call.
func (m *Matcher) Classify(ctx context.Context, openHosts []discovery.ScanResult) ([]Match, error) {
	index, err := m.registry.Index()

	if err != nil {
		return nil, fmt.Errorf("failed to index registry: %w", err)
	}

	matches := make([]Match, len(openHosts))
	unknown := []int{}

	for i, h := range openHosts {
		matches[i] = Match{
			Address: h.Address,
			Port:    h.Port,
		}

		if t, ok := index[target.Key(h.Address, h.Port)]; ok {
			matches[i].Classification = Known
			matches[i].TargetID = t.ID
			matches[i].Detail = "registered target"
			continue
		}

		matches[i].Classification = Unknown
		unknown = append(unknown, i)
	}

	if len(unknown) == 0 {
		return matches, nil
	}

	creds, err := m.registry.DistinctCredentials()

	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	if len(creds) == 0 {
		// anonymous
		creds = []target.Credential{{}}
	}

	m.log.Info().
		Int("unknown", len(unknown)).
		Int("credentials", len(creds)).
		Strs("namespaces", m.namespaces).
		Msg("Testing unknown hosts...")

	g := errgroup.Group{}
	g.SetLimit(m.concurrency)

	for _, i := range unknown {
		match := &matches[i]

		g.Go(func() error {
			m.check(ctx, match, creds)
			return nil
		})
	}

	g.Wait()

	return matches, ctx.Err()
}

func (m *Matcher) check(ctx context.Context, match *Match, creds []target.Credential) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			match.Category = status.UnknownError
			match.Detail = fmt.Sprintf("check panic: %v", r)
		}
	}()

	var best *status.Outcome
	var bestCred target.Credential
	var bestNamespace string

	for _, cred := range creds {
		for _, ns := range m.namespaces {
			if ctx.Err() != nil {
				if best == nil {
					match.Category = status.UnknownError
					match.Detail = "not checked: " + ctx.Err().Error()
					return
				}

				break
			}

			match.Attempts++

			outcome := m.checker.Probe(ctx, &target.Target{
				Address:     match.Address,
				Port:        match.Port,
				Scheme:      protocol.SchemeForPort(match.Port),
				Principal:   cred.Principal,
				Credential:  cred.Credential,
				Namespace:   ns,
				ScanEnabled: true,
			})

			if outcome == nil {
				continue
			}

			if outcome.Category == status.Healthy {
				match.Category = status.Healthy
				match.Detail = outcome.Detail
				match.Principal = cred.Principal
				match.Namespace = ns

				m.log.Info().
					Str("address", match.Address).
					Int("port", match.Port).
					Str("principal", cred.Principal).
					Str("namespace", ns).
					Dur("elapsed", time.Since(start)).
					Msg("unknown host accepted credentials")

				return
			}

			if best == nil || rank[outcome.Category] > rank[best.Category] {
				best = outcome
				bestCred = cred
				bestNamespace = ns
			}
		}
	}

	if best == nil {
		match.Category = status.UnknownError
		match.Detail = "no outcome"
		return
	}

	match.Category = best.Category
	match.Detail = best.Detail
	match.Principal = bestCred.Principal
	match.Namespace = bestNamespace
}

// Counts returns the number of known and unknown matches
func Counts(matches []Match) (known, unknown int) {
	for _, m := range matches {
		if m.Classification == Known {
			known++
		} else {
			unknown++
		}
	}

	return known, unknown
}

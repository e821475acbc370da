package discovery

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robgonnella/fleetprobe/internal/address"
	"github.com/robgonnella/fleetprobe/internal/exception"
	"github.com/robgonnella/fleetprobe/internal/logger"
	"golang.org/x/time/rate"
)

// DefaultConcurrency number of workers used when none is requested
const DefaultConcurrency = 100

// ProberFactory returns the Prober for a Strategy
type ProberFactory func(strategy Strategy) Prober

// EngineOption configures an Engine
type EngineOption func(e *Engine)

// WithRateLimit limits dispatch to perSecond probes per second
func WithRateLimit(perSecond float64) EngineOption {
	return func(e *Engine) {
		if perSecond > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithResultHook registers a function called with every completed result
func WithResultHook(fn func(r ScanResult)) EngineOption {
	return func(e *Engine) {
		e.onResult = fn
	}
}

// Engine sweeps address ranges for open ports using a bounded worker pool
type Engine struct {
	newProber ProberFactory
	limiter   *rate.Limiter
	onResult  func(r ScanResult)
	log       logger.Logger
}

// NewEngine returns a new instance of Engine
func NewEngine(factory ProberFactory, opts ...EngineOption) *Engine {
	e := &Engine{
		newProber: factory,
		log:       logger.New(),
	}

	for _, o := range opts {
		o(e)
	}

	return e
}

// Plan validates the request and returns its lazy target sequence
func (e *Engine) Plan(req SweepRequest) (*Targets, error) {
	if len(req.Ports) == 0 {
		return nil, fmt.Errorf("%w: no ports provided", exception.ErrInvalidPort)
	}

	for _, p := range req.Ports {
		if p < 1 || p > 65535 {
			return nil, fmt.Errorf("%w: %d", exception.ErrInvalidPort, p)
		}
	}

	minOctet, maxOctet := req.MinOctet, req.MaxOctet

	if minOctet == 0 && maxOctet == 0 {
		minOctet, maxOctet = 1, 254
	}

	ranges, err := address.ExpandAll(req.Ranges, minOctet, maxOctet)

	if err != nil {
		return nil, err
	}

	return NewTargets(ranges, req.Ports), nil
}

// Sweep probes every target of the request. Cancelling ctx stops dispatch,
// in-flight probes finish on their own timeout and the partial result
// is returned.
func (e *Engine) Sweep(ctx context.Context, req SweepRequest) (*SweepResult, error) {
	targets, err := e.Plan(req)

	if err != nil {
		return nil, err
	}

	start := time.Now()

	result := &SweepResult{
		ID:        uuid.NewString(),
		Started:   start,
		OpenHosts: []ScanResult{},
		Planned:   targets.Len(),
		Failures:  map[string]int{},
		DryRun:    req.DryRun,
	}

	if req.DryRun {
		result.Listing = make([]ScanTarget, 0, result.Planned)

		it := targets.Iter()

		for t, ok := it.Next(); ok; t, ok = it.Next() {
			result.Listing = append(result.Listing, t)
		}

		result.Elapsed = time.Since(start)

		return result, nil
	}

	concurrency := req.Concurrency

	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	if concurrency > result.Planned {
		concurrency = result.Planned
	}

	e.log.Info().
		Str("id", result.ID).
		Strs("ranges", req.Ranges).
		Ints("ports", req.Ports).
		Int("targets", result.Planned).
		Int("concurrency", concurrency).
		Msg("Sweeping ranges...")

	prober := e.newProber(req.Strategy)

	jobs := make(chan ScanTarget)
	results := make(chan ScanResult)

	// probes outlive cancellation and end on their own timeout
	probeCtx := context.WithoutCancel(ctx)

	wg := &sync.WaitGroup{}

	for i := 0; i < concurrency; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for t := range jobs {
				results <- e.probe(probeCtx, prober, t)
			}
		}()
	}

	dispatched := 0

	go func() {
		defer close(jobs)

		it := targets.Iter()

		for {
			t, ok := it.Next()

			if !ok || ctx.Err() != nil {
				return
			}

			if e.limiter != nil {
				if err := e.limiter.Wait(ctx); err != nil {
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case jobs <- t:
				dispatched++
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if r.Open {
			result.OpenHosts = append(result.OpenHosts, r)
		} else {
			result.Failures[r.ErrorDetail]++
		}

		if e.onResult != nil {
			e.onResult(r)
		}
	}

	result.Tested = dispatched
	result.Interrupted = ctx.Err() != nil
	result.Elapsed = time.Since(start)

	SortResults(result.OpenHosts)

	e.log.Info().
		Str("id", result.ID).
		Int("tested", result.Tested).
		Int("open", len(result.OpenHosts)).
		Bool("interrupted", result.Interrupted).
		Dur("elapsed", result.Elapsed).
		Msg("Sweep complete")

	return result, nil
}

func (e *Engine) probe(ctx context.Context, prober Prober, t ScanTarget) (result ScanResult) {
	result = ScanResult{Address: t.Address, Port: t.Port}

	defer func() {
		if r := recover(); r != nil {
			result.Open = false
			result.ErrorDetail = fmt.Sprintf("probe panic: %v", r)
		}
	}()

	result.Open, result.ErrorDetail = prober.Probe(ctx, t.Address, t.Port)

	if !result.Open && result.ErrorDetail == "" {
		result.ErrorDetail = "closed"
	}

	return result
}

// SortResults orders results numerically by address then by port
func SortResults(results []ScanResult) {
	sort.Slice(results, func(i, j int) bool {
		c := compareAddress(results[i].Address, results[j].Address)

		if c != 0 {
			return c < 0
		}

		return results[i].Port < results[j].Port
	})
}

func compareAddress(a, b string) int {
	ipA := net.ParseIP(a)
	ipB := net.ParseIP(b)

	if ipA == nil || ipB == nil {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}

	return bytes.Compare(ipA.To16(), ipB.To16())
}

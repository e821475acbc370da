package discovery

import (
	"fmt"
	"time"
)

// Strategy selects how ports are probed
type Strategy string

const (
	StrategyConnect   Strategy = "connect"
	StrategyHandshake Strategy = "handshake"
	StrategyBoth      Strategy = "both"
)

// ParseStrategy returns the Strategy matching name
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case StrategyConnect, StrategyHandshake, StrategyBoth:
		return Strategy(name), nil
	case "":
		return StrategyConnect, nil
	default:
		return "", fmt.Errorf("unknown probe strategy: %s", name)
	}
}

// ScanTarget an address and port pair to test
type ScanTarget struct {
	Address string
	Port    int
}

// ScanResult the outcome of probing one ScanTarget
type ScanResult struct {
	Address     string
	Port        int
	Open        bool
	ErrorDetail string
}

// SweepRequest represents the already parsed parameters of a sweep
type SweepRequest struct {
	Ranges      []string
	Ports       []int
	MinOctet    int
	MaxOctet    int
	Concurrency int
	Strategy    Strategy
	DryRun      bool
}

// SweepResult represents the collected results of a sweep
type SweepResult struct {
	ID          string
	Started     time.Time
	OpenHosts   []ScanResult
	Listing     []ScanTarget
	Planned     int
	Tested      int
	Failures    map[string]int
	Elapsed     time.Duration
	DryRun      bool
	Interrupted bool
}

package target

import (
	"fmt"
	"net"
	"strconv"

	"github.com/robgonnella/fleetprobe/internal/exception"
)

//go:generate mockgen -destination=../mock/target/mock_target.go -package=mock_target . Registry,Repo

// Target a registered server monitored by the fleet prober
type Target struct {
	ID          int      `yaml:"id"`
	Address     string   `yaml:"address"`
	Port        int      `yaml:"port"`
	Scheme      string   `yaml:"scheme"`
	Principal   string   `yaml:"principal"`
	Credential  string   `yaml:"credential"`
	Namespace   string   `yaml:"namespace"`
	Company     string   `yaml:"company"`
	Product     string   `yaml:"product"`
	ScanEnabled bool     `yaml:"scan_enabled"`
	Notify      []string `yaml:"notify"`
}

// Credential a principal and credential pair
type Credential struct {
	Principal  string
	Credential string
}

// Filter narrows List results, zero values match everything
type Filter struct {
	IDs         []int
	Company     string
	EnabledOnly bool
}

// Registry read access to registered targets
type Registry interface {
	Get(id int) (*Target, error)
	List(filter *Filter) ([]*Target, error)
	DistinctCredentials() ([]Credential, error)
}

// Repo registry storage including administrative writes
type Repo interface {
	Registry
	Add(t *Target) (*Target, error)
	Update(t *Target) (*Target, error)
	Remove(id int) error
}

// Key returns the index key for an address and port
func Key(address string, port int) string {
	return net.JoinHostPort(address, strconv.Itoa(port))
}

// HostPort returns the index key of the target
func (t *Target) HostPort() string {
	return Key(t.Address, t.Port)
}

// Credentials returns the target's credential pair
func (t *Target) Credentials() Credential {
	return Credential{Principal: t.Principal, Credential: t.Credential}
}

// Validate returns an error if the target cannot be probed
func (t *Target) Validate() error {
	if t.Address == "" {
		return fmt.Errorf("%w: address cannot be empty", exception.ErrInvalidTarget)
	}

	if t.Port < 1 || t.Port > 65535 {
		return fmt.Errorf("%w: port %d", exception.ErrInvalidTarget, t.Port)
	}

	return nil
}

// Index maps address:port to target
func Index(targets []*Target) map[string]*Target {
	index := make(map[string]*Target, len(targets))

	for _, t := range targets {
		index[t.HostPort()] = t
	}

	return index
}

func (f *Filter) matches(t *Target) bool {
	if f == nil {
		return true
	}

	if f.EnabledOnly && !t.ScanEnabled {
		return false
	}

	if f.Company != "" && f.Company != t.Company {
		return false
	}

	if len(f.IDs) > 0 {
		for _, id := range f.IDs {
			if id == t.ID {
				return true
			}
		}

		return false
	}

	return true
}

package target

import (
	"github.com/imdario/mergo"
	"github.com/robgonnella/fleetprobe/internal/logger"
)

// TargetService wraps a Repo with the operations used by the cli and core
type TargetService struct {
	repo Repo
	log  logger.Logger
}

// NewService returns a new instance of TargetService
func NewService(repo Repo) *TargetService {
	return &TargetService{
		repo: repo,
		log:  logger.New(),
	}
}

// Get returns a single target
func (s *TargetService) Get(id int) (*Target, error) {
	return s.repo.Get(id)
}

// List returns targets matching filter
func (s *TargetService) List(filter *Filter) ([]*Target, error) {
	return s.repo.List(filter)
}

// DistinctCredentials returns every distinct credential pair in the registry
func (s *TargetService) DistinctCredentials() ([]Credential, error) {
	return s.repo.DistinctCredentials()
}

// Index returns all targets keyed by address:port
func (s *TargetService) Index() (map[string]*Target, error) {
	targets, err := s.repo.List(nil)

	if err != nil {
		return nil, err
	}

	return Index(targets), nil
}

// Add registers a new target
func (s *TargetService) Add(t *Target) (*Target, error) {
	added, err := s.repo.Add(t)

	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("id", added.ID).
		Str("endpoint", added.HostPort()).
		Msg("registered target")

	return added, nil
}

// Update applies the non-zero fields of changes to the target with id.
// Scan enablement is changed through SetScanEnabled only.
func (s *TargetService) Update(id int, changes Target) (*Target, error) {
	current, err := s.repo.Get(id)

	if err != nil {
		return nil, err
	}

	if err := mergo.Merge(&changes, *current); err != nil {
		return nil, err
	}

	changes.ID = current.ID
	changes.ScanEnabled = current.ScanEnabled

	if err := changes.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(&changes)

	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("id", updated.ID).
		Str("endpoint", updated.HostPort()).
		Msg("updated target")

	return updated, nil
}

// SetScanEnabled enables or disables probing of a target
func (s *TargetService) SetScanEnabled(id int, enabled bool) (*Target, error) {
	t, err := s.repo.Get(id)

	if err != nil {
		return nil, err
	}

	t.ScanEnabled = enabled

	return s.repo.Update(t)
}

// Remove unregisters a target
func (s *TargetService) Remove(id int) error {
	if err := s.repo.Remove(id); err != nil {
		return err
	}

	s.log.Info().Int("id", id).Msg("removed target")

	return nil
}

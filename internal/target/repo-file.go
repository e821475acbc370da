package target

import (
	"errors"
	"os"
	"sort"
	"sync"

	"github.com/robgonnella/fleetprobe/internal/exception"
	"gopkg.in/yaml.v3"
)

type targetFile struct {
	Targets []*Target `yaml:"targets"`
}

// FileRepo is our repo implementation for a yaml flat file
type FileRepo struct {
	path string
	mux  sync.Mutex
}

// NewFileRepo returns a new instance of FileRepo
func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path}
}

// Get returns a target from the file
func (r *FileRepo) Get(id int) (*Target, error) {
	r.mux.Lock()
	defer r.mux.Unlock()

	targets, err := r.read()

	if err != nil {
		return nil, err
	}

	for _, t := range targets {
		if t.ID == id {
			return t, nil
		}
	}

	return nil, exception.ErrRecordNotFound
}

// List returns all targets matching filter ordered by id
func (r *FileRepo) List(filter *Filter) ([]*Target, error) {
	r.mux.Lock()
	defer r.mux.Unlock()

	targets, err := r.read()

	if err != nil {
		return nil, err
	}

	result := []*Target{}

	for _, t := range targets {
		if filter.matches(t) {
			result = append(result, t)
		}
	}

	return result, nil
}

// DistinctCredentials returns every distinct principal and credential pair
func (r *FileRepo) DistinctCredentials() ([]Credential, error) {
	r.mux.Lock()
	defer r.mux.Unlock()

	targets, err := r.read()

	if err != nil {
		return nil, err
	}

	seen := map[Credential]bool{}
	creds := []Credential{}

	for _, t := range targets {
		c := t.Credentials()

		if !seen[c] {
			seen[c] = true
			creds = append(creds, c)
		}
	}

	sort.Slice(creds, func(i, j int) bool {
		if creds[i].Principal != creds[j].Principal {
			return creds[i].Principal < creds[j].Principal
		}

		return creds[i].Credential < creds[j].Credential
	})

	return creds, nil
}

// Add appends a new target to the file, assigning the next free id
func (r *FileRepo) Add(t *Target) (*Target, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	r.mux.Lock()
	defer r.mux.Unlock()

	targets, err := r.read()

	if err != nil {
		return nil, err
	}

	maxID := 0

	for _, existing := range targets {
		if t.ID != 0 && existing.ID == t.ID {
			return nil, errors.New("target id already exists")
		}

		if existing.ID > maxID {
			maxID = existing.ID
		}
	}

	added := *t

	if added.ID == 0 {
		added.ID = maxID + 1
	}

	targets = append(targets, &added)

	if err := r.write(targets); err != nil {
		return nil, err
	}

	return &added, nil
}

// Update replaces a target in the file
func (r *FileRepo) Update(t *Target) (*Target, error) {
	if t.ID == 0 {
		return nil, errors.New("target id cannot be empty")
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	r.mux.Lock()
	defer r.mux.Unlock()

	targets, err := r.read()

	if err != nil {
		return nil, err
	}

	for i, existing := range targets {
		if existing.ID == t.ID {
			updated := *t
			targets[i] = &updated

			if err := r.write(targets); err != nil {
				return nil, err
			}

			return &updated, nil
		}
	}

	return nil, exception.ErrRecordNotFound
}

// Remove deletes a target from the file
func (r *FileRepo) Remove(id int) error {
	r.mux.Lock()
	defer r.mux.Unlock()

	targets, err := r.read()

	if err != nil {
		return err
	}

	remaining := []*Target{}

	for _, t := range targets {
		if t.ID != id {
			remaining = append(remaining, t)
		}
	}

	if len(remaining) == len(targets) {
		return exception.ErrRecordNotFound
	}

	return r.write(remaining)
}

func (r *FileRepo) read() ([]*Target, error) {
	raw, err := os.ReadFile(r.path)

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*Target{}, nil
		}

		return nil, err
	}

	file := targetFile{}

	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}

	sort.Slice(file.Targets, func(i, j int) bool {
		return file.Targets[i].ID < file.Targets[j].ID
	})

	return file.Targets, nil
}

func (r *FileRepo) write(targets []*Target) error {
	file, err := os.Create(r.path)

	if err != nil {
		return err
	}

	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)

	return encoder.Encode(targetFile{Targets: targets})
}

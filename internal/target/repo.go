package target

import (
	"encoding/json"
	"errors"

	"github.com/robgonnella/fleetprobe/internal/exception"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TargetModel the database representation of a Target
type TargetModel struct {
	ID          int    `gorm:"primaryKey"`
	Address     string `gorm:"index:idx_target_endpoint"`
	Port        int    `gorm:"index:idx_target_endpoint"`
	Scheme      string
	Principal   string
	Credential  string
	Namespace   string
	Company     string
	Product     string
	ScanEnabled bool
	Notify      datatypes.JSON
}

// TableName overrides the gorm table name
func (TargetModel) TableName() string {
	return "targets"
}

// SqliteRepo is our repo implementation for gorm backed sql databases
type SqliteRepo struct {
	db *gorm.DB
}

// NewSqliteRepo returns a new target repo
func NewSqliteRepo(db *gorm.DB) *SqliteRepo {
	return &SqliteRepo{db: db}
}

// Get returns a target from the database
func (r *SqliteRepo) Get(id int) (*Target, error) {
	if id == 0 {
		return nil, errors.New("target id cannot be empty")
	}

	model := TargetModel{}

	if result := r.db.First(&model, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, exception.ErrRecordNotFound
		}

		return nil, result.Error
	}

	return modelToTarget(&model)
}

// List returns all targets matching filter ordered by id
func (r *SqliteRepo) List(filter *Filter) ([]*Target, error) {
	models := []TargetModel{}

	query := r.db.Order("id asc")

	if filter != nil {
		if len(filter.IDs) > 0 {
			query = query.Where("id IN ?", filter.IDs)
		}

		if filter.Company != "" {
			query = query.Where("company = ?", filter.Company)
		}

		if filter.EnabledOnly {
			query = query.Where("scan_enabled = ?", true)
		}
	}

	if result := query.Find(&models); result.Error != nil {
		return nil, result.Error
	}

	targets := []*Target{}

	for _, m := range models {
		t, err := modelToTarget(&m)

		if err != nil {
			return nil, err
		}

		targets = append(targets, t)
	}

	return targets, nil
}

// DistinctCredentials returns every distinct principal and credential pair
func (r *SqliteRepo) DistinctCredentials() ([]Credential, error) {
	creds := []Credential{}

	result := r.db.Model(&TargetModel{}).
		Distinct("principal", "credential").
		Order("principal, credential").
		Find(&creds)

	if result.Error != nil {
		return nil, result.Error
	}

	return creds, nil
}

// Add creates a new target in the database
func (r *SqliteRepo) Add(t *Target) (*Target, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	model, err := targetToModel(t)

	if err != nil {
		return nil, err
	}

	if result := r.db.Create(model); result.Error != nil {
		return nil, result.Error
	}

	return modelToTarget(model)
}

// Update updates a target in the database
func (r *SqliteRepo) Update(t *Target) (*Target, error) {
	if t.ID == 0 {
		return nil, errors.New("target id cannot be empty")
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	model, err := targetToModel(t)

	if err != nil {
		return nil, err
	}

	if result := r.db.Save(model); result.Error != nil {
		return nil, result.Error
	}

	return modelToTarget(model)
}

// Remove deletes a target from the database
func (r *SqliteRepo) Remove(id int) error {
	if id == 0 {
		return errors.New("target id cannot be empty")
	}

	result := r.db.Delete(&TargetModel{ID: id})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return exception.ErrRecordNotFound
	}

	return nil
}

// helpers
func modelToTarget(model *TargetModel) (*Target, error) {
	notify := []string{}

	if len(model.Notify) > 0 {
		if err := json.Unmarshal([]byte(model.Notify.String()), &notify); err != nil {
			return nil, err
		}
	}

	return &Target{
		ID:          model.ID,
		Address:     model.Address,
		Port:        model.Port,
		Scheme:      model.Scheme,
		Principal:   model.Principal,
		Credential:  model.Credential,
		Namespace:   model.Namespace,
		Company:     model.Company,
		Product:     model.Product,
		ScanEnabled: model.ScanEnabled,
		Notify:      notify,
	}, nil
}

func targetToModel(t *Target) (*TargetModel, error) {
	notify := t.Notify

	if notify == nil {
		notify = []string{}
	}

	notifyBytes, err := json.Marshal(notify)

	if err != nil {
		return nil, err
	}

	return &TargetModel{
		ID:          t.ID,
		Address:     t.Address,
		Port:        t.Port,
		Scheme:      t.Scheme,
		Principal:   t.Principal,
		Credential:  t.Credential,
		Namespace:   t.Namespace,
		Company:     t.Company,
		Product:     t.Product,
		ScanEnabled: t.ScanEnabled,
		Notify:      datatypes.JSON(notifyBytes),
	}, nil
}

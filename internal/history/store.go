package history

import (
	"context"
	"time"

	"github.com/robgonnella/fleetprobe/internal/status"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=../mock/history/mock_history.go -package=mock_history . Store

// Store append-only persistence of probe outcomes
type Store interface {
	Append(ctx context.Context, outcome *status.Outcome) error
	Query(ctx context.Context, w Window, filter []int) ([]*status.Outcome, error)
}

// RecordModel the database representation of a probe outcome
type RecordModel struct {
	ID        uint      `gorm:"primaryKey"`
	TargetID  int       `gorm:"index:idx_record_target_time"`
	Timestamp time.Time `gorm:"index:idx_record_target_time;index"`
	Category  string
	Code      int
	Detail    string
	ElapsedMS int64
}

// TableName overrides the gorm table name
func (RecordModel) TableName() string {
	return "probe_records"
}

// GormStore implements the Store interface on a gorm database
type GormStore struct {
	db *gorm.DB
}

// NewGormStore returns a new instance of GormStore
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Append inserts a single outcome
func (s *GormStore) Append(ctx context.Context, outcome *status.Outcome) error {
	model := RecordModel{
		TargetID:  outcome.TargetID,
		Timestamp: outcome.Timestamp.UTC(),
		Category:  outcome.Category.String(),
		Code:      outcome.Category.Code(),
		Detail:    outcome.Detail,
		ElapsedMS: outcome.Elapsed.Milliseconds(),
	}

	return s.db.WithContext(ctx).Create(&model).Error
}

// Query returns outcomes in the window in timestamp order
func (s *GormStore) Query(ctx context.Context, w Window, filter []int) ([]*status.Outcome, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	models := []RecordModel{}

	query := s.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp < ?", w.Start.UTC(), w.End.UTC()).
		Order("timestamp asc").
		Order("target_id asc")

	if len(filter) > 0 {
		query = query.Where("target_id IN ?", filter)
	}

	if result := query.Find(&models); result.Error != nil {
		return nil, result.Error
	}

	outcomes := make([]*status.Outcome, 0, len(models))

	for _, m := range models {
		category, err := status.Parse(m.Category)

		if err != nil {
			category = status.UnknownError
		}

		outcomes = append(outcomes, &status.Outcome{
			TargetID:  m.TargetID,
			Timestamp: m.Timestamp,
			Category:  category,
			Detail:    m.Detail,
			Elapsed:   time.Duration(m.ElapsedMS) * time.Millisecond,
		})
	}

	return outcomes, nil
}

package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobfit/analyzer/internal/models"
	"jobfit/analyzer/internal/security"
)

type SecurityEventRepository interface {
	Create(record *models.SecurityEventRecord) error
	FindRecent(limit int) ([]models.SecurityEventRecord, error)
}

type securityEventRepository struct {
	db *gorm.DB
}

func NewSecurityEventRepository(db *gorm.DB) SecurityEventRepository {
	return &securityEventRepository{db: db}
}

func (r *securityEventRepository) Create(record *models.SecurityEventRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create security event: %w", err)
	}
	return nil
}

func (r *securityEventRepository) FindRecent(limit int) ([]models.SecurityEventRecord, error) {
	var records []models.SecurityEventRecord
	err := r.db.
		Order("timestamp DESC").
		Limit(limit).
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find security events: %w", err)
	}

	return records, nil
}

// DatabaseSink persists security events through the repository, implementing
// security.Sink.
type DatabaseSink struct {
	repo SecurityEventRepository
}

func NewDatabaseSink(repo SecurityEventRepository) *DatabaseSink {
	return &DatabaseSink{repo: repo}
}

func (s *DatabaseSink) Name() string { return "database" }

func (s *DatabaseSink) Write(_ context.Context, ev security.Event) error {
	record := &models.SecurityEventRecord{
		ID:          uuid.New(),
		Timestamp:   ev.Timestamp,
		EventType:   string(ev.Type),
		Endpoint:    ev.Endpoint,
		CheckKind:   ev.CheckKind,
		Confidence:  ev.Confidence,
		Blocked:     ev.Blocked,
		RequestID:   ev.RequestID,
		DurationMs:  ev.DurationMs,
		InputLength: ev.InputLength,
	}
	return s.repo.Create(record)
}

func (s *DatabaseSink) Close() error { return nil }

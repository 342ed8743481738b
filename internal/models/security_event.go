package models

import (
	"time"

	"github.com/google/uuid"
)

// SecurityEventRecord is the persisted form of a security audit entry.
type SecurityEventRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Timestamp   time.Time `gorm:"type:timestamp;not null" json:"timestamp"`
	EventType   string    `gorm:"type:text;not null" json:"event_type"`
	Endpoint    string    `gorm:"type:text" json:"endpoint"`
	CheckKind   string    `gorm:"type:text" json:"check_kind"`
	Confidence  float64   `gorm:"type:decimal(4,3)" json:"confidence"`
	Blocked     bool      `gorm:"not null" json:"blocked"`
	RequestID   string    `gorm:"type:text" json:"request_id"`
	DurationMs  int64     `json:"duration_ms"`
	InputLength int       `json:"input_length"`
	CreatedAt   time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (SecurityEventRecord) TableName() string {
	return "security_events"
}

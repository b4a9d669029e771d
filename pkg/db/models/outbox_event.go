package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dvthanh/garahub-backend/pkg/enums"
)

// OutboxEvent is an append-only record of a document change, written in the
// same transaction as the change itself. The sync worker drains unpublished
// rows to the remote mirror; local workflows never wait on it.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;not null" json:"event_type"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;not null" json:"aggregate_type"`
	AggregateID   uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null;index" json:"aggregate_id"`
	Payload       json.RawMessage           `gorm:"column:payload;not null" json:"payload"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	PublishedAt   *time.Time                `gorm:"column:published_at;index" json:"published_at"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null;default:0" json:"attempt_count"`
	LastError     *string                   `gorm:"column:last_error" json:"last_error"`
}

package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
)

// MirrorRecord is the per-aggregate snapshot held in the remote mirror. The
// mirror is last-write-wins: each published event overwrites the previous
// snapshot for its aggregate.
type MirrorRecord struct {
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;primaryKey"`
	AggregateID   uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;not null"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	EventAt       time.Time                 `gorm:"column:event_at;not null"`
	SyncedAt      time.Time                 `gorm:"column:synced_at;not null"`
}

// TableName implements the gorm naming override.
func (MirrorRecord) TableName() string {
	return "mirror_records"
}

// Publisher pushes one outbox event to the remote side.
type Publisher interface {
	Publish(ctx context.Context, event models.OutboxEvent) error
}

type mirrorPublisher struct {
	db *gorm.DB
}

// NewMirrorPublisher builds a publisher that upserts snapshots into the
// mirror database.
func NewMirrorPublisher(db *gorm.DB) (Publisher, error) {
	if db == nil {
		return nil, fmt.Errorf("mirror db required")
	}
	return &mirrorPublisher{db: db}, nil
}

func (p *mirrorPublisher) Publish(ctx context.Context, event models.OutboxEvent) error {
	if event.EventType == enums.EventEntityDeleted {
		return p.db.WithContext(ctx).
			Where("aggregate_type = ? AND aggregate_id = ?", event.AggregateType, event.AggregateID).
			Delete(&MirrorRecord{}).Error
	}

	record := MirrorRecord{
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       event.Payload,
		EventAt:       event.CreatedAt,
		SyncedAt:      time.Now().UTC(),
	}
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "aggregate_type"}, {Name: "aggregate_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"event_type", "payload", "event_at", "synced_at"}),
		}).
		Create(&record).Error
}

package models

import "time"

// CodeSequence is a persisted per-scope counter for human-readable codes.
// It is incremented inside the same transaction as the record insert, so
// deleting records never causes a code to be reissued.
type CodeSequence struct {
	Scope     string    `gorm:"column:scope;primaryKey" json:"scope"`
	NextValue int64     `gorm:"column:next_value;not null;default:1" json:"next_value"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

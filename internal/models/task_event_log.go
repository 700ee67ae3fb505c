package models

import (
	"time"

	"gorm.io/datatypes"
)

// TaskEventLog is an append-only audit entry. Rows are only removed through
// the cascade when their task is deleted; a user with entries cannot be
// deleted.
type TaskEventLog struct {
	ID          uint64            `gorm:"primarykey" json:"id"`
	CreatedOn   time.Time         `gorm:"autoCreateTime;index" json:"created_on"`
	Event       EventKind         `gorm:"not null" json:"event"`
	Description string            `gorm:"type:text" json:"description"`
	Changes     datatypes.JSONMap `json:"changes,omitempty"`
	TaskID      uint64            `gorm:"not null" json:"task_id"`
	UserID      uint64            `gorm:"not null" json:"user_id"`

	// Relations
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user,omitempty"`
}

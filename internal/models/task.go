package models

import "time"

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	CreatedOn   time.Time  `gorm:"autoCreateTime" json:"created_on"`
	ModifiedOn  time.Time  `gorm:"autoUpdateTime" json:"modified_on"`
	Name        string     `gorm:"type:varchar(300);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Priority    Priority   `gorm:"not null" json:"priority"`
	Status      TaskStatus `gorm:"not null" json:"status"`
	CategoryID  uint64     `gorm:"not null" json:"category_id"`
	ReporterID  uint64     `gorm:"not null" json:"reporter_id"`
	AssigneeID  *uint64    `json:"assignee_id"`

	// Relations
	Category TaskCategory   `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
	Reporter User           `gorm:"foreignKey:ReporterID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"reporter,omitempty"`
	Assignee *User          `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"assignee,omitempty"`
	Events   []TaskEventLog `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

// HasAssignee reports whether the task is currently assigned to userID.
// A nil userID matches an unassigned task.
func (t *Task) HasAssignee(userID *uint64) bool {
	if t.AssigneeID == nil || userID == nil {
		return t.AssigneeID == nil && userID == nil
	}
	return *t.AssigneeID == *userID
}

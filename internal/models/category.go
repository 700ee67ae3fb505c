package models

import "time"

type TaskCategory struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:varchar(300)" json:"description"`
	CreatedOn   time.Time `gorm:"autoCreateTime" json:"created_on"`
}

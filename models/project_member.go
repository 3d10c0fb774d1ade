package models

import (
	"time"
)

// ProjectMember verknüpft eine Person mit einem Forschungsprojekt.
type ProjectMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ProjectID uint   `json:"project_id" gorm:"index:idx_project_member_pair,unique;not null"`
	PersonID  uint   `json:"person_id" gorm:"index:idx_project_member_pair,unique;not null"`
	Role      string `json:"role,omitempty"`
}

func (ProjectMember) TableName() string {
	return "project_members"
}

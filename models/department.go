package models

import "time"

// Department is an organizational unit. A user belongs to at most one at a
// time; membership rows live in department_members.
type Department struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Slug        string    `gorm:"size:128;not null;uniqueIndex" json:"slug"`
	Emoji       string    `gorm:"size:16" json:"emoji"`
	Description string    `gorm:"size:1024" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DepartmentMember is the explicit membership relation. The composite unique
// index makes join idempotent at the storage level as well.
type DepartmentMember struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	DepartmentID uint      `gorm:"not null;uniqueIndex:idx_dept_member" json:"department_id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_dept_member;index" json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

package models

import "time"

// PostScope tags which audience a post targets. Exactly one of the two FK
// columns is set for department/group scope, neither for global; writes go
// through SetTarget so the "both set" state cannot be reached.
type PostScope string

const (
	ScopeGlobal     PostScope = "global"
	ScopeDepartment PostScope = "department"
	ScopeGroup      PostScope = "group"
)

// Post is immutable in author and target after creation.
type Post struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	AuthorID     uint        `gorm:"index;not null" json:"author_id"`
	Scope        PostScope   `gorm:"size:16;not null;default:'global'" json:"scope"`
	DepartmentID *uint       `gorm:"index" json:"department_id,omitempty"`
	GroupID      *uint       `gorm:"index" json:"group_id,omitempty"`
	Content      string      `gorm:"type:text;not null" json:"content"`
	IsShowcase   bool        `gorm:"default:false" json:"is_showcase"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Author       User        `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Media        []PostMedia `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"media"`
}

// PostMedia is one attached image with an optional caption.
type PostMedia struct {
	ID      uint   `gorm:"primaryKey" json:"-"`
	PostID  uint   `gorm:"index;not null" json:"-"`
	URL     string `gorm:"size:1024;not null" json:"url"`
	Caption string `gorm:"size:512" json:"caption,omitempty"`
}

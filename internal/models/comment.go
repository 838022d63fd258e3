package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a remark on a post. ParentID is nil for top-level comments.
type Comment struct {
	ID        string    `gorm:"type:varchar(36);primaryKey;column:id"`
	Content   string    `gorm:"type:varchar(500);not null;column:content"`
	PostID    string    `gorm:"type:varchar(36);not null;index;column:post_id"`
	AuthorID  string    `gorm:"type:varchar(36);not null;index;column:author_id"`
	ParentID  *string   `gorm:"type:varchar(36);index;column:parent_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`

	// Relationships
	Post   Post     `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	Author User     `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
	Parent *Comment `gorm:"foreignKey:ParentID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}

// BeforeCreate assigns a UUID when the caller did not
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

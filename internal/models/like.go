package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like pairs a user with either a post or a comment. Each pairing is unique;
// NULLs never collide in the composite indexes, so one table serves both targets.
type Like struct {
	ID        string    `gorm:"type:varchar(36);primaryKey;column:id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:likes_user_post_ux;uniqueIndex:likes_user_comment_ux;column:user_id"`
	PostID    *string   `gorm:"type:varchar(36);uniqueIndex:likes_user_post_ux;index;column:post_id"`
	CommentID *string   `gorm:"type:varchar(36);uniqueIndex:likes_user_comment_ux;index;column:comment_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	User    User     `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Post    *Post    `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	Comment *Comment `gorm:"foreignKey:CommentID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Like
func (Like) TableName() string {
	return "likes"
}

// BeforeCreate assigns a UUID when the caller did not
func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Post{},
		&PostImage{},
		&Comment{},
		&Like{},
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups posts; rows are created lazily the first time a post names them
type Category struct {
	ID          string    `gorm:"type:varchar(36);primaryKey;column:id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex;column:name"`
	Description string    `gorm:"type:varchar(255);column:description"`
	Icon        string    `gorm:"type:varchar(32);column:icon"`
	Color       string    `gorm:"type:varchar(32);column:color"`
	CreatedAt   time.Time `gorm:"not null;column:created_at"`
	UpdatedAt   time.Time `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for Category
func (Category) TableName() string {
	return "categories"
}

// BeforeCreate assigns a UUID when the caller did not
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

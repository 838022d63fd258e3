package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Post statuses. Any status may follow any other; workflow is enforced by callers.
const (
	StatusLost     = "LOST"
	StatusFound    = "FOUND"
	StatusReturned = "RETURNED"
	StatusClosed   = "CLOSED"
)

// Preferred contact channels
const (
	ContactPhone = "PHONE"
	ContactEmail = "EMAIL"
	ContactBoth  = "BOTH"
)

// Post represents a lost or found item listing
type Post struct {
	ID          string   `gorm:"type:varchar(36);primaryKey;column:id"`
	Title       string   `gorm:"type:varchar(100);not null;column:title"`
	Description string   `gorm:"type:text;not null;column:description"`
	Status      string   `gorm:"type:varchar(16);not null;index;column:status"`
	Reward      *float64 `gorm:"type:decimal(12,2);column:reward"`

	// Location
	Address   string   `gorm:"type:varchar(255);column:address"`
	City      string   `gorm:"type:varchar(100);column:city"`
	State     string   `gorm:"type:varchar(100);column:state"`
	Country   string   `gorm:"type:varchar(100);column:country"`
	Latitude  *float64 `gorm:"column:latitude"`
	Longitude *float64 `gorm:"column:longitude"`

	// Contact
	ContactPhone     string `gorm:"type:varchar(32);column:contact_phone"`
	ContactEmail     string `gorm:"type:varchar(255);column:contact_email"`
	PreferredContact string `gorm:"type:varchar(16);not null;default:'EMAIL';column:preferred_contact"`

	Tags pq.StringArray `gorm:"type:text[];column:tags"`

	AuthorID   string    `gorm:"type:varchar(36);not null;index;column:author_id"`
	CategoryID string    `gorm:"type:varchar(36);not null;index;column:category_id"`
	CreatedAt  time.Time `gorm:"not null;index;column:created_at"`
	UpdatedAt  time.Time `gorm:"not null;column:updated_at"`

	// Relationships
	Author   User        `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
	Category Category    `gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:RESTRICT"`
	Images   []PostImage `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`

	// Aggregates filled by the repository, not stored
	CommentCount int64 `gorm:"-"`
	LikeCount    int64 `gorm:"-"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// BeforeCreate assigns a UUID when the caller did not
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PostImage is an uploaded image attached to a post
type PostImage struct {
	ID        string    `gorm:"type:varchar(36);primaryKey;column:id"`
	PostID    string    `gorm:"type:varchar(36);not null;index;column:post_id"`
	URL       string    `gorm:"type:varchar(1024);not null;column:url"`
	Filename  string    `gorm:"type:varchar(255);not null;column:filename"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for PostImage
func (PostImage) TableName() string {
	return "post_images"
}

// BeforeCreate assigns a UUID when the caller did not
func (i *PostImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

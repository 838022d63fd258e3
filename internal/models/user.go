package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered member
type User struct {
	ID        string `gorm:"type:varchar(36);primaryKey;column:id"`
	Email     string `gorm:"type:varchar(255);not null;uniqueIndex;column:email"`
	Username  string `gorm:"type:varchar(50);not null;uniqueIndex;column:username"`
	FirstName string `gorm:"type:varchar(50);column:first_name"`
	LastName  string `gorm:"type:varchar(50);column:last_name"`
	Avatar    string `gorm:"type:varchar(1024);column:avatar"`
	Bio       string `gorm:"type:varchar(500);column:bio"`
	Phone     string `gorm:"type:varchar(32);column:phone"`

	// Location
	City    string `gorm:"type:varchar(100);column:city"`
	State   string `gorm:"type:varchar(100);column:state"`
	Country string `gorm:"type:varchar(100);column:country"`

	// Preferences
	EmailNotifications bool `gorm:"not null;default:true;column:email_notifications"`
	PushNotifications  bool `gorm:"not null;default:true;column:push_notifications"`
	PublicProfile      bool `gorm:"not null;default:true;column:public_profile"`
	ShowContactInfo    bool `gorm:"not null;default:false;column:show_contact_info"`

	// Denormalized counters, updated in the same transaction as the entity write
	PostsCount        int64 `gorm:"not null;default:0;column:posts_count"`
	CommentsCount     int64 `gorm:"not null;default:0;column:comments_count"`
	SuccessfulReturns int64 `gorm:"not null;default:0;column:successful_returns"`

	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID when the caller did not
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

package objects

import "github.com/lostfound/backend/internal/models"

// UserLocation is omitted when the user has set no location field
type UserLocation struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Preferences are the user's notification and privacy switches
type Preferences struct {
	EmailNotifications bool `json:"emailNotifications"`
	PushNotifications  bool `json:"pushNotifications"`
	PublicProfile      bool `json:"publicProfile"`
	ShowContactInfo    bool `json:"showContactInfo"`
}

// ProfileStats summarizes a user's activity
type ProfileStats struct {
	PostsCount        int64  `json:"postsCount"`
	CommentsCount     int64  `json:"commentsCount"`
	SuccessfulReturns int64  `json:"successfulReturns"`
	MemberSince       string `json:"memberSince"`
}

// ProfileCounts are the live relation counts fed into a profile
type ProfileCounts struct {
	Posts    int64
	Comments int64
}

// UserProfile is the client-facing form of a user
type UserProfile struct {
	ID          string        `json:"id"`
	Email       string        `json:"email"`
	Username    string        `json:"username"`
	FirstName   string        `json:"firstName"`
	LastName    string        `json:"lastName"`
	Avatar      string        `json:"avatar"`
	Bio         string        `json:"bio"`
	Phone       string        `json:"phone"`
	Location    *UserLocation `json:"location,omitempty"`
	Preferences Preferences   `json:"preferences"`
	Stats       ProfileStats  `json:"stats"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
}

// NewUserProfile projects a user row with its live counts
func NewUserProfile(row *models.User, counts ProfileCounts) UserProfile {
	profile := UserProfile{
		ID:        row.ID,
		Email:     row.Email,
		Username:  row.Username,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Avatar:    row.Avatar,
		Bio:       row.Bio,
		Phone:     row.Phone,
		Preferences: Preferences{
			EmailNotifications: row.EmailNotifications,
			PushNotifications:  row.PushNotifications,
			PublicProfile:      row.PublicProfile,
			ShowContactInfo:    row.ShowContactInfo,
		},
		Stats: ProfileStats{
			PostsCount:        counts.Posts,
			CommentsCount:     counts.Comments,
			SuccessfulReturns: row.SuccessfulReturns,
			MemberSince:       formatTime(row.CreatedAt),
		},
		CreatedAt: formatTime(row.CreatedAt),
		UpdatedAt: formatTime(row.UpdatedAt),
	}

	if row.City != "" || row.State != "" || row.Country != "" {
		profile.Location = &UserLocation{
			City:    row.City,
			State:   row.State,
			Country: row.Country,
		}
	}
	return profile
}

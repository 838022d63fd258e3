package objects

import (
	"strings"
	"time"

	"github.com/lostfound/backend/internal/models"
)

// TimeLayout is the ISO-8601 form every timestamp is rendered in
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Author is the public summary of a user attached to posts and comments
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Coordinates is only present when both latitude and longitude are stored
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location describes where an item was lost or found
type Location struct {
	Address     string       `json:"address"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	Country     string       `json:"country"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// ContactInfo is how the poster wants to be reached
type ContactInfo struct {
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	PreferredContact string `json:"preferredContact"`
}

// Counts holds relation aggregates
type Counts struct {
	Comments int64 `json:"comments"`
	Likes    int64 `json:"likes"`
}

// Post is the client-facing form of a post
type Post struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Status      string      `json:"status"`
	Location    Location    `json:"location"`
	Images      []string    `json:"images"`
	Reward      *float64    `json:"reward"`
	ContactInfo ContactInfo `json:"contactInfo"`
	Tags        []string    `json:"tags"`
	Author      Author      `json:"author"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
	Count       Counts      `json:"_count"`
	IsLiked     bool        `json:"isLiked"`
}

// NewAuthor summarizes a user
func NewAuthor(u *models.User) Author {
	return Author{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}

// NewPost projects a post row loaded with its author, category, images and
// counts. liked is whether the current viewer likes it; anonymous viewers never do.
func NewPost(row *models.Post, liked bool) Post {
	images := make([]string, 0, len(row.Images))
	for _, img := range row.Images {
		images = append(images, img.URL)
	}

	tags := []string(row.Tags)
	if tags == nil {
		tags = []string{}
	}

	location := Location{
		Address: row.Address,
		City:    row.City,
		State:   row.State,
		Country: row.Country,
	}
	if row.Latitude != nil && row.Longitude != nil {
		location.Coordinates = &Coordinates{Lat: *row.Latitude, Lng: *row.Longitude}
	}

	return Post{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Category:    row.Category.Name,
		Status:      strings.ToLower(row.Status),
		Location:    location,
		Images:      images,
		Reward:      row.Reward,
		ContactInfo: ContactInfo{
			Phone:            row.ContactPhone,
			Email:            row.ContactEmail,
			PreferredContact: strings.ToLower(row.PreferredContact),
		},
		Tags:      tags,
		Author:    NewAuthor(&row.Author),
		CreatedAt: formatTime(row.CreatedAt),
		UpdatedAt: formatTime(row.UpdatedAt),
		Count: Counts{
			Comments: row.CommentCount,
			Likes:    row.LikeCount,
		},
		IsLiked: liked,
	}
}

// NewPosts projects a page of rows using the viewer's liked set
func NewPosts(rows []models.Post, liked map[string]bool) []Post {
	posts := make([]Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, NewPost(&rows[i], liked[rows[i].ID]))
	}
	return posts
}

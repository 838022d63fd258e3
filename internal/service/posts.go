package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/lostfound/backend/internal/api/objects"
	"github.com/lostfound/backend/internal/db"
	"github.com/lostfound/backend/internal/models"
	"github.com/lostfound/backend/internal/query"
	"github.com/lostfound/backend/pkg/logging"
	"github.com/lostfound/backend/pkg/telemetry"
)

// CreatePostInput is a new listing. Status and PreferredContact are case-insensitive.
type CreatePostInput struct {
	Title            string   `json:"title" validate:"required,max=100"`
	Description      string   `json:"description" validate:"required,max=2000"`
	Category         string   `json:"category" validate:"required,max=100"`
	Status           string   `json:"status" validate:"required,oneof=LOST FOUND RETURNED CLOSED"`
	Reward           *float64 `json:"reward" validate:"omitempty,gte=0"`
	Address          string   `json:"address" validate:"max=255"`
	City             string   `json:"city" validate:"max=100"`
	State            string   `json:"state" validate:"max=100"`
	Country          string   `json:"country" validate:"max=100"`
	Latitude         *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	ContactPhone     string   `json:"contactPhone" validate:"max=32"`
	ContactEmail     string   `json:"contactEmail" validate:"omitempty,email"`
	PreferredContact string   `json:"preferredContact" validate:"omitempty,oneof=PHONE EMAIL BOTH"`
	Tags             []string `json:"tags" validate:"max=20"`
	Images           []string `json:"images" validate:"max=10,dive,url"`
}

// UpdatePostInput changes the fields that are set
type UpdatePostInput struct {
	Title            *string   `json:"title" validate:"omitempty,min=1,max=100"`
	Description      *string   `json:"description" validate:"omitempty,min=1,max=2000"`
	Category         *string   `json:"category" validate:"omitempty,min=1,max=100"`
	Status           *string   `json:"status" validate:"omitempty,oneof=LOST FOUND RETURNED CLOSED"`
	Reward           *float64  `json:"reward" validate:"omitempty,gte=0"`
	Address          *string   `json:"address" validate:"omitempty,max=255"`
	City             *string   `json:"city" validate:"omitempty,max=100"`
	State            *string   `json:"state" validate:"omitempty,max=100"`
	Country          *string   `json:"country" validate:"omitempty,max=100"`
	Latitude         *float64  `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64  `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	ContactPhone     *string   `json:"contactPhone" validate:"omitempty,max=32"`
	ContactEmail     *string   `json:"contactEmail" validate:"omitempty,email"`
	PreferredContact *string   `json:"preferredContact" validate:"omitempty,oneof=PHONE EMAIL BOTH"`
	Tags             *[]string `json:"tags" validate:"omitempty,max=20"`
}

// PostService implements the post operations
type PostService struct {
	posts  PostStore
	likes  LikeStore
	users  UserStore
	logger *zap.Logger
}

// NewPostService creates a new post service
func NewPostService(stores Stores) *PostService {
	return &PostService{
		posts:  stores.Posts,
		likes:  stores.Likes,
		users:  stores.Users,
		logger: logging.WithComponent("posts"),
	}
}

// Create stores a new post for the author and returns its projection
func (s *PostService) Create(ctx context.Context, authorID string, in CreatePostInput) (objects.Post, error) {
	in.Status = strings.ToUpper(strings.TrimSpace(in.Status))
	in.PreferredContact = strings.ToUpper(strings.TrimSpace(in.PreferredContact))
	in.Category = strings.TrimSpace(in.Category)
	if in.PreferredContact == "" {
		in.PreferredContact = models.ContactEmail
	}
	if err := validateStruct(in); err != nil {
		return objects.Post{}, err
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return objects.Post{}, fmt.Errorf("failed to load author: %w", err)
	}
	if author == nil {
		return objects.Post{}, notFound("User", authorID)
	}

	post := &models.Post{
		Title:            in.Title,
		Description:      in.Description,
		Status:           in.Status,
		Reward:           in.Reward,
		Address:          in.Address,
		City:             in.City,
		State:            in.State,
		Country:          in.Country,
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		ContactPhone:     in.ContactPhone,
		ContactEmail:     in.ContactEmail,
		PreferredContact: in.PreferredContact,
		Tags:             pq.StringArray(query.ParseTags(in.Tags...)),
		AuthorID:         authorID,
	}
	for _, url := range in.Images {
		post.Images = append(post.Images, models.PostImage{URL: url, Filename: imageFilename(url)})
	}

	if err := s.posts.Create(ctx, post, in.Category); err != nil {
		return objects.Post{}, err
	}
	s.logger.Info("Post created", zap.String("post_id", post.ID), zap.String("author_id", authorID))

	return s.Get(ctx, post.ID, authorID)
}

// List returns one page of posts matching the filter, newest first
func (s *PostService) List(ctx context.Context, filter query.PostFilter, params query.Params, viewer string) (query.Page[objects.Post], error) {
	ctx, span := telemetry.StartSpan(ctx, "PostService.List")
	defer span.End()

	return s.page(ctx, span, filter.Predicate(), params, viewer)
}

// page reads one page of posts for the predicate and projects it for the viewer
func (s *PostService) page(ctx context.Context, span trace.Span, pred query.Predicate, params query.Params, viewer string) (query.Page[objects.Post], error) {
	params = params.Normalize()
	offset := query.Offset(params.Page, params.Limit)

	rows, total, err := query.Fetch(ctx,
		func(ctx context.Context) ([]models.Post, error) {
			return s.posts.List(ctx, pred, offset, params.Limit)
		},
		func(ctx context.Context) (int64, error) {
			return s.posts.Count(ctx, pred)
		},
	)
	if err != nil {
		span.RecordError(err)
		return query.Page[objects.Post]{}, err
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	liked, err := s.likes.LikedBy(ctx, db.LikePost, viewer, ids)
	if err != nil {
		return query.Page[objects.Post]{}, err
	}

	span.SetAttributes(
		attribute.Int64("posts.total", total),
		attribute.Int("posts.page", params.Page),
	)
	return query.NewPage(objects.NewPosts(rows, liked), total, params.Page, params.Limit), nil
}

// Get returns a single post
func (s *PostService) Get(ctx context.Context, id, viewer string) (objects.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostService.Get")
	defer span.End()

	row, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return objects.Post{}, fmt.Errorf("failed to load post: %w", err)
	}
	if row == nil {
		return objects.Post{}, notFound("Post", id)
	}

	liked, err := s.likes.LikedBy(ctx, db.LikePost, viewer, []string{id})
	if err != nil {
		return objects.Post{}, err
	}
	return objects.NewPost(row, liked[id]), nil
}

// Update changes the set fields of a post owned by the actor
func (s *PostService) Update(ctx context.Context, id, actor string, in UpdatePostInput) (objects.Post, error) {
	upperPtr(in.Status)
	upperPtr(in.PreferredContact)
	if err := validateStruct(in); err != nil {
		return objects.Post{}, err
	}

	if _, err := s.owned(ctx, id, actor, "You can only update your own posts"); err != nil {
		return objects.Post{}, err
	}

	changes := make(map[string]interface{})
	setString(changes, "title", in.Title)
	setString(changes, "description", in.Description)
	setString(changes, "status", in.Status)
	setString(changes, "address", in.Address)
	setString(changes, "city", in.City)
	setString(changes, "state", in.State)
	setString(changes, "country", in.Country)
	setString(changes, "contact_phone", in.ContactPhone)
	setString(changes, "contact_email", in.ContactEmail)
	setString(changes, "preferred_contact", in.PreferredContact)
	if in.Reward != nil {
		changes["reward"] = *in.Reward
	}
	if in.Latitude != nil {
		changes["latitude"] = *in.Latitude
	}
	if in.Longitude != nil {
		changes["longitude"] = *in.Longitude
	}
	if in.Tags != nil {
		changes["tags"] = pq.StringArray(query.ParseTags(*in.Tags...))
	}

	category := ""
	if in.Category != nil {
		category = strings.TrimSpace(*in.Category)
	}

	if err := s.posts.Update(ctx, id, changes, category); err != nil {
		return objects.Post{}, err
	}
	s.logger.Info("Post updated", zap.String("post_id", id), zap.Int("fields", len(changes)))

	return s.Get(ctx, id, actor)
}

// Delete removes a post owned by the actor
func (s *PostService) Delete(ctx context.Context, id, actor string) (Message, error) {
	post, err := s.owned(ctx, id, actor, "You can only delete your own posts")
	if err != nil {
		return Message{}, err
	}

	if err := s.posts.Delete(ctx, post); err != nil {
		return Message{}, err
	}
	s.logger.Info("Post deleted", zap.String("post_id", id))
	return Message{Message: "Post deleted successfully"}, nil
}

// Like records the actor's like. Liking twice is refused.
func (s *PostService) Like(ctx context.Context, id, actor string) (Message, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return Message{}, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return Message{}, notFound("Post", id)
	}

	if err := addLike(ctx, s.likes, db.LikePost, actor, id, "You have already liked this post"); err != nil {
		return Message{}, err
	}
	return Message{Message: "Post liked successfully"}, nil
}

// Unlike removes the actor's like
func (s *PostService) Unlike(ctx context.Context, id, actor string) (Message, error) {
	if err := removeLike(ctx, s.likes, db.LikePost, actor, id); err != nil {
		return Message{}, err
	}
	return Message{Message: "Post unliked successfully"}, nil
}

func (s *PostService) owned(ctx context.Context, id, actor, reason string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return nil, notFound("Post", id)
	}
	if post.AuthorID != actor {
		return nil, forbidden(reason)
	}
	return post, nil
}

// addLike guards against duplicates up front and again at the unique index,
// which catches a concurrent like that slipped past the check.
func addLike(ctx context.Context, likes LikeStore, target db.LikeTarget, actor, id, reason string) error {
	exists, err := likes.Exists(ctx, target, actor, id)
	if err != nil {
		return err
	}
	if exists {
		return forbidden(reason)
	}

	if err := likes.Create(ctx, target, actor, id); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return forbidden(reason)
		}
		return err
	}
	return nil
}

func removeLike(ctx context.Context, likes LikeStore, target db.LikeTarget, actor, id string) error {
	removed, err := likes.Delete(ctx, target, actor, id)
	if err != nil {
		return err
	}
	if !removed {
		return notFound("Like", id)
	}
	return nil
}

func imageFilename(url string) string {
	name := path.Base(url)
	if name == "." || name == "/" || name == "" {
		return "image.jpg"
	}
	return name
}

func upperPtr(s *string) {
	if s != nil {
		*s = strings.ToUpper(strings.TrimSpace(*s))
	}
}

func setString(changes map[string]interface{}, column string, value *string) {
	if value != nil {
		changes[column] = *value
	}
}

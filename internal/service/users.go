package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lostfound/backend/internal/api/objects"
	"github.com/lostfound/backend/internal/models"
	"github.com/lostfound/backend/internal/query"
	"github.com/lostfound/backend/pkg/logging"
	"github.com/lostfound/backend/pkg/telemetry"
)

// reputation weights
const (
	returnWeight  = 10
	commentWeight = 2
)

// UpdateProfileInput changes the profile fields that are set
type UpdateProfileInput struct {
	FirstName          *string `json:"firstName" validate:"omitempty,max=50"`
	LastName           *string `json:"lastName" validate:"omitempty,max=50"`
	Bio                *string `json:"bio" validate:"omitempty,max=500"`
	Phone              *string `json:"phone" validate:"omitempty,max=32"`
	City               *string `json:"city" validate:"omitempty,max=100"`
	State              *string `json:"state" validate:"omitempty,max=100"`
	Country            *string `json:"country" validate:"omitempty,max=100"`
	EmailNotifications *bool   `json:"emailNotifications"`
	PushNotifications  *bool   `json:"pushNotifications"`
	PublicProfile      *bool   `json:"publicProfile"`
	ShowContactInfo    *bool   `json:"showContactInfo"`
}

// UserStats summarizes a user's activity from live counts
type UserStats struct {
	TotalPosts        int64 `json:"totalPosts"`
	ActivePosts       int64 `json:"activePosts"`
	ResolvedPosts     int64 `json:"resolvedPosts"`
	TotalComments     int64 `json:"totalComments"`
	SuccessfulReturns int64 `json:"successfulReturns"`
	Reputation        int64 `json:"reputation"`
}

// UserService implements the profile operations
type UserService struct {
	users    UserStore
	comments CommentStore
	posts    *PostService
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(stores Stores, posts *PostService) *UserService {
	return &UserService{
		users:    stores.Users,
		comments: stores.Comments,
		posts:    posts,
		logger:   logging.WithComponent("users"),
	}
}

// GetByID returns a user's profile
func (s *UserService) GetByID(ctx context.Context, id string) (objects.UserProfile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return objects.UserProfile{}, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return objects.UserProfile{}, notFound("User", id)
	}
	return s.profile(ctx, user)
}

// GetByUsername returns a user's profile
func (s *UserService) GetByUsername(ctx context.Context, username string) (objects.UserProfile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return objects.UserProfile{}, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return objects.UserProfile{}, notFound("User", username)
	}
	return s.profile(ctx, user)
}

// UpdateProfile changes the user's own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (objects.UserProfile, error) {
	if err := validateStruct(in); err != nil {
		return objects.UserProfile{}, err
	}

	changes := make(map[string]interface{})
	setString(changes, "first_name", in.FirstName)
	setString(changes, "last_name", in.LastName)
	setString(changes, "bio", in.Bio)
	setString(changes, "phone", in.Phone)
	setString(changes, "city", in.City)
	setString(changes, "state", in.State)
	setString(changes, "country", in.Country)
	setBool(changes, "email_notifications", in.EmailNotifications)
	setBool(changes, "push_notifications", in.PushNotifications)
	setBool(changes, "public_profile", in.PublicProfile)
	setBool(changes, "show_contact_info", in.ShowContactInfo)

	found, err := s.users.Update(ctx, userID, changes)
	if err != nil {
		return objects.UserProfile{}, err
	}
	if !found {
		return objects.UserProfile{}, notFound("User", userID)
	}
	s.logger.Info("Profile updated", zap.String("user_id", userID), zap.Int("fields", len(changes)))

	return s.GetByID(ctx, userID)
}

// Posts returns one page of a user's posts, newest first
func (s *UserService) Posts(ctx context.Context, userID string, params query.Params, viewer string) (query.Page[objects.Post], error) {
	ctx, span := telemetry.StartSpan(ctx, "UserService.Posts")
	defer span.End()

	return s.posts.page(ctx, span, query.AuthorPredicate(userID, ""), params, viewer)
}

// Stats aggregates a user's posts and comments
func (s *UserService) Stats(ctx context.Context, userID string) (UserStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "UserService.Stats")
	defer span.End()

	var total, returned, closed, comments int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(countInto(gctx, &total, func(ctx context.Context) (int64, error) {
		return s.posts.posts.Count(ctx, query.AuthorPredicate(userID, ""))
	}))
	g.Go(countInto(gctx, &returned, func(ctx context.Context) (int64, error) {
		return s.posts.posts.Count(ctx, query.AuthorPredicate(userID, models.StatusReturned))
	}))
	g.Go(countInto(gctx, &closed, func(ctx context.Context) (int64, error) {
		return s.posts.posts.Count(ctx, query.AuthorPredicate(userID, models.StatusClosed))
	}))
	g.Go(countInto(gctx, &comments, func(ctx context.Context) (int64, error) {
		return s.comments.CountByAuthor(ctx, userID)
	}))
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return UserStats{}, err
	}

	return UserStats{
		TotalPosts:        total,
		ActivePosts:       total - returned - closed,
		ResolvedPosts:     returned,
		TotalComments:     comments,
		SuccessfulReturns: returned,
		Reputation:        returned*returnWeight + comments*commentWeight,
	}, nil
}

func (s *UserService) profile(ctx context.Context, user *models.User) (objects.UserProfile, error) {
	var counts objects.ProfileCounts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(countInto(gctx, &counts.Posts, func(ctx context.Context) (int64, error) {
		return s.posts.posts.Count(ctx, query.AuthorPredicate(user.ID, ""))
	}))
	g.Go(countInto(gctx, &counts.Comments, func(ctx context.Context) (int64, error) {
		return s.comments.CountByAuthor(ctx, user.ID)
	}))
	if err := g.Wait(); err != nil {
		return objects.UserProfile{}, err
	}
	return objects.NewUserProfile(user, counts), nil
}

// countInto adapts a count read to an errgroup task storing into dst
func countInto(ctx context.Context, dst *int64, count func(ctx context.Context) (int64, error)) func() error {
	return func() error {
		n, err := count(ctx)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func setBool(changes map[string]interface{}, column string, value *bool) {
	if value != nil {
		changes[column] = *value
	}
}

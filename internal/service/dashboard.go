package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/lostfound/backend/internal/api/objects"
	"github.com/lostfound/backend/internal/models"
	"github.com/lostfound/backend/internal/query"
	"github.com/lostfound/backend/pkg/telemetry"
)

// DashboardStats are the signed-in user's own totals
type DashboardStats struct {
	TotalPosts    int64 `json:"totalPosts"`
	LostPosts     int64 `json:"lostPosts"`
	FoundPosts    int64 `json:"foundPosts"`
	ReturnedPosts int64 `json:"returnedPosts"`
	TotalComments int64 `json:"totalComments"`
	TotalLikes    int64 `json:"totalLikes"`
}

// DashboardService serves the signed-in user's overview
type DashboardService struct {
	posts    *PostService
	comments CommentStore
	likes    LikeStore
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(stores Stores, posts *PostService) *DashboardService {
	return &DashboardService{
		posts:    posts,
		comments: stores.Comments,
		likes:    stores.Likes,
	}
}

// Stats issues the six counts concurrently
func (s *DashboardService) Stats(ctx context.Context, userID string) (DashboardStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "DashboardService.Stats")
	defer span.End()

	postCount := func(status string) func(ctx context.Context) (int64, error) {
		return func(ctx context.Context) (int64, error) {
			return s.posts.posts.Count(ctx, query.AuthorPredicate(userID, status))
		}
	}

	var stats DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(countInto(gctx, &stats.TotalPosts, postCount("")))
	g.Go(countInto(gctx, &stats.LostPosts, postCount(models.StatusLost)))
	g.Go(countInto(gctx, &stats.FoundPosts, postCount(models.StatusFound)))
	g.Go(countInto(gctx, &stats.ReturnedPosts, postCount(models.StatusReturned)))
	g.Go(countInto(gctx, &stats.TotalComments, func(ctx context.Context) (int64, error) {
		return s.comments.CountByAuthor(ctx, userID)
	}))
	g.Go(countInto(gctx, &stats.TotalLikes, func(ctx context.Context) (int64, error) {
		return s.likes.CountByUser(ctx, userID)
	}))
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return DashboardStats{}, err
	}
	return stats, nil
}

// MyPosts returns one page of the user's posts, optionally narrowed to a status
func (s *DashboardService) MyPosts(ctx context.Context, userID, status string, params query.Params) (query.Page[objects.Post], error) {
	ctx, span := telemetry.StartSpan(ctx, "DashboardService.MyPosts")
	defer span.End()

	return s.posts.page(ctx, span, query.AuthorPredicate(userID, status), params, userID)
}

package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lostfound/backend/internal/api/objects"
	"github.com/lostfound/backend/internal/db"
	"github.com/lostfound/backend/internal/models"
	"github.com/lostfound/backend/internal/query"
	"github.com/lostfound/backend/pkg/logging"
	"github.com/lostfound/backend/pkg/telemetry"
)

// CreateCommentInput is a new comment, optionally replying to ParentID
type CreateCommentInput struct {
	Content  string  `json:"content" validate:"required,min=1,max=500"`
	ParentID *string `json:"parentId"`
}

// UpdateCommentInput replaces a comment's content
type UpdateCommentInput struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// CommentService implements the comment operations
type CommentService struct {
	comments CommentStore
	posts    PostStore
	likes    LikeStore
	logger   *zap.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(stores Stores) *CommentService {
	return &CommentService{
		comments: stores.Comments,
		posts:    stores.Posts,
		likes:    stores.Likes,
		logger:   logging.WithComponent("comments"),
	}
}

// Create adds a comment to a post. A parent must exist on the same post.
func (s *CommentService) Create(ctx context.Context, postID, actor string, in CreateCommentInput) (objects.Comment, error) {
	if err := validateStruct(in); err != nil {
		return objects.Comment{}, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return objects.Comment{}, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return objects.Comment{}, notFound("Post", postID)
	}

	if in.ParentID != nil && *in.ParentID != "" {
		parent, err := s.comments.GetByID(ctx, *in.ParentID)
		if err != nil {
			return objects.Comment{}, fmt.Errorf("failed to load parent comment: %w", err)
		}
		if parent == nil || parent.PostID != postID {
			return objects.Comment{}, notFound("Parent comment", *in.ParentID)
		}
	} else {
		in.ParentID = nil
	}

	comment := &models.Comment{
		Content:  in.Content,
		PostID:   postID,
		AuthorID: actor,
		ParentID: in.ParentID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return objects.Comment{}, err
	}
	s.logger.Info("Comment created",
		zap.String("comment_id", comment.ID),
		zap.String("post_id", postID),
		zap.Bool("reply", comment.ParentID != nil),
	)

	return s.Get(ctx, comment.ID, actor)
}

// ListByPost returns one page of a post's top-level comments, newest first,
// each carrying its replies.
func (s *CommentService) ListByPost(ctx context.Context, postID string, params query.Params, viewer string) (query.Page[objects.Comment], error) {
	ctx, span := telemetry.StartSpan(ctx, "CommentService.ListByPost")
	defer span.End()

	params = params.Normalize()
	offset := query.Offset(params.Page, params.Limit)

	roots, total, err := query.Fetch(ctx,
		func(ctx context.Context) ([]models.Comment, error) {
			return s.comments.ListTopLevel(ctx, postID, offset, params.Limit)
		},
		func(ctx context.Context) (int64, error) {
			return s.comments.CountTopLevel(ctx, postID)
		},
	)
	if err != nil {
		span.RecordError(err)
		return query.Page[objects.Comment]{}, err
	}

	rootIDs := make([]string, len(roots))
	for i, c := range roots {
		rootIDs[i] = c.ID
	}

	tree, err := s.tree(ctx, roots, viewer)
	if err != nil {
		span.RecordError(err)
		return query.Page[objects.Comment]{}, err
	}

	span.SetAttributes(attribute.Int64("comments.total", total))
	return query.NewPage(tree.Project(rootIDs), total, params.Page, params.Limit), nil
}

// Get returns a single comment with its replies
func (s *CommentService) Get(ctx context.Context, id, viewer string) (objects.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "CommentService.Get")
	defer span.End()

	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return objects.Comment{}, fmt.Errorf("failed to load comment: %w", err)
	}
	if comment == nil {
		return objects.Comment{}, notFound("Comment", id)
	}

	tree, err := s.tree(ctx, []models.Comment{*comment}, viewer)
	if err != nil {
		return objects.Comment{}, err
	}
	projected, _ := tree.ProjectOne(id)
	return projected, nil
}

// tree loads the direct replies of the given comments plus like totals and
// the viewer's likes for all of them, and indexes the result.
func (s *CommentService) tree(ctx context.Context, roots []models.Comment, viewer string) (*objects.CommentTree, error) {
	rootIDs := make([]string, len(roots))
	for i, c := range roots {
		rootIDs[i] = c.ID
	}

	replies, err := s.comments.Replies(ctx, rootIDs)
	if err != nil {
		return nil, err
	}

	all := make([]models.Comment, 0, len(roots)+len(replies))
	all = append(all, roots...)
	all = append(all, replies...)
	ids := make([]string, len(all))
	for i, c := range all {
		ids[i] = c.ID
	}

	var (
		counts map[string]int64
		liked  map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.likes.Counts(gctx, db.LikeComment, ids)
		return err
	})
	g.Go(func() error {
		var err error
		liked, err = s.likes.LikedBy(gctx, db.LikeComment, viewer, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return objects.NewCommentTree(all, counts, liked, viewer), nil
}

// Update replaces the content of a comment owned by the actor
func (s *CommentService) Update(ctx context.Context, id, actor string, in UpdateCommentInput) (objects.Comment, error) {
	if err := validateStruct(in); err != nil {
		return objects.Comment{}, err
	}

	if _, err := s.owned(ctx, id, actor, "You can only update your own comments"); err != nil {
		return objects.Comment{}, err
	}
	if err := s.comments.UpdateContent(ctx, id, in.Content); err != nil {
		return objects.Comment{}, err
	}

	return s.Get(ctx, id, actor)
}

// Delete removes a comment owned by the actor, replies included
func (s *CommentService) Delete(ctx context.Context, id, actor string) (Message, error) {
	comment, err := s.owned(ctx, id, actor, "You can only delete your own comments")
	if err != nil {
		return Message{}, err
	}

	if err := s.comments.Delete(ctx, comment); err != nil {
		return Message{}, err
	}
	s.logger.Info("Comment deleted", zap.String("comment_id", id))
	return Message{Message: "Comment deleted successfully"}, nil
}

// Like records the actor's like. Liking twice is refused.
func (s *CommentService) Like(ctx context.Context, id, actor string) (Message, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return Message{}, fmt.Errorf("failed to load comment: %w", err)
	}
	if comment == nil {
		return Message{}, notFound("Comment", id)
	}

	if err := addLike(ctx, s.likes, db.LikeComment, actor, id, "You have already liked this comment"); err != nil {
		return Message{}, err
	}
	return Message{Message: "Comment liked successfully"}, nil
}

// Unlike removes the actor's like
func (s *CommentService) Unlike(ctx context.Context, id, actor string) (Message, error) {
	if err := removeLike(ctx, s.likes, db.LikeComment, actor, id); err != nil {
		return Message{}, err
	}
	return Message{Message: "Comment unliked successfully"}, nil
}

func (s *CommentService) owned(ctx context.Context, id, actor, reason string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	if comment == nil {
		return nil, notFound("Comment", id)
	}
	if comment.AuthorID != actor {
		return nil, forbidden(reason)
	}
	return comment, nil
}

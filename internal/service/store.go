package service

import (
	"context"

	"github.com/lostfound/backend/internal/db"
	"github.com/lostfound/backend/internal/models"
	"github.com/lostfound/backend/internal/query"
)

// PostStore is the post persistence the services need
type PostStore interface {
	List(ctx context.Context, pred query.Predicate, offset, limit int) ([]models.Post, error)
	Count(ctx context.Context, pred query.Predicate) (int64, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, post *models.Post, categoryName string) error
	Update(ctx context.Context, id string, changes map[string]interface{}, categoryName string) error
	Delete(ctx context.Context, post *models.Post) error
}

// CommentStore is the comment persistence the services need
type CommentStore interface {
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID string, offset, limit int) ([]models.Comment, error)
	CountTopLevel(ctx context.Context, postID string) (int64, error)
	Replies(ctx context.Context, parentIDs []string) ([]models.Comment, error)
	CountByAuthor(ctx context.Context, userID string) (int64, error)
	Create(ctx context.Context, comment *models.Comment) error
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, comment *models.Comment) error
}

// LikeStore is the like persistence the services need
type LikeStore interface {
	Exists(ctx context.Context, target db.LikeTarget, userID, targetID string) (bool, error)
	Create(ctx context.Context, target db.LikeTarget, userID, targetID string) error
	Delete(ctx context.Context, target db.LikeTarget, userID, targetID string) (bool, error)
	LikedBy(ctx context.Context, target db.LikeTarget, userID string, targetIDs []string) (map[string]bool, error)
	Counts(ctx context.Context, target db.LikeTarget, targetIDs []string) (map[string]int64, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// UserStore is the user persistence the services need
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) (bool, error)
}

var (
	_ PostStore    = (*db.PostRepository)(nil)
	_ CommentStore = (*db.CommentRepository)(nil)
	_ LikeStore    = (*db.LikeRepository)(nil)
	_ UserStore    = (*db.UserRepository)(nil)
)

// Stores bundles the repositories behind the services
type Stores struct {
	Posts    PostStore
	Comments CommentStore
	Likes    LikeStore
	Users    UserStore
}

// NewStores wires the gorm repositories
func NewStores(database *db.DB) Stores {
	repo := db.NewRepository(database.DB)
	return Stores{
		Posts:    db.NewPostRepository(repo),
		Comments: db.NewCommentRepository(repo),
		Likes:    db.NewLikeRepository(repo),
		Users:    db.NewUserRepository(repo),
	}
}

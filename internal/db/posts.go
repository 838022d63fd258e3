package db

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/lostfound/backend/internal/models"
)

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// filtered is the base query predicates are written against: posts joined to categories
func (r *PostRepository) filtered(ctx context.Context, pred sq.Sqlizer) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Joins("JOIN categories ON categories.id = posts.category_id")
	return applyPredicate(tx, pred)
}

func withRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Author").
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("post_images.created_at ASC")
		})
}

// List returns one page of matching posts, newest first, with relations and aggregates loaded
func (r *PostRepository) List(ctx context.Context, pred sq.Sqlizer, offset, limit int) ([]models.Post, error) {
	tx, err := r.filtered(ctx, pred)
	if err != nil {
		return nil, err
	}

	var posts []models.Post
	if err := withRelations(tx.Select("posts.*")).
		Order("posts.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	if err := r.fillCounts(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Count counts posts matching the predicate
func (r *PostRepository) Count(ctx context.Context, pred sq.Sqlizer) (int64, error) {
	tx, err := r.filtered(ctx, pred)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return total, nil
}

// GetByID retrieves a post with its relations and aggregates
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := withRelations(r.db.WithContext(ctx)).Where("posts.id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	posts := []models.Post{post}
	if err := r.fillCounts(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// Create inserts the post and its images, upserting the named category and
// bumping the author's post counter in the same transaction.
func (r *PostRepository) Create(ctx context.Context, post *models.Post, categoryName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := upsertCategory(tx, categoryName)
		if err != nil {
			return err
		}
		post.CategoryID = category.ID

		if err := tx.Omit("Author", "Category").Create(post).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		return adjustCounter(tx, post.AuthorID, "posts_count", 1)
	})
}

// Update applies column changes to a post. A non-empty categoryName is
// upserted and linked. Moving a post into or out of RETURNED adjusts the
// author's successful return counter in the same transaction.
func (r *PostRepository) Update(ctx context.Context, id string, changes map[string]interface{}, categoryName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Post
		if err := tx.Select("id", "status", "author_id").Where("id = ?", id).Take(&current).Error; err != nil {
			return fmt.Errorf("failed to load post: %w", err)
		}

		if categoryName != "" {
			category, err := upsertCategory(tx, categoryName)
			if err != nil {
				return err
			}
			changes["category_id"] = category.ID
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}

		status, ok := changes["status"].(string)
		if !ok || status == current.Status {
			return nil
		}
		switch {
		case status == models.StatusReturned:
			return adjustCounter(tx, current.AuthorID, "successful_returns", 1)
		case current.Status == models.StatusReturned:
			return adjustCounter(tx, current.AuthorID, "successful_returns", -1)
		}
		return nil
	})
}

// Delete removes the post in one transaction, decrementing the author's post
// counter and the comment counters of everyone whose comments go with it.
func (r *PostRepository) Delete(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var authors []authorCount
		if err := tx.Model(&models.Comment{}).
			Select("author_id, COUNT(*) AS count").
			Where("post_id = ?", post.ID).
			Group("author_id").
			Scan(&authors).Error; err != nil {
			return fmt.Errorf("failed to count post comments: %w", err)
		}

		if err := tx.Where("id = ?", post.ID).Delete(&models.Post{}).Error; err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		for _, a := range authors {
			if err := adjustCounter(tx, a.AuthorID, "comments_count", -int(a.Count)); err != nil {
				return err
			}
		}
		return adjustCounter(tx, post.AuthorID, "posts_count", -1)
	})
}

type countRow struct {
	TargetID string
	Count    int64
}

type authorCount struct {
	AuthorID string
	Count    int64
}

// fillCounts loads comment and like totals for the posts with one grouped query each
func (r *PostRepository) fillCounts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	var comments []countRow
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id AS target_id, COUNT(*) AS count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&comments).Error; err != nil {
		return fmt.Errorf("failed to count comments: %w", err)
	}

	var likes []countRow
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Select("post_id AS target_id, COUNT(*) AS count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&likes).Error; err != nil {
		return fmt.Errorf("failed to count likes: %w", err)
	}

	commentMap := make(map[string]int64, len(comments))
	for _, c := range comments {
		commentMap[c.TargetID] = c.Count
	}
	likeMap := make(map[string]int64, len(likes))
	for _, l := range likes {
		likeMap[l.TargetID] = l.Count
	}

	for i := range posts {
		posts[i].CommentCount = commentMap[posts[i].ID]
		posts[i].LikeCount = likeMap[posts[i].ID]
	}
	return nil
}

func upsertCategory(tx *gorm.DB, name string) (*models.Category, error) {
	var category models.Category
	if err := tx.Where(models.Category{Name: name}).
		Attrs(models.Category{Description: name + " items"}).
		FirstOrCreate(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to upsert category %q: %w", name, err)
	}
	return &category, nil
}

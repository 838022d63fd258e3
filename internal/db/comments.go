package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lostfound/backend/internal/models"
)

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// GetByID retrieves a comment with its author
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// ListTopLevel returns one page of a post's top-level comments, newest first
func (r *CommentRepository) ListTopLevel(ctx context.Context, postID string, offset, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// CountTopLevel counts a post's top-level comments
func (r *CommentRepository) CountTopLevel(ctx context.Context, postID string) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return total, nil
}

// Replies returns every direct reply to the given comments, oldest first
func (r *CommentRepository) Replies(ctx context.Context, parentIDs []string) ([]models.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var replies []models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("parent_id IN ?", parentIDs).
		Order("created_at ASC").
		Find(&replies).Error; err != nil {
		return nil, fmt.Errorf("failed to load replies: %w", err)
	}
	return replies, nil
}

// CountByAuthor counts the comments a user has written
func (r *CommentRepository) CountByAuthor(ctx context.Context, userID string) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("author_id = ?", userID).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return total, nil
}

// Create inserts the comment and bumps the author's comment counter in one transaction
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Post", "Author", "Parent").Create(comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		return adjustCounter(tx, comment.AuthorID, "comments_count", 1)
	})
}

// UpdateContent replaces a comment's text
func (r *CommentRepository) UpdateContent(ctx context.Context, id, content string) error {
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"content": content}).Error; err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

// subtreeAuthors counts the comments in a thread rooted at id per author.
// UNION keeps the walk finite even if parent links ever form a loop.
const subtreeAuthors = `
WITH RECURSIVE thread AS (
	SELECT id, author_id FROM comments WHERE id = ?
	UNION
	SELECT c.id, c.author_id FROM comments c JOIN thread t ON c.parent_id = t.id
)
SELECT author_id, COUNT(*) AS count FROM thread GROUP BY author_id`

// Delete removes the comment and its replies, decrementing each author's
// comment counter in the same transaction.
func (r *CommentRepository) Delete(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var authors []authorCount
		if err := tx.Raw(subtreeAuthors, comment.ID).Scan(&authors).Error; err != nil {
			return fmt.Errorf("failed to count replies: %w", err)
		}

		if err := tx.Where("id = ?", comment.ID).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}
		for _, a := range authors {
			if err := adjustCounter(tx, a.AuthorID, "comments_count", -int(a.Count)); err != nil {
				return err
			}
		}
		return nil
	})
}

package db

import (
	"context"
	"fmt"

	"github.com/lostfound/backend/internal/models"
)

// LikeTarget names the column a like points at
type LikeTarget string

// Like targets
const (
	LikePost    LikeTarget = "post_id"
	LikeComment LikeTarget = "comment_id"
)

// LikeRepository provides like-related database operations
type LikeRepository struct {
	*Repository
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(repo *Repository) *LikeRepository {
	return &LikeRepository{Repository: repo}
}

// Exists reports whether the user already likes the target
func (r *LikeRepository) Exists(ctx context.Context, target LikeTarget, userID, targetID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Where(string(target)+" = ?", targetID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return count > 0, nil
}

// Create records a like. A concurrent duplicate surfaces as ErrDuplicate.
func (r *LikeRepository) Create(ctx context.Context, target LikeTarget, userID, targetID string) error {
	like := models.Like{UserID: userID}
	switch target {
	case LikePost:
		like.PostID = &targetID
	case LikeComment:
		like.CommentID = &targetID
	default:
		return fmt.Errorf("unknown like target %q", target)
	}

	if err := r.db.WithContext(ctx).Omit("User", "Post", "Comment").Create(&like).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create like: %w", err)
	}
	return nil
}

// Delete removes a like and reports whether one existed
func (r *LikeRepository) Delete(ctx context.Context, target LikeTarget, userID, targetID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(string(target)+" = ?", targetID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete like: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// LikedBy returns which of the targets the user has liked
func (r *LikeRepository) LikedBy(ctx context.Context, target LikeTarget, userID string, targetIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool)
	if userID == "" || len(targetIDs) == 0 {
		return liked, nil
	}

	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Where(string(target)+" IN ?", targetIDs).
		Pluck(string(target), &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load likes: %w", err)
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// Counts returns the like total per target
func (r *LikeRepository) Counts(ctx context.Context, target LikeTarget, targetIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64)
	if len(targetIDs) == 0 {
		return counts, nil
	}

	var rows []countRow
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Select(string(target)+" AS target_id, COUNT(*) AS count").
		Where(string(target)+" IN ?", targetIDs).
		Group(string(target)).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	for _, row := range rows {
		counts[row.TargetID] = row.Count
	}
	return counts, nil
}

// CountByUser counts the likes a user has given
func (r *LikeRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return total, nil
}

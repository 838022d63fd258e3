package db

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/lostfound/backend/internal/models"
)

// ErrDuplicate is returned when a write hits a unique constraint
var ErrDuplicate = errors.New("duplicate key")

const uniqueViolation = "23505"

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// applyPredicate renders a composed predicate into a gorm WHERE clause
func applyPredicate(tx *gorm.DB, pred sq.Sqlizer) (*gorm.DB, error) {
	if pred == nil {
		return tx, nil
	}
	sql, args, err := pred.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to render predicate: %w", err)
	}
	if sql == "" {
		return tx, nil
	}
	return tx.Where(sql, args...), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// adjustCounter moves one of the user's denormalized counters without letting it go negative
func adjustCounter(tx *gorm.DB, userID, column string, delta int) error {
	expr := gorm.Expr(fmt.Sprintf("GREATEST(%s + ?, 0)", column), delta)
	if err := tx.Model(&models.User{}).Where("id = ?", userID).UpdateColumn(column, expr).Error; err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}
	return nil
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update applies the given column changes and reports whether the user exists
func (r *UserRepository) Update(ctx context.Context, id string, changes map[string]interface{}) (bool, error) {
	if len(changes) == 0 {
		user, err := r.GetByID(ctx, id)
		return user != nil, err
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update user: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

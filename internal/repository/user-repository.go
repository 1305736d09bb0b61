package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SundayYogurt/channel_service/internal/domain"
	"gorm.io/gorm"
)

// UserRepository finders return (nil, nil) when no row matches.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	FindUserById(ctx context.Context, userID uint) (*domain.User, error)
	FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUserFields(ctx context.Context, userID uint, fields map[string]interface{}) error
	SetRefreshToken(ctx context.Context, userID uint, token *string) error
	RotateRefreshToken(ctx context.Context, userID uint, current, next string) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("nil user")
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (r *userRepository) FindUserById(ctx context.Context, userID uint) (*domain.User, error) {
	user := &domain.User{}
	return r.first(user, r.db.WithContext(ctx).Where("id = ?", userID))
}

func (r *userRepository) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	q := r.db.WithContext(ctx)
	switch {
	case username != "" && email != "":
		q = q.Where("username = ? OR email = ?", username, email)
	case username != "":
		q = q.Where("username = ?", username)
	case email != "":
		q = q.Where("email = ?", email)
	default:
		return nil, nil
	}
	return r.first(&domain.User{}, q)
}

func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(&domain.User{}, r.db.WithContext(ctx).Where("email = ?", email))
}

func (r *userRepository) UpdateUserFields(ctx context.Context, userID uint, fields map[string]interface{}) error {
	if userID == 0 || len(fields) == 0 {
		return errors.New("invalid update")
	}

	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update user: %w", res.Error)
	}
	return nil
}

// SetRefreshToken overwrites the stored token; nil clears it.
func (r *userRepository) SetRefreshToken(ctx context.Context, userID uint, token *string) error {
	var value interface{}
	if token != nil {
		value = *token
	}

	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Update("refresh_token", value)
	if res.Error != nil {
		return fmt.Errorf("set refresh token: %w", res.Error)
	}
	return nil
}

// RotateRefreshToken replaces current with next only if current is still the
// stored value. false means another rotation or a logout got there first.
func (r *userRepository) RotateRefreshToken(ctx context.Context, userID uint, current, next string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND refresh_token = ?", userID, current).
		Update("refresh_token", next)
	if res.Error != nil {
		return false, fmt.Errorf("rotate refresh token: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *userRepository) first(user *domain.User, q *gorm.DB) (*domain.User, error) {
	if err := q.First(user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

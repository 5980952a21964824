package auth

import (
	"context"
	"errors"
	"time"

	"aerolink/internal/users"

	"gorm.io/gorm"
)

type Repository interface {
	CreateUser(ctx context.Context, user *users.User, token *VerificationToken) error
	GetUserByUsername(ctx context.Context, username string) (*users.User, error)
	GetUserByID(ctx context.Context, id string) (*users.User, error)
	FindConflicts(ctx context.Context, email, username, phone string) ([]string, error)
	GetVerificationToken(ctx context.Context, token string) (*VerificationToken, error)
	MarkEmailVerified(ctx context.Context, token *VerificationToken, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

// CreateUser stores the user and, when given, its verification token atomically
func (r *repository) CreateUser(ctx context.Context, user *users.User, token *VerificationToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if token == nil {
			return nil
		}
		token.UserID = user.ID
		return tx.Create(token).Error
	})
}

func (r *repository) GetUserByUsername(ctx context.Context, username string) (*users.User, error) {
	var user users.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	var user users.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindConflicts names the unique fields already taken by another account
func (r *repository) FindConflicts(ctx context.Context, email, username, phone string) ([]string, error) {
	var matches []users.User
	err := r.db.WithContext(ctx).
		Select("email", "username", "phone").
		Where("email = ? OR username = ? OR phone = ?", email, username, phone).
		Find(&matches).Error
	if err != nil {
		return nil, err
	}

	var taken []string
	seen := map[string]bool{}
	mark := func(field string, hit bool) {
		if hit && !seen[field] {
			seen[field] = true
			taken = append(taken, field)
		}
	}
	for _, m := range matches {
		mark("email", m.Email == email)
		mark("username", m.Username == username)
		mark("phone", m.Phone == phone)
	}
	return taken, nil
}

func (r *repository) GetVerificationToken(ctx context.Context, token string) (*VerificationToken, error) {
	var vt VerificationToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&vt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidVerificationToken
		}
		return nil, err
	}
	return &vt, nil
}

// MarkEmailVerified consumes the token and stamps the user in one transaction.
// A token consumed concurrently yields ErrInvalidVerificationToken.
func (r *repository) MarkEmailVerified(ctx context.Context, token *VerificationToken, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&VerificationToken{}).
			Where("id = ? AND used_at IS NULL", token.ID).
			Update("used_at", at)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidVerificationToken
		}

		return tx.Model(&users.User{}).
			Where("id = ?", token.UserID).
			Update("email_verified_at", at).Error
	})
}

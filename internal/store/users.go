package store

import (
	"errors"
	"fmt"

	"github.com/herald-dev/herald/db"
	"github.com/herald-dev/herald/internal/auth"
	"github.com/herald-dev/herald/internal/models"
	"gorm.io/gorm"
)

// RegisterUser hashes the password and creates a non-admin user. Uniqueness
// is enforced by the index on email, which spans soft-deleted rows: a deleted
// user's email cannot be reused, and concurrent registrations of the same
// email both resolve against the same constraint.
func RegisterUser(email, username, password string) (*models.User, error) {
	passwordHash, err := auth.HashPassword(password)

	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// FindActiveByEmail returns the non-deleted user with the given email.
func FindActiveByEmail(email string) (*models.User, error) {
	var user models.User

	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

func GrantAdmin(id uint) (*models.User, error) {
	var user models.User

	if err := db.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if err := db.DB.Model(&user).Update("is_admin", true).Error; err != nil {
		return nil, fmt.Errorf("failed to grant admin: %w", err)
	}

	return &user, nil
}

// SoftDeleteUser marks the user deleted. The record stays in place so the
// email stays reserved and old tokens stop resolving.
func SoftDeleteUser(id uint) (*models.User, error) {
	var user models.User

	if err := db.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if err := db.DB.Delete(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	return &user, nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/repository"
)

// errInvalidCredentials is shared by every credential failure so callers cannot
// tell an unknown account from a wrong password or a disabled account.
const errInvalidCredentials = "User not found or password invalid"

type UserService struct {
	*Service[models.User]
}

func NewUserService(repo repository.Repository[models.User]) *UserService {
	return &UserService{Service: NewService(repo, prepareUser)}
}

// prepareUser swaps a plaintext password for its hash and defaults new
// accounts to active.
func prepareUser(_ context.Context, fields Fields, creating bool) error {
	if raw, ok := fields["password"]; ok {
		delete(fields, "password")
		if raw != nil {
			password, ok := raw.(string)
			if !ok {
				return apperr.Validation("Invalid input", map[string]string{"password": "must be a string"})
			}
			hash, err := auth.HashPassword(password)
			if errors.Is(err, auth.ErrPasswordTooLong) {
				return apperr.Validation("Validation failed", map[string]string{"password": "must be at most 72 bytes"})
			}
			if err != nil {
				return apperr.Internal("failed to hash password", err)
			}
			fields["hashed_password"] = hash
		}
	}
	if creating {
		if _, ok := fields["is_active"]; !ok {
			fields["is_active"] = true
		}
	}
	return nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.GetOneOrNone(ctx, repository.Equal{Column: "email", Value: email})
}

// Authenticate returns the active user whose password matches. Every failure
// is the same PermissionDenied error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.GetByEmail(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.HashedPassword == nil {
		auth.BurnCompare(password)
		return nil, apperr.PermissionDenied(errInvalidCredentials)
	}
	if !auth.VerifyPassword(*user.HashedPassword, password) || !user.IsActive {
		return nil, apperr.PermissionDenied(errInvalidCredentials)
	}
	return user, nil
}

// UpdatePassword verifies current against the stored hash and replaces it.
func (s *UserService) UpdatePassword(ctx context.Context, user *models.User, current, next string) (*models.User, error) {
	if user == nil || user.HashedPassword == nil || !user.IsActive {
		return nil, apperr.PermissionDenied(errInvalidCredentials)
	}
	if !auth.VerifyPassword(*user.HashedPassword, current) {
		return nil, apperr.PermissionDenied(errInvalidCredentials)
	}
	return s.Update(ctx, user.ID, Fields{"password": next})
}

// CreateUser creates an account, rejecting an email already in use.
func (s *UserService) CreateUser(ctx context.Context, fields Fields) (*models.User, error) {
	if email, ok := fields["email"].(string); ok {
		exists, err := s.Exists(ctx, repository.Equal{Column: "email", Value: email})
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.Conflict("A user with this email already exists", fmt.Errorf("email %q taken", email))
		}
	}
	return s.Create(ctx, fields)
}

// Promote grants superuser to the account with the given email.
func (s *UserService) Promote(ctx context.Context, email string) (*models.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound(fmt.Sprintf("No user with email %s", email))
	}
	if user.IsSuperuser {
		return user, nil
	}
	return s.Update(ctx, user.ID, Fields{"is_superuser": true})
}

func (s *UserService) ToDTO(u *models.User) dto.User {
	return dto.User{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		IsVerified:  u.IsVerified,
		VerifiedAt:  u.VerifiedAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (s *UserService) ToPage(items []*models.User, total int64, filters ...repository.Filter) dto.OffsetPagination[dto.User] {
	return ToPage(items, total, s.ToDTO, filters...)
}

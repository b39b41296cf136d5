package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"quizhub-backend/internal/models"
	"quizhub-backend/internal/repository"
)

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// UserService mirrors identities from the external provider into local users.
type UserService struct {
	users      userStore
	adminEmail string
}

func NewUserService(users userStore, adminEmail string) *UserService {
	return &UserService{users: users, adminEmail: strings.TrimSpace(adminEmail)}
}

// Sync creates or refreshes the local user for a verified identity. The
// boolean result reports whether the user was created. Role is decided once,
// at creation.
func (s *UserService) Sync(ctx context.Context, id *models.Identity, req models.SyncUserRequest) (*models.User, bool, error) {
	if id == nil || id.Subject == "" {
		return nil, false, &UnauthorizedError{Message: "Invalid token"}
	}
	email := strings.TrimSpace(id.Email)
	if email == "" {
		return nil, false, fieldError("email", "Token does not carry an email address")
	}

	displayName := firstNonEmpty(deref(req.DisplayName), id.Name, emailLocalPart(email))
	avatar := trimOptional(req.Avatar)
	if avatar == nil {
		avatar = trimOptional(&id.Picture)
	}

	user, err := s.users.GetByExternalID(ctx, id.Subject)
	switch {
	case err == nil:
		if err := s.checkEmailFree(ctx, email, user.ID); err != nil {
			return nil, false, err
		}
		user.Email = email
		user.DisplayName = displayName
		if avatar != nil {
			user.Avatar = avatar
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, false, mapUserWriteErr(err)
		}
		return user, false, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	if err := s.checkEmailFree(ctx, email, uuid.Nil); err != nil {
		return nil, false, err
	}

	role := models.RoleUser
	if s.adminEmail != "" && strings.EqualFold(email, s.adminEmail) {
		role = models.RoleAdmin
	}

	user = &models.User{
		ExternalID:  id.Subject,
		Email:       email,
		DisplayName: displayName,
		Role:        role,
		Avatar:      avatar,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, mapUserWriteErr(err)
	}
	return user, true, nil
}

// checkEmailFree rejects an email held by a user other than self, in any
// letter case.
func (s *UserService) checkEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	other, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("get user by email: %w", err)
	case other.ID != self:
		return &ConflictError{Message: "Email already in use"}
	}
	return nil
}

func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return user, nil
}

// UpdateProfile changes display name and avatar. Blank values are ignored.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}

	if name := trimOptional(req.DisplayName); name != nil {
		user.DisplayName = *name
	}
	if avatar := trimOptional(req.Avatar); avatar != nil {
		user.Avatar = avatar
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapUserWriteErr(err)
	}
	return user, nil
}

func mapUserWriteErr(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return &ConflictError{Message: "Email already in use"}
	}
	return notFound(err, "User not found")
}

func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

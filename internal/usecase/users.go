package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/ports"
)

// AvatarURL returns a generated initials avatar for name.
func AvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random"
}

// NewUserInput is an account created by an administrator.
type NewUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// UserService is the administrator's view of accounts.
type UserService struct {
	users  ports.UserRepository
	logger *slog.Logger
}

// NewUserService constructs the service.
func NewUserService(users ports.UserRepository, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{users: users, logger: logger}
}

// List returns all accounts, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create invites a user with an explicit role (user when empty).
func (s *UserService) Create(ctx context.Context, in NewUserInput) (domain.User, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	user, err := createAccount(ctx, s.users, in.Name, in.Email, in.Password, role)
	if err != nil {
		return domain.User{}, err
	}
	s.logger.Info("user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Update changes name, email or role.
func (s *UserService) Update(ctx context.Context, id int64, patch domain.UserPatch) (domain.User, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		patch.Name = nil
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if email == "" {
			patch.Email = nil
		} else {
			patch.Email = &email
		}
	}
	if patch.Role != nil && *patch.Role == "" {
		patch.Role = nil
	}
	if patch.Empty() {
		return domain.User{}, fmt.Errorf("%w: No fields to update", domain.ErrValidation)
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, *patch.Role)
	}

	user, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return domain.User{}, fmt.Errorf("update user %d: %w", id, err)
	}
	s.logger.Info("user updated", "user_id", id)
	return user, nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

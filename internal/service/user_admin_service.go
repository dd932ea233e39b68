package service

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/pkg/apperrors"
)

// UserAdminService covers the admin-facing account operations and the
// dashboard aggregates built on them.
type UserAdminService struct {
	users repository.UserRepository
	cfg   config.AuthConfig
}

// NewUserAdminService constructs the service.
func NewUserAdminService(users repository.UserRepository, cfg config.AuthConfig) *UserAdminService {
	return &UserAdminService{users: users, cfg: cfg}
}

// List returns accounts, newest first.
func (s *UserAdminService) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, int64, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return users, total, nil
}

// AdminUserInput describes an admin-side account create or update.
type AdminUserInput struct {
	Username    string
	Email       string
	DisplayName string
	Password    string
	Role        domain.Role
	Active      *bool
}

// Create adds an account with an explicit role.
func (s *UserAdminService) Create(ctx context.Context, input AdminUserInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	var details []string
	if input.Username == "" {
		details = append(details, "Username is required")
	}
	if input.Email == "" {
		details = append(details, "Email is required")
	}
	details = append(details, auth.ValidatePassword(input.Password)...)
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("user validation failed", details)
	}
	if !domain.ValidRole(input.Role) {
		return nil, apperrors.NewValidationError("invalid role", nil)
	}

	if existing, err := s.users.GetByUsername(ctx, input.Username); err != nil && !apperrors.IsNotFound(err) {
		return nil, apperrors.MapError(err)
	} else if existing != nil {
		return nil, apperrors.NewConflict("username already taken")
	}
	if existing, err := s.users.GetByEmail(ctx, input.Email); err != nil && !apperrors.IsNotFound(err) {
		return nil, apperrors.MapError(err)
	} else if existing != nil {
		return nil, apperrors.NewConflict("email already registered")
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = input.Username
	}
	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Update edits another account. Empty fields stay untouched.
func (s *UserAdminService) Update(ctx context.Context, id string, input AdminUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if username := strings.TrimSpace(input.Username); username != "" && !strings.EqualFold(username, user.Username) {
		if existing, err := s.users.GetByUsername(ctx, username); err != nil && !apperrors.IsNotFound(err) {
			return nil, apperrors.MapError(err)
		} else if existing != nil {
			return nil, apperrors.NewConflict("username already taken")
		}
		user.Username = username
	}
	if email := strings.TrimSpace(strings.ToLower(input.Email)); email != "" && !strings.EqualFold(email, user.Email) {
		if existing, err := s.users.GetByEmail(ctx, email); err != nil && !apperrors.IsNotFound(err) {
			return nil, apperrors.MapError(err)
		} else if existing != nil {
			return nil, apperrors.NewConflict("email already registered")
		}
		user.Email = email
	}
	if name := strings.TrimSpace(input.DisplayName); name != "" {
		user.DisplayName = name
	}
	if input.Role != "" {
		if !domain.ValidRole(input.Role) {
			return nil, apperrors.NewValidationError("invalid role", nil)
		}
		user.Role = input.Role
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	if input.Password != "" {
		if details := auth.ValidatePassword(input.Password); len(details) > 0 {
			return nil, apperrors.NewValidationError("password validation failed", details)
		}
		hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ChangeRole sets an account's role.
func (s *UserAdminService) ChangeRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("invalid role", nil)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Delete removes an account. Admins cannot delete themselves.
func (s *UserAdminService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if actor.ID == id {
		return apperrors.NewValidationError("cannot delete your own account", nil)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("user")
		}
		return apperrors.MapError(err)
	}
	return nil
}

// UserStats aggregates account totals for the admin dashboard.
type UserStats struct {
	Total    int64                 `json:"total"`
	Active   int64                 `json:"active"`
	Inactive int64                 `json:"inactive"`
	ByRole   map[domain.Role]int64 `json:"byRole"`
}

// Stats returns total/active/inactive counts plus a per-role breakdown.
func (s *UserAdminService) Stats(ctx context.Context) (*UserStats, error) {
	total, err := s.users.Count(ctx, repository.UserFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	active := true
	activeCount, err := s.users.Count(ctx, repository.UserFilter{Active: &active})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &UserStats{
		Total:    total,
		Active:   activeCount,
		Inactive: total - activeCount,
		ByRole:   byRole,
	}, nil
}

// RecentUsers returns the newest accounts for the admin dashboard.
func (s *UserAdminService) RecentUsers(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 5
	}
	users, err := s.users.List(ctx, repository.UserFilter{Limit: limit})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// RoleMembers groups accounts under a role with its static permission set.
type RoleMembers struct {
	Role        domain.Role   `json:"role"`
	Permissions []string      `json:"permissions"`
	Members     []domain.User `json:"members"`
	Count       int           `json:"count"`
}

// RoleStats lists every role with its members and permission names.
func (s *UserAdminService) RoleStats(ctx context.Context) ([]RoleMembers, error) {
	roles := []domain.Role{domain.RoleAdmin, domain.RoleITStaff, domain.RoleSupport, domain.RoleUser}
	result := make([]RoleMembers, 0, len(roles))
	for _, role := range roles {
		members, err := s.users.List(ctx, repository.UserFilter{Roles: []domain.Role{role}})
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		result = append(result, RoleMembers{
			Role:        role,
			Permissions: auth.RolePermissionNames(role),
			Members:     members,
			Count:       len(members),
		})
	}
	return result, nil
}

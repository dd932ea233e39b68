package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/mail"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/pkg/apperrors"
)

// AuthService handles registration, login and credential recovery.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	mailer mail.Mailer
	cfg    config.AuthConfig
	logger *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, mailer mail.Mailer, cfg config.AuthConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		mailer: mailer,
		cfg:    cfg,
		logger: logger,
	}
}

// RegisterInput describes the registration payload.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	Role        domain.Role
}

// LoginResult bundles the authenticated user with its session token.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates an account. The role defaults to user.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
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
		return nil, apperrors.NewValidationError("registration validation failed", details)
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
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
		Role:         role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login authenticates by username or email. Unknown accounts and wrong
// passwords produce the same response so the login form leaks nothing.
func (s *AuthService) Login(ctx context.Context, identifier, password string, rememberMe bool) (*LoginResult, error) {
	user, err := s.users.GetActiveByLogin(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role, s.cfg.SessionTTL(rememberMe))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.logger.Warn("last login update failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// ProfileUpdateInput describes a profile change. Nil fields stay untouched.
type ProfileUpdateInput struct {
	Username        *string
	Email           *string
	DisplayName     *string
	CurrentPassword *string
	NewPassword     *string
}

// UpdateProfile changes the actor's own account details. Username and email
// are checked for uniqueness per field; password changes require the
// current password and pass the composite policy.
func (s *AuthService) UpdateProfile(ctx context.Context, actor *domain.User, input ProfileUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, apperrors.NewValidationError("username cannot be empty", nil)
		}
		if !strings.EqualFold(username, user.Username) {
			if existing, err := s.users.GetByUsername(ctx, username); err != nil && !apperrors.IsNotFound(err) {
				return nil, apperrors.MapError(err)
			} else if existing != nil {
				return nil, apperrors.NewConflict("username already taken")
			}
		}
		user.Username = username
	}
	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if email == "" {
			return nil, apperrors.NewValidationError("email cannot be empty", nil)
		}
		if !strings.EqualFold(email, user.Email) {
			if existing, err := s.users.GetByEmail(ctx, email); err != nil && !apperrors.IsNotFound(err) {
				return nil, apperrors.MapError(err)
			} else if existing != nil {
				return nil, apperrors.NewConflict("email already registered")
			}
		}
		user.Email = email
	}
	if input.DisplayName != nil {
		if name := strings.TrimSpace(*input.DisplayName); name != "" {
			user.DisplayName = name
		}
	}
	if input.NewPassword != nil {
		if input.CurrentPassword == nil {
			return nil, apperrors.NewValidationError("current password is required", nil)
		}
		if err := auth.ComparePassword(user.PasswordHash, *input.CurrentPassword); err != nil {
			return nil, apperrors.NewUnauthorized("current password is incorrect")
		}
		if details := auth.ValidatePassword(*input.NewPassword); len(details) > 0 {
			return nil, apperrors.NewValidationError("password validation failed", details)
		}
		hash, err := auth.HashPassword(*input.NewPassword, s.cfg.BcryptCost)
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

// CheckUsername reports whether a username is free to register, with a
// human-readable reason.
func (s *AuthService) CheckUsername(ctx context.Context, username string) (bool, string, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return false, "Username must be at least 3 characters", nil
	}
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil && !apperrors.IsNotFound(err) {
		return false, "", apperrors.MapError(err)
	}
	if existing != nil {
		return false, "Username already taken", nil
	}
	return true, "Username available", nil
}

// ForgotPassword replaces the account's credential with a generated one and
// mails it. Mail transport failures surface as a generic internal error;
// the detail stays in the log.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("account")
		}
		return apperrors.MapError(err)
	}

	password, err := generatePassword()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}

	if err := s.mailer.SendNewPassword(user.Email, user.Username, password); err != nil {
		s.logger.Error("password reset mail failed",
			zap.String("user_id", user.ID), zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	return nil
}

// generatePassword builds a throwaway credential that satisfies the
// password policy: random hex uppercased plus a fixed policy-covering tail.
func generatePassword() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)) + "Aa1!", nil
}

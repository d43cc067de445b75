package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coursemarket/backend/internal/domain"
	"github.com/coursemarket/backend/internal/email"
	"github.com/coursemarket/backend/internal/identity"
	"github.com/coursemarket/backend/internal/repository"
	"github.com/coursemarket/backend/internal/token"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type AuthUsecase struct {
	users  repository.UserRepository
	codec  *token.Codec
	email  email.Sender
	logger *slog.Logger
}

func NewAuthUsecase(users repository.UserRepository, codec *token.Codec, emailSender email.Sender, logger *slog.Logger) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		codec:  codec,
		email:  emailSender,
		logger: logger.With("component", "auth_usecase"),
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
	Role      domain.Role
}

// Register creates an account and issues a token for it. The raw password is
// bcrypt-hashed before it reaches the store and is never logged. A requested
// admin role is honored only when actor is an authenticated admin; otherwise
// it is silently downgraded to user.
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput, actor *identity.Identity) (*domain.User, string, error) {
	role := domain.RoleUser
	if in.Role == domain.RoleAdmin && actor != nil && actor.IsAdmin() {
		role = domain.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, &domain.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, "", domain.ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	signed, err := u.codec.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	// Best effort: a failed welcome email must not fail the registration.
	subject := "Welcome to the course market"
	body := fmt.Sprintf(`<p>Hi %s, your account is ready. Happy learning!</p>`, user.FirstName)
	if err := u.email.Send(ctx, user.Email, subject, body); err != nil {
		u.logger.ErrorContext(ctx, "send welcome email", "error", err)
	}

	return user, signed, nil
}

// Login verifies credentials against the active account for email. The two
// failure paths stay distinguishable here; the HTTP layer presents them
// identically to avoid an account-enumeration oracle.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (*domain.User, string, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrUserNotFound
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		return nil, "", domain.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidPassword
	}

	signed, err := u.codec.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, signed, nil
}

func (u *AuthUsecase) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return u.users.FindByID(ctx, id)
}

// ListUsers returns users ordered by creation time, newest first. Admin only.
func (u *AuthUsecase) ListUsers(ctx context.Context, actor *identity.Identity, page, limit int) ([]*domain.User, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return u.users.List(ctx, limit, (page-1)*limit)
}

// UpdateUserRole changes a user's role. Admin only.
func (u *AuthUsecase) UpdateUserRole(ctx context.Context, actor *identity.Identity, userID string, role domain.Role) (*domain.User, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}
	return u.users.UpdateRole(ctx, userID, role)
}

// DeactivateUser soft-deactivates an account and reports whether a row was
// affected. Admin only. The self-deactivation guard lives in the handler.
func (u *AuthUsecase) DeactivateUser(ctx context.Context, actor *identity.Identity, userID string) (bool, error) {
	if actor == nil || !actor.IsAdmin() {
		return false, domain.ErrAccessDenied
	}
	return u.users.Deactivate(ctx, userID)
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/coursemarket/backend/internal/domain"
	"github.com/coursemarket/backend/internal/identity"
	"github.com/coursemarket/backend/internal/metrics"
	"github.com/coursemarket/backend/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, in usecase.RegisterInput, actor *identity.Identity) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context, actor *identity.Identity, page, limit int) ([]*domain.User, error)
	UpdateUserRole(ctx context.Context, actor *identity.Identity, userID string, role domain.Role) (*domain.User, error)
	DeactivateUser(ctx context.Context, actor *identity.Identity, userID string) (bool, error)
}

type AuthHandler struct {
	auth   authUsecaser
	logger *slog.Logger
}

func NewAuthHandler(auth authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	Email     string      `json:"email"     binding:"required,email"`
	Password  string      `json:"password"  binding:"required,min=6"`
	FirstName string      `json:"firstName" binding:"required"`
	LastName  string      `json:"lastName"  binding:"required"`
	Phone     *string     `json:"phone"`
	Role      domain.Role `json:"role"      binding:"omitempty,oneof=user admin"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, signed, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
	}, identity.FromContext(c.Request.Context()))
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			respondError(c, http.StatusConflict, errEmailTaken)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "register", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	metrics.RegistrationsTotal.Inc()
	respondOK(c, http.StatusCreated, "Registration successful", gin.H{
		"user":  toUserResponse(user),
		"token": signed,
	})
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
// Both failure reasons (unknown email, wrong password) get the same response
// so the endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, signed, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidPassword) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			respondError(c, http.StatusUnauthorized, errInvalidCredentials)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	respondOK(c, http.StatusOK, "Login successful", gin.H{
		"user":  toUserResponse(user),
		"token": signed,
	})
}

// GET /api/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	id := identity.FromContext(c.Request.Context())

	user, err := h.auth.GetUserByID(c.Request.Context(), id.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, errUserNotFound)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "profile", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	respondOK(c, http.StatusOK, "Profile", gin.H{"user": toUserResponse(user)})
}

// GET /api/auth/users?page=&limit=
func (h *AuthHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, err := h.auth.ListUsers(c.Request.Context(), identity.FromContext(c.Request.Context()), page, limit)
	if err != nil {
		if errors.Is(err, domain.ErrAccessDenied) {
			respondError(c, http.StatusForbidden, errAccessDenied)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "list users", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	respondOK(c, http.StatusOK, "Users", gin.H{"users": out, "page": page})
}

type updateRoleRequest struct {
	Role domain.Role `json:"role" binding:"required,oneof=user admin"`
}

// PUT /api/auth/users/:id/role
func (h *AuthHandler) UpdateRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	userID := c.Param("id")
	user, err := h.auth.UpdateUserRole(c.Request.Context(), identity.FromContext(c.Request.Context()), userID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccessDenied):
			respondError(c, http.StatusForbidden, errAccessDenied)
		case errors.Is(err, domain.ErrUserNotFound):
			respondError(c, http.StatusNotFound, errUserNotFound)
		default:
			h.logger.ErrorContext(c.Request.Context(), "update role", "user_id", userID, "error", err)
			respondError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	respondOK(c, http.StatusOK, "Role updated", gin.H{"user": toUserResponse(user)})
}

// DELETE /api/auth/users/:id
func (h *AuthHandler) Deactivate(c *gin.Context) {
	userID := c.Param("id")
	actor := identity.FromContext(c.Request.Context())

	// The service has no self-check; the guard lives here.
	if actor != nil && actor.ID == userID {
		respondError(c, http.StatusBadRequest, errSelfDeactivation)
		return
	}

	ok, err := h.auth.DeactivateUser(c.Request.Context(), actor, userID)
	if err != nil {
		if errors.Is(err, domain.ErrAccessDenied) {
			respondError(c, http.StatusForbidden, errAccessDenied)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "deactivate user", "user_id", userID, "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}
	if !ok {
		respondError(c, http.StatusNotFound, errUserNotFound)
		return
	}

	respondOK(c, http.StatusOK, "User deactivated", gin.H{"deactivated": true})
}

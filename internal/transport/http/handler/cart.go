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
	"github.com/gin-gonic/gin"
)

type cartUsecaser interface {
	AddToCart(ctx context.Context, userID string, courseID int64) (*domain.CartItem, error)
	RemoveFromCart(ctx context.Context, userID string, courseID int64) (bool, error)
	ListItems(ctx context.Context, userID string, bought bool) ([]*domain.CartItem, error)
	CheckoutCart(ctx context.Context, userID string) (bool, error)
	AbandonCart(ctx context.Context, userID string) (bool, error)
	Count(ctx context.Context, userID string) (int, error)
}

type CartHandler struct {
	cart   cartUsecaser
	logger *slog.Logger
}

func NewCartHandler(cart cartUsecaser, logger *slog.Logger) *CartHandler {
	return &CartHandler{cart: cart, logger: logger.With("component", "cart_handler")}
}

// GET /api/cart?bought=bool
func (h *CartHandler) List(c *gin.Context) {
	bought, _ := strconv.ParseBool(c.DefaultQuery("bought", "false"))
	userID := identity.FromContext(c.Request.Context()).ID

	items, err := h.cart.ListItems(c.Request.Context(), userID, bought)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list cart", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	respondOK(c, http.StatusOK, "Cart items", gin.H{
		"items": toCartItemResponses(items),
		"count": len(items),
	})
}

// GET /api/cart/count
func (h *CartHandler) Count(c *gin.Context) {
	userID := identity.FromContext(c.Request.Context()).ID

	count, err := h.cart.Count(c.Request.Context(), userID)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "count cart", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	respondOK(c, http.StatusOK, "Cart count", gin.H{"count": count})
}

type addToCartRequest struct {
	CourseID int64 `json:"courseId" binding:"required,gt=0"`
}

// POST /api/cart
func (h *CartHandler) Add(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	userID := identity.FromContext(c.Request.Context()).ID
	item, err := h.cart.AddToCart(c.Request.Context(), userID, req.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyInCart):
			respondError(c, http.StatusConflict, errAlreadyInCart)
		case errors.Is(err, domain.ErrAlreadyPurchased):
			respondError(c, http.StatusConflict, errAlreadyPurchased)
		default:
			h.logger.ErrorContext(c.Request.Context(), "add to cart", "course_id", req.CourseID, "error", err)
			respondError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	metrics.CartOperationsTotal.WithLabelValues("add").Inc()
	respondOK(c, http.StatusCreated, "Added to cart", gin.H{"item": toCartItemResponse(item)})
}

// DELETE /api/cart/items/:courseId
func (h *CartHandler) Remove(c *gin.Context) {
	courseID, err := strconv.ParseInt(c.Param("courseId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "courseId must be an integer")
		return
	}

	userID := identity.FromContext(c.Request.Context()).ID
	removed, err := h.cart.RemoveFromCart(c.Request.Context(), userID, courseID)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "remove from cart", "course_id", courseID, "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}
	if !removed {
		// Either never in the cart or already bought; bought rows are
		// immutable through this path.
		respondError(c, http.StatusNotFound, errCartItemNotFound)
		return
	}

	metrics.CartOperationsTotal.WithLabelValues("remove").Inc()
	respondOK(c, http.StatusOK, "Removed from cart", gin.H{"removed": true})
}

// DELETE /api/cart/clear?bought=bool
// bought=true commits the cart (checkout), bought=false abandons it. Two
// different lifecycle events behind one historical route.
func (h *CartHandler) Clear(c *gin.Context) {
	bought, _ := strconv.ParseBool(c.DefaultQuery("bought", "false"))
	userID := identity.FromContext(c.Request.Context()).ID

	var (
		affected bool
		err      error
		op       string
		message  string
	)
	if bought {
		affected, err = h.cart.CheckoutCart(c.Request.Context(), userID)
		op, message = "checkout", "Cart checked out"
	} else {
		affected, err = h.cart.AbandonCart(c.Request.Context(), userID)
		op, message = "abandon", "Cart cleared"
	}
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "clear cart", "op", op, "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	metrics.CartOperationsTotal.WithLabelValues(op).Inc()
	respondOK(c, http.StatusOK, message, gin.H{"affected": affected})
}

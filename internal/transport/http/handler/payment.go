package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coursemarket/backend/internal/metrics"
	"github.com/coursemarket/backend/internal/payment"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	gateway payment.Gateway
	logger  *slog.Logger
}

func NewPaymentHandler(gateway payment.Gateway, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{gateway: gateway, logger: logger.With("component", "payment_handler")}
}

type createIntentRequest struct {
	Amount   int64  `json:"amount"   binding:"required,gt=0"`
	Currency string `json:"currency" binding:"required,len=3"`
}

// POST /api/payment
func (h *PaymentHandler) Create(c *gin.Context) {
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	intent, err := h.gateway.CreateIntent(c.Request.Context(), req.Amount, strings.ToLower(req.Currency))
	if err != nil {
		metrics.PaymentIntentsTotal.WithLabelValues("failure").Inc()
		h.logger.ErrorContext(c.Request.Context(), "create payment intent", "error", err)
		respondError(c, http.StatusBadGateway, errPaymentUpstream)
		return
	}

	metrics.PaymentIntentsTotal.WithLabelValues("success").Inc()
	respondOK(c, http.StatusCreated, "Payment intent created", gin.H{"intent": intent})
}

// GET /api/payment/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	intent, err := h.gateway.GetIntent(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, payment.ErrIntentNotFound) {
			respondError(c, http.StatusNotFound, errPaymentNotFound)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "get payment intent", "error", err)
		respondError(c, http.StatusBadGateway, errPaymentUpstream)
		return
	}

	respondOK(c, http.StatusOK, "Payment intent", gin.H{"intent": intent})
}

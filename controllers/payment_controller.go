package controllers

import (
	"io"
	"net/http"

	"qr-restaurant-backend/middleware"
	"qr-restaurant-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentController struct {
	paymentService *services.PaymentService
	logger         *zap.Logger
}

func NewPaymentController(paymentService *services.PaymentService, logger *zap.Logger) *PaymentController {
	return &PaymentController{paymentService: paymentService, logger: logger}
}

func (pc *PaymentController) CreateIntent(c *gin.Context) {
	var req services.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Order ID is required"})
		return
	}

	identity := middleware.GetIdentity(c)

	response, serviceErr := pc.paymentService.CreateIntent(c.Request.Context(), identity, &req)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Payment intent created",
		"data":    response,
	})
}

// Webhook receives provider callbacks. The raw body is read before any
// JSON binding; signature verification needs the exact bytes the provider
// signed.
func (pc *PaymentController) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		pc.logger.Warn("Failed to read webhook body", zap.Error(err))
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Failed to read request body"})
		return
	}

	serviceErr := pc.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

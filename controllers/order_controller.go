package controllers

import (
	"net/http"

	"qr-restaurant-backend/middleware"
	"qr-restaurant-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderController struct {
	orderService *services.OrderService
	logger       *zap.Logger
}

func NewOrderController(orderService *services.OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{orderService: orderService, logger: logger}
}

// CreateOrder accepts guest and authenticated orders alike; the identity,
// when present, stamps the order's customer.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	identity := middleware.GetIdentity(c)

	response, serviceErr := oc.orderService.CreateOrder(c.Request.Context(), identity, &req)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order placed successfully",
		"data":    response,
	})
}

func (oc *OrderController) ListOrders(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	orders, serviceErr := oc.orderService.ListOrders(
		c.Request.Context(),
		identity,
		c.Query("tableId"),
		c.Query("status"),
	)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	identity := middleware.GetIdentity(c)

	order, serviceErr := oc.orderService.GetOrder(c.Request.Context(), identity, orderID)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

func (oc *OrderController) UpdateStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Status is required"})
		return
	}

	order, serviceErr := oc.orderService.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated",
		"data":    gin.H{"id": order.ID, "status": order.Status},
	})
}

func (oc *OrderController) UpdatePaymentStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Payment status is required"})
		return
	}

	order, serviceErr := oc.orderService.UpdatePaymentStatus(c.Request.Context(), orderID, req.Status)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment status updated",
		"data":    gin.H{"id": order.ID, "payment": order.Payment},
	})
}

func (oc *OrderController) CancelOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	identity := middleware.GetIdentity(c)

	order, serviceErr := oc.orderService.CancelOrder(c.Request.Context(), identity, orderID)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order canceled",
		"data":    order,
	})
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid ID format"})
		return uuid.Nil, false
	}
	return id, true
}

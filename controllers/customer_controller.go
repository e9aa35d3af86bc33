package controllers

import (
	"net/http"

	"qr-restaurant-backend/middleware"
	"qr-restaurant-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CustomerController struct {
	customerService *services.CustomerService
	logger          *zap.Logger
}

func NewCustomerController(customerService *services.CustomerService, logger *zap.Logger) *CustomerController {
	return &CustomerController{customerService: customerService, logger: logger}
}

// CreateSession is public: the guest has only just scanned the code and
// holds no credentials yet.
func (cc *CustomerController) CreateSession(c *gin.Context) {
	var req services.CustomerSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	response, serviceErr := cc.customerService.CreateSession(c.Request.Context(), c.Param("qrSlug"), &req)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Customer session created successfully",
		"data":    response,
	})
}

func (cc *CustomerController) GetProfile(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		respondError(c, &services.ServiceError{StatusCode: http.StatusUnauthorized, Message: "No token provided"})
		return
	}

	profile, serviceErr := cc.customerService.GetProfile(c.Request.Context(), customerID)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    profile,
	})
}

func (cc *CustomerController) UpdateProfile(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		respondError(c, &services.ServiceError{StatusCode: http.StatusUnauthorized, Message: "No token provided"})
		return
	}

	var req services.CustomerSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	profile, serviceErr := cc.customerService.UpdateProfile(c.Request.Context(), customerID, &req)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"data":    profile,
	})
}

func (cc *CustomerController) Logout(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		respondError(c, &services.ServiceError{StatusCode: http.StatusUnauthorized, Message: "No token provided"})
		return
	}

	if serviceErr := cc.customerService.EndSession(c.Request.Context(), customerID); serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Session ended successfully",
	})
}

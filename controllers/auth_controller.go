package controllers

import (
	"net/http"

	"qr-restaurant-backend/middleware"
	"qr-restaurant-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	authService *services.AuthService
	logger      *zap.Logger
}

func NewAuthController(authService *services.AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{authService: authService, logger: logger}
}

func (ac *AuthController) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	response, serviceErr := ac.authService.Register(c.Request.Context(), &req)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"data":    response,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Email and password are required"})
		return
	}

	response, serviceErr := ac.authService.Login(c.Request.Context(), &req)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Signed in successfully",
		"data":    response,
	})
}

func (ac *AuthController) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Refresh token is required"})
		return
	}

	response, serviceErr := ac.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Tokens refreshed",
		"data":    response,
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	user, serviceErr := ac.authService.Me(c.Request.Context(), identity)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

package controllers

import (
	"net/http"
	"strconv"

	"qr-restaurant-backend/middleware"
	"qr-restaurant-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserController struct {
	userService *services.UserService
	logger      *zap.Logger
}

func NewUserController(userService *services.UserService, logger *zap.Logger) *UserController {
	return &UserController{userService: userService, logger: logger}
}

func (uc *UserController) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	response, serviceErr := uc.userService.ListUsers(
		c.Request.Context(),
		c.Query("role"),
		c.Query("search"),
		page,
		limit,
	)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Users retrieved successfully",
		"data":    response,
	})
}

func (uc *UserController) SearchUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	response, serviceErr := uc.userService.SearchUsers(
		c.Request.Context(),
		c.Query("q"),
		c.Query("role"),
		page,
		limit,
	)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User search completed successfully",
		"data":    response,
	})
}

func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, serviceErr := uc.userService.GetUser(c.Request.Context(), id)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	identity := middleware.GetIdentity(c)

	user, serviceErr := uc.userService.UpdateProfile(c.Request.Context(), identity, &req)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"data":    user,
	})
}

func (uc *UserController) UpdateRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Role is required"})
		return
	}

	identity := middleware.GetIdentity(c)

	user, serviceErr := uc.userService.UpdateRole(c.Request.Context(), identity, id, req.Role)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User role updated successfully",
		"data":    user,
	})
}

func (uc *UserController) DeactivateUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	identity := middleware.GetIdentity(c)

	if serviceErr := uc.userService.DeactivateUser(c.Request.Context(), identity, id); serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User account deactivated successfully",
	})
}

func (uc *UserController) Stats(c *gin.Context) {
	stats, serviceErr := uc.userService.Stats(c.Request.Context())
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User statistics retrieved successfully",
		"data":    stats,
	})
}

package controllers

import (
	"qr-restaurant-backend/services"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, serviceErr *services.ServiceError) {
	c.JSON(serviceErr.StatusCode, gin.H{
		"success": false,
		"message": serviceErr.Message,
	})
}

package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"qr-restaurant-backend/repository"
	"qr-restaurant-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MenuController struct {
	menuService *services.MenuService
	logger      *zap.Logger
}

func NewMenuController(menuService *services.MenuService, logger *zap.Logger) *MenuController {
	return &MenuController{menuService: menuService, logger: logger}
}

func (mc *MenuController) CreateCategory(c *gin.Context) {
	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	category, serviceErr := mc.menuService.CreateCategory(c.Request.Context(), &req)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Category created",
		"data":    category,
	})
}

func (mc *MenuController) ListCategories(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	categories, serviceErr := mc.menuService.ListCategories(c.Request.Context(), activeOnly)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    categories,
	})
}

func (mc *MenuController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	category, serviceErr := mc.menuService.UpdateCategory(c.Request.Context(), id, &req)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Category updated",
		"data":    category,
	})
}

func (mc *MenuController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if serviceErr := mc.menuService.DeleteCategory(c.Request.Context(), id); serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Category deleted",
	})
}

func (mc *MenuController) CreateItem(c *gin.Context) {
	var req services.MenuItemUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	item, serviceErr := mc.menuService.CreateItem(c.Request.Context(), &req)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Menu item created",
		"data":    item,
	})
}

// ListItems is the public menu endpoint guests hit after scanning a table
// QR code.
func (mc *MenuController) ListItems(c *gin.Context) {
	filter := repository.MenuItemFilter{
		Search: strings.TrimSpace(c.Query("search")),
	}

	if categoryStr := c.Query("categoryId"); categoryStr != "" {
		categoryID, err := uuid.Parse(categoryStr)
		if err != nil {
			respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid category ID format"})
			return
		}
		filter.CategoryID = &categoryID
	}

	if availStr := c.Query("available"); availStr != "" {
		available := availStr == "true"
		filter.Availability = &available
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	response, serviceErr := mc.menuService.ListItems(c.Request.Context(), filter, page, limit)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}

func (mc *MenuController) GetItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	item, serviceErr := mc.menuService.GetItem(c.Request.Context(), id)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    item,
	})
}

func (mc *MenuController) UpdateItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.MenuItemUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	item, serviceErr := mc.menuService.UpdateItem(c.Request.Context(), id, &req)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Menu item updated",
		"data":    item,
	})
}

func (mc *MenuController) SetItemAvailability(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Availability flag is required"})
		return
	}

	item, serviceErr := mc.menuService.SetItemAvailability(c.Request.Context(), id, *req.Available)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Menu item availability updated",
		"data":    item,
	})
}

func (mc *MenuController) DeleteItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if serviceErr := mc.menuService.DeleteItem(c.Request.Context(), id); serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Menu item deleted",
	})
}

func (mc *MenuController) PresignItemImageUpload(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Filename    string `json:"filename"`
		ContentType string `json:"contentType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Content type is required"})
		return
	}

	upload, serviceErr := mc.menuService.PresignItemImageUpload(c.Request.Context(), id, req.Filename, req.ContentType)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    upload,
	})
}

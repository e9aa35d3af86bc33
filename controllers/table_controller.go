package controllers

import (
	"net/http"

	"qr-restaurant-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TableController struct {
	tableService *services.TableService
	logger       *zap.Logger
}

func NewTableController(tableService *services.TableService, logger *zap.Logger) *TableController {
	return &TableController{tableService: tableService, logger: logger}
}

func (tc *TableController) CreateTable(c *gin.Context) {
	var req services.TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	table, serviceErr := tc.tableService.CreateTable(c.Request.Context(), &req)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Table created",
		"data":    table,
	})
}

func (tc *TableController) ListTables(c *gin.Context) {
	tables, serviceErr := tc.tableService.ListTables(c.Request.Context())
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tables,
	})
}

func (tc *TableController) GetTable(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	table, serviceErr := tc.tableService.GetTable(c.Request.Context(), id)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    table,
	})
}

// ResolveByQRSlug is the unauthenticated endpoint a guest's phone hits
// right after scanning the code on the table.
func (tc *TableController) ResolveByQRSlug(c *gin.Context) {
	response, serviceErr := tc.tableService.ResolveByQRSlug(
		c.Request.Context(),
		c.Param("qrSlug"),
		c.GetHeader("User-Agent"),
		c.ClientIP(),
	)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}

func (tc *TableController) UpdateTable(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	table, serviceErr := tc.tableService.UpdateTable(c.Request.Context(), id, &req)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Table updated",
		"data":    table,
	})
}

func (tc *TableController) SetOccupancy(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Occupied *bool `json:"occupied" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Occupied flag is required"})
		return
	}

	table, serviceErr := tc.tableService.SetOccupancy(c.Request.Context(), id, *req.Occupied)
	if serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Table occupancy updated",
		"data":    table,
	})
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if serviceErr := tc.tableService.DeleteTable(c.Request.Context(), id); serviceErr != nil {
		respondError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Table deleted",
	})
}

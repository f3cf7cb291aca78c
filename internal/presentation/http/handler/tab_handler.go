package handler

import (
	"math"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/josemcv/tabsync/internal/application/store"
	"github.com/josemcv/tabsync/internal/domain/enum"
	"github.com/josemcv/tabsync/internal/presentation/http/dto/request"
	"github.com/josemcv/tabsync/internal/presentation/http/dto/response"
)

// TabHandler handles tab-related HTTP requests
type TabHandler struct {
	tabs *store.TabStore
}

// NewTabHandler creates a new tab handler
func NewTabHandler(tabs *store.TabStore) *TabHandler {
	return &TabHandler{tabs: tabs}
}

// List handles listing the currently open tabs, newest first
func (h *TabHandler) List(c *gin.Context) {
	tabs := h.tabs.ListOpenTabs(c.Request.Context())
	response.OK(c, "Open tabs retrieved successfully", tabs)
}

// Create handles opening a new tab
func (h *TabHandler) Create(c *gin.Context) {
	var req request.CreateTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	id, err := h.tabs.CreateTab(c.Request.Context(), req.Number, req.CustomerName)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Tab created successfully", gin.H{"id": id})
}

// AddItem handles adding one unit of a product to a tab
func (h *TabHandler) AddItem(c *gin.Context) {
	tabID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		response.BadRequest(c, "Invalid product id")
		return
	}

	cents := int64(math.Round(req.UnitPrice * 100))
	tabs := h.tabs.AddItem(c.Request.Context(), tabID, productID, req.ProductName, cents)
	response.OK(c, "Item added", tabs)
}

// RemoveItem handles removing a product's whole line from a tab
func (h *TabHandler) RemoveItem(c *gin.Context) {
	tabID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "productId")
	if !ok {
		return
	}

	tabs := h.tabs.RemoveItem(c.Request.Context(), tabID, productID)
	response.OK(c, "Item removed", tabs)
}

// Close handles closing a tab
func (h *TabHandler) Close(c *gin.Context) {
	tabID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req request.CloseTabRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tabs := h.tabs.CloseTab(c.Request.Context(), tabID, enum.PaymentMethod(req.PaymentMethod))
	response.OK(c, "Tab closed", tabs)
}

// Delete handles hard-deleting a tab and its items
func (h *TabHandler) Delete(c *gin.Context) {
	tabID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	tabs := h.tabs.DeleteTab(c.Request.Context(), tabID)
	response.OK(c, "Tab deleted", tabs)
}

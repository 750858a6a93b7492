package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"netops-backend/internal/model"
	"netops-backend/internal/mw"
	"netops-backend/internal/store"
)

// inventoryStaff gates an inventory handler to staff roles. The
// inventory handlers predate the shared role middleware and answer
// with {"message": ...} payloads.
func inventoryStaff(c *gin.Context) bool {
	role := mw.Role(c)
	if role != mw.RoleAdmin && role != mw.RoleTechnician {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
		return false
	}
	return true
}

type createInventoryRequest struct {
	DeviceType   string `json:"deviceType" binding:"required,oneof=AP Backbone POP Station"`
	Brand        string `json:"brand" binding:"required"`
	Model        string `json:"model"`
	SerialNumber string `json:"serialNumber" binding:"required"`
	Category     string `json:"category" binding:"required,oneof=deployed 'in stock' spoiled"`
	Location     string `json:"location"`
	Notes        string `json:"notes"`
	DeviceID     string `json:"deviceId"`
}

type updateInventoryRequest struct {
	DeviceType   *string `json:"deviceType"`
	Brand        *string `json:"brand"`
	Model        *string `json:"model"`
	SerialNumber *string `json:"serialNumber"`
	Category     *string `json:"category"`
	Location     *string `json:"location"`
	Notes        *string `json:"notes"`
	DeviceID     *string `json:"deviceId"`
}

func validDeviceType(t string) bool {
	switch t {
	case model.DeviceTypeAP, model.DeviceTypeBackbone, model.DeviceTypePOP, model.DeviceTypeStation:
		return true
	}
	return false
}

func validCategory(cat string) bool {
	switch cat {
	case model.CategoryDeployed, model.CategoryInStock, model.CategorySpoiled:
		return true
	}
	return false
}

// CreateInventory handles POST /api/inventory.
func (h *Handler) CreateInventory(c *gin.Context) {
	if !inventoryStaff(c) {
		return
	}

	var req createInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	item := model.InventoryItem{
		DeviceType:   req.DeviceType,
		Brand:        strings.TrimSpace(req.Brand),
		Model:        req.Model,
		SerialNumber: strings.TrimSpace(req.SerialNumber),
		Category:     req.Category,
		Location:     req.Location,
		Notes:        req.Notes,
		DeviceID:     req.DeviceID,
	}
	if err := h.store.CreateItem(c.Request.Context(), &item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"inventory": item})
}

// GetInventory handles GET /api/inventory with optional deviceType,
// category, brand, page and limit query parameters.
func (h *Handler) GetInventory(c *gin.Context) {
	if !inventoryStaff(c) {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := store.ItemFilter{
		DeviceType: c.Query("deviceType"),
		Category:   c.Query("category"),
		Brand:      c.Query("brand"),
		Page:       page,
		Limit:      limit,
	}
	items, total, err := h.store.ListItems(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"inventory": items,
		"total":     total,
		"page":      filter.Page,
	})
}

// GetInventoryCounts handles GET /api/inventory/counts.
func (h *Handler) GetInventoryCounts(c *gin.Context) {
	if !inventoryStaff(c) {
		return
	}

	counts, err := h.store.CountByTypeAndCategory(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

// GetInventoryByID handles GET /api/inventory/:id.
func (h *Handler) GetInventoryByID(c *gin.Context) {
	if !inventoryStaff(c) {
		return
	}

	item, err := h.store.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Inventory item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": item})
}

// UpdateInventory handles PUT /api/inventory/:id. Identity fields are
// only replaced by a non-empty value; free-text fields may be cleared.
func (h *Handler) UpdateInventory(c *gin.Context) {
	if !inventoryStaff(c) {
		return
	}

	var req updateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	updates := map[string]any{}
	if req.DeviceType != nil && *req.DeviceType != "" {
		if !validDeviceType(*req.DeviceType) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid device type"})
			return
		}
		updates["device_type"] = *req.DeviceType
	}
	if req.Brand != nil && *req.Brand != "" {
		updates["brand"] = strings.TrimSpace(*req.Brand)
	}
	if req.SerialNumber != nil && *req.SerialNumber != "" {
		updates["serial_number"] = strings.TrimSpace(*req.SerialNumber)
	}
	if req.Category != nil && *req.Category != "" {
		if !validCategory(*req.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid category"})
			return
		}
		updates["category"] = *req.Category
	}
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.DeviceID != nil {
		updates["device_id"] = *req.DeviceID
	}

	item, err := h.store.UpdateItem(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Inventory item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": item})
}

// DeleteInventory handles DELETE /api/inventory/:id. Admin only.
func (h *Handler) DeleteInventory(c *gin.Context) {
	if !inventoryStaff(c) {
		return
	}
	if mw.Role(c) != mw.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only admin can delete inventory items"})
		return
	}

	if err := h.store.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Inventory item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inventory item deleted successfully"})
}

package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netops-backend/internal/model"
	"netops-backend/internal/mw"
	"netops-backend/internal/store"
)

func createTestItem(t *testing.T, s store.Store, deviceType, brand, serial, category string) *model.InventoryItem {
	t.Helper()
	item := &model.InventoryItem{
		DeviceType:   deviceType,
		Brand:        brand,
		SerialNumber: serial,
		Category:     category,
	}
	require.NoError(t, s.CreateItem(context.Background(), item))
	return item
}

func TestInventoryRoleGate(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/inventory", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/inventory", token(t, mw.RoleCustomer), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"Forbidden"}`, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/inventory", token(t, mw.RoleTechnician), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateInventoryValidation(t *testing.T) {
	router, s, _ := newTestRouter(t)
	tech := token(t, mw.RoleTechnician)

	// Category missing entirely.
	w := doJSON(t, router, http.MethodPost, "/api/inventory", tech, map[string]any{
		"deviceType":   "AP",
		"brand":        "Cambium",
		"serialNumber": "SN-1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Missing required fields"}`, w.Body.String())

	// Category outside the enum.
	w = doJSON(t, router, http.MethodPost, "/api/inventory", tech, map[string]any{
		"deviceType":   "AP",
		"brand":        "Cambium",
		"serialNumber": "SN-1",
		"category":     "lost",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing may have been persisted by the rejected requests.
	_, total, err := s.ListItems(context.Background(), store.ItemFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestInventoryCRUD(t *testing.T) {
	router, _, _ := newTestRouter(t)
	tech := token(t, mw.RoleTechnician)

	w := doJSON(t, router, http.MethodPost, "/api/inventory", tech, map[string]any{
		"deviceType":   "AP",
		"brand":        "Cambium",
		"model":        "ePMP 3000",
		"serialNumber": "SN-1",
		"category":     "in stock",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Inventory model.InventoryItem `json:"inventory"`
	}
	decode(t, w, &created)
	require.NotEmpty(t, created.Inventory.ID)

	w = doJSON(t, router, http.MethodGet, "/api/inventory/"+created.Inventory.ID, tech, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/inventory/"+created.Inventory.ID, tech, map[string]any{
		"category": "deployed",
		"location": "Hilltop mast",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		Inventory model.InventoryItem `json:"inventory"`
	}
	decode(t, w, &updated)
	assert.Equal(t, model.CategoryDeployed, updated.Inventory.Category)
	assert.Equal(t, "Hilltop mast", updated.Inventory.Location)

	w = doJSON(t, router, http.MethodGet, "/api/inventory/missing", tech, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Inventory item not found"}`, w.Body.String())
}

func TestInventoryListPagination(t *testing.T) {
	router, s, _ := newTestRouter(t)
	tech := token(t, mw.RoleTechnician)

	createTestItem(t, s, model.DeviceTypeAP, "Cambium", "SN-1", model.CategoryDeployed)
	createTestItem(t, s, model.DeviceTypeAP, "Cambium", "SN-2", model.CategoryInStock)
	createTestItem(t, s, model.DeviceTypePOP, "Mikrotik", "SN-3", model.CategoryDeployed)

	w := doJSON(t, router, http.MethodGet, "/api/inventory?page=2&limit=2", tech, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Inventory []model.InventoryItem `json:"inventory"`
		Total     int64                 `json:"total"`
		Page      int                   `json:"page"`
	}
	decode(t, w, &resp)
	assert.EqualValues(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Len(t, resp.Inventory, 1)

	w = doJSON(t, router, http.MethodGet, "/api/inventory?deviceType=POP", tech, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.EqualValues(t, 1, resp.Total)
}

func TestInventoryCounts(t *testing.T) {
	router, s, _ := newTestRouter(t)

	createTestItem(t, s, model.DeviceTypeAP, "Cambium", "SN-1", model.CategoryDeployed)
	createTestItem(t, s, model.DeviceTypeAP, "Cambium", "SN-2", model.CategoryDeployed)
	createTestItem(t, s, model.DeviceTypeAP, "Cambium", "SN-3", model.CategoryInStock)
	createTestItem(t, s, model.DeviceTypePOP, "Mikrotik", "SN-4", model.CategoryDeployed)

	w := doJSON(t, router, http.MethodGet, "/api/inventory/counts", token(t, mw.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Counts []store.DeviceTypeCount `json:"counts"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Counts, 2)

	totals := map[string]int64{}
	for _, c := range resp.Counts {
		totals[c.DeviceType] = c.Total
	}
	assert.EqualValues(t, 3, totals[model.DeviceTypeAP])
	assert.EqualValues(t, 1, totals[model.DeviceTypePOP])
}

func TestDeleteInventoryAdminOnly(t *testing.T) {
	router, s, _ := newTestRouter(t)
	item := createTestItem(t, s, model.DeviceTypeAP, "Cambium", "SN-1", model.CategoryInStock)

	w := doJSON(t, router, http.MethodDelete, "/api/inventory/"+item.ID, token(t, mw.RoleTechnician), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"Only admin can delete inventory items"}`, w.Body.String())

	// The record must survive the rejected delete.
	_, err := s.GetItem(context.Background(), item.ID)
	require.NoError(t, err)

	w = doJSON(t, router, http.MethodDelete, "/api/inventory/"+item.ID, token(t, mw.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Inventory item deleted successfully"}`, w.Body.String())

	_, err = s.GetItem(context.Background(), item.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

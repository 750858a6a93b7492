package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netops-backend/internal/model"
	"netops-backend/internal/mw"
	"netops-backend/internal/store"
)

func createTestPOP(t *testing.T, s store.Store, name string) *model.POP {
	t.Helper()
	pop := &model.POP{
		Name:     name,
		Brand:    "Mikrotik",
		Address:  "10.0.0.1",
		Status:   model.StatusActive,
		LastSeen: time.Now().UTC(),
	}
	require.NoError(t, s.CreatePOP(context.Background(), pop))
	return pop
}

func TestNetworkAuth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	// No token at all.
	w := doJSON(t, router, http.MethodGet, "/api/network/pops", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Authenticated but not staff.
	w = doJSON(t, router, http.MethodGet, "/api/network/pops", token(t, mw.RoleCSR), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Access denied"}`, w.Body.String())

	// Technicians have full network access.
	w = doJSON(t, router, http.MethodGet, "/api/network/pops", token(t, mw.RoleTechnician), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateAndListPOPs(t *testing.T) {
	router, _, _ := newTestRouter(t)
	admin := token(t, mw.RoleAdmin)

	w := doJSON(t, router, http.MethodPost, "/api/network/pops", admin, map[string]any{
		"name":       "Hilltop",
		"brand":      "Mikrotik",
		"address":    "10.0.0.1",
		"macAddress": "AA-BB-CC-DD-EE-FF",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Pop model.POP `json:"pop"`
	}
	decode(t, w, &created)
	assert.NotEmpty(t, created.Pop.ID)
	assert.Equal(t, model.StatusActive, created.Pop.Status)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", created.Pop.MACAddress)

	w = doJSON(t, router, http.MethodGet, "/api/network/pops", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	var listed struct {
		Pops []model.POP `json:"pops"`
	}
	decode(t, w, &listed)
	require.Len(t, listed.Pops, 1)
	assert.Equal(t, "Hilltop", listed.Pops[0].Name)
}

func TestCreatePOPValidation(t *testing.T) {
	router, _, _ := newTestRouter(t)
	admin := token(t, mw.RoleAdmin)

	// Missing required fields.
	w := doJSON(t, router, http.MethodPost, "/api/network/pops", admin, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unparseable address.
	w = doJSON(t, router, http.MethodPost, "/api/network/pops", admin, map[string]any{
		"name": "x", "brand": "y", "address": "not a host!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Bad MAC.
	w = doJSON(t, router, http.MethodPost, "/api/network/pops", admin, map[string]any{
		"name": "x", "brand": "y", "address": "10.0.0.1", "macAddress": "zz:zz",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAPUnknownParent(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/network/aps", token(t, mw.RoleAdmin), map[string]any{
		"name":    "Sector-A",
		"brand":   "Cambium",
		"address": "10.0.1.1",
		"pop":     "no-such-pop",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPLifecycle(t *testing.T) {
	router, s, _ := newTestRouter(t)
	admin := token(t, mw.RoleAdmin)
	pop := createTestPOP(t, s, "Hilltop")

	w := doJSON(t, router, http.MethodPost, "/api/network/aps", admin, map[string]any{
		"name":    "Sector-A",
		"brand":   "Cambium",
		"address": "10.0.1.1",
		"pop":     pop.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		AP model.AP `json:"ap"`
	}
	decode(t, w, &created)
	require.NotEmpty(t, created.AP.ID)
	assert.Equal(t, pop.ID, created.AP.PopID)

	w = doJSON(t, router, http.MethodPut, "/api/network/aps/"+created.AP.ID, admin, map[string]any{
		"name": "Sector-A2",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		AP model.AP `json:"ap"`
	}
	decode(t, w, &updated)
	assert.Equal(t, "Sector-A2", updated.AP.Name)
	assert.Equal(t, "Cambium", updated.AP.Brand)

	w = doJSON(t, router, http.MethodDelete, "/api/network/aps/"+created.AP.ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"AP deleted"}`, w.Body.String())

	w = doJSON(t, router, http.MethodDelete, "/api/network/aps/"+created.AP.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"AP not found"}`, w.Body.String())
}

func TestUpdatePOPNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/network/pops/missing", token(t, mw.RoleAdmin), map[string]any{
		"name": "renamed",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"POP not found"}`, w.Body.String())
}

func TestStationAddressOptional(t *testing.T) {
	router, s, _ := newTestRouter(t)
	admin := token(t, mw.RoleAdmin)
	pop := createTestPOP(t, s, "Hilltop")

	w := doJSON(t, router, http.MethodPost, "/api/network/aps", admin, map[string]any{
		"name": "Sector-A", "brand": "Cambium", "address": "10.0.1.1", "pop": pop.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var ap struct {
		AP model.AP `json:"ap"`
	}
	decode(t, w, &ap)

	w = doJSON(t, router, http.MethodPost, "/api/network/stations", admin, map[string]any{
		"name": "cust-1", "brand": "Ubiquiti", "ap": ap.AP.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var st struct {
		Station model.Station `json:"station"`
	}
	decode(t, w, &st)
	assert.Empty(t, st.Station.Address)

	// Clearing the address is allowed; it takes the station out of the
	// probe set.
	w = doJSON(t, router, http.MethodPut, "/api/network/stations/"+st.Station.ID, admin, map[string]any{
		"address": "",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBackboneCRUD(t *testing.T) {
	router, s, _ := newTestRouter(t)
	admin := token(t, mw.RoleAdmin)
	popA := createTestPOP(t, s, "Alpha")
	popB := createTestPOP(t, s, "Bravo")

	// Type outside the enum is rejected.
	w := doJSON(t, router, http.MethodPost, "/api/network/backbones", admin, map[string]any{
		"type": "carrier-pigeon",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/network/backbones", admin, map[string]any{
		"type": "fibre",
		"pops": []string{popA.ID, popB.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Backbone model.Backbone `json:"backbone"`
	}
	decode(t, w, &created)
	assert.Equal(t, model.StatusActive, created.Backbone.Status)
	assert.Len(t, created.Backbone.Pops, 2)

	w = doJSON(t, router, http.MethodPut, "/api/network/backbones/"+created.Backbone.ID, admin, map[string]any{
		"status": "down",
		"pops":   []string{popA.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		Backbone model.Backbone `json:"backbone"`
	}
	decode(t, w, &updated)
	assert.Equal(t, model.StatusDown, updated.Backbone.Status)
	assert.Len(t, updated.Backbone.Pops, 1)

	w = doJSON(t, router, http.MethodDelete, "/api/network/backbones/"+created.Backbone.ID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTriggerRefresh(t *testing.T) {
	router, _, refresher := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/network/refresh", token(t, mw.RoleTechnician), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, refresher.calls)
}

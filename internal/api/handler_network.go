package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"netops-backend/internal/model"
	"netops-backend/internal/netaddr"
	"netops-backend/internal/store"
)

// Listings reflect the last refresh pass; clients must re-fetch rather
// than serve a stale copy.
func noCache(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
}

// topologyError maps store errors for the network handlers, which use
// the {"error": ...} payload shape.
func topologyError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	case errors.Is(err, store.ErrBadReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// --- POPs ---

type createPOPRequest struct {
	Name       string `json:"name" binding:"required"`
	Brand      string `json:"brand" binding:"required"`
	Address    string `json:"address" binding:"required"`
	MACAddress string `json:"macAddress"`
	Details    string `json:"details"`
}

type updatePOPRequest struct {
	Name       *string `json:"name"`
	Brand      *string `json:"brand"`
	Address    *string `json:"address"`
	MACAddress *string `json:"macAddress"`
	Details    *string `json:"details"`
}

// GetPOPs handles GET /api/network/pops.
func (h *Handler) GetPOPs(c *gin.Context) {
	pops, err := h.store.ListPOPs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	noCache(c)
	c.JSON(http.StatusOK, gin.H{"pops": pops})
}

// CreatePOP handles POST /api/network/pops.
func (h *Handler) CreatePOP(c *gin.Context) {
	var req createPOPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	address, err := netaddr.ValidateHost(req.Address)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mac, err := netaddr.NormalizeMAC(req.MACAddress)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pop := model.POP{
		Name:       strings.TrimSpace(req.Name),
		Brand:      strings.TrimSpace(req.Brand),
		Address:    address,
		MACAddress: mac,
		Details:    req.Details,
		Status:     model.StatusActive,
		LastSeen:   time.Now().UTC(),
	}
	if err := h.store.CreatePOP(c.Request.Context(), &pop); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"pop": pop})
}

// UpdatePOP handles PUT /api/network/pops/:id.
func (h *Handler) UpdatePOP(c *gin.Context) {
	var req updatePOPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Brand != nil {
		updates["brand"] = strings.TrimSpace(*req.Brand)
	}
	if req.Address != nil {
		address, err := netaddr.ValidateHost(*req.Address)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updates["address"] = address
	}
	if req.MACAddress != nil {
		mac, err := netaddr.NormalizeMAC(*req.MACAddress)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updates["mac_address"] = mac
	}
	if req.Details != nil {
		updates["details"] = *req.Details
	}

	pop, err := h.store.UpdatePOP(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		topologyError(c, err, "POP not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"pop": pop})
}

// DeletePOP handles DELETE /api/network/pops/:id.
func (h *Handler) DeletePOP(c *gin.Context) {
	if err := h.store.DeletePOP(c.Request.Context(), c.Param("id")); err != nil {
		topologyError(c, err, "POP not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "POP deleted"})
}

// --- APs ---

type createAPRequest struct {
	Name       string `json:"name" binding:"required"`
	Brand      string `json:"brand" binding:"required"`
	Address    string `json:"address" binding:"required"`
	MACAddress string `json:"macAddress"`
	Details    string `json:"details"`
	PopID      string `json:"pop" binding:"required"`
}

type updateAPRequest struct {
	Name       *string `json:"name"`
	Brand      *string `json:"brand"`
	Address    *string `json:"address"`
	MACAddress *string `json:"macAddress"`
	Details    *string `json:"details"`
}

// GetAPs handles GET /api/network/aps.
func (h *Handler) GetAPs(c *gin.Context) {
	aps, err := h.store.ListAPs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	noCache(c)
	c.JSON(http.StatusOK, gin.H{"aps": aps})
}

// CreateAP handles POST /api/network/aps.
func (h *Handler) CreateAP(c *gin.Context) {
	var req createAPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	address, err := netaddr.ValidateHost(req.Address)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mac, err := netaddr.NormalizeMAC(req.MACAddress)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ap := model.AP{
		Name:       strings.TrimSpace(req.Name),
		Brand:      strings.TrimSpace(req.Brand),
		Address:    address,
		MACAddress: mac,
		Details:    req.Details,
		Status:     model.StatusActive,
		LastSeen:   time.Now().UTC(),
		PopID:      req.PopID,
	}
	if err := h.store.CreateAP(c.Request.Context(), &ap); err != nil {
		topologyError(c, err, "AP not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ap": ap})
}

// UpdateAP handles PUT /api/network/aps/:id.
func (h *Handler) UpdateAP(c *gin.Context) {
	var req updateAPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Brand != nil {
		updates["brand"] = strings.TrimSpace(*req.Brand)
	}
	if req.Address != nil {
		address, err := netaddr.ValidateHost(*req.Address)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updates["address"] = address
	}
	if req.MACAddress != nil {
		mac, err := netaddr.NormalizeMAC(*req.MACAddress)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updates["mac_address"] = mac
	}
	if req.Details != nil {
		updates["details"] = *req.Details
	}

	ap, err := h.store.UpdateAP(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		topologyError(c, err, "AP not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ap": ap})
}

// DeleteAP handles DELETE /api/network/aps/:id.
func (h *Handler) DeleteAP(c *gin.Context) {
	if err := h.store.DeleteAP(c.Request.Context(), c.Param("id")); err != nil {
		topologyError(c, err, "AP not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "AP deleted"})
}

// --- Stations ---

type createStationRequest struct {
	Name       string `json:"name" binding:"required"`
	Brand      string `json:"brand" binding:"required"`
	Address    string `json:"address"`
	MACAddress string `json:"macAddress"`
	Details    string `json:"details"`
	APID       string `json:"ap" binding:"required"`
}

type updateStationRequest struct {
	Name       *string `json:"name"`
	Brand      *string `json:"brand"`
	Address    *string `json:"address"`
	MACAddress *string `json:"macAddress"`
	Details    *string `json:"details"`
}

// GetStations handles GET /api/network/stations.
func (h *Handler) GetStations(c *gin.Context) {
	stations, err := h.store.ListStations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	noCache(c)
	c.JSON(http.StatusOK, gin.H{"stations": stations})
}

// CreateStation handles POST /api/network/stations. The address is
// optional; a station without one is never probed.
func (h *Handler) CreateStation(c *gin.Context) {
	var req createStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	address := strings.TrimSpace(req.Address)
	if address != "" {
		var err error
		address, err = netaddr.ValidateHost(address)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	mac, err := netaddr.NormalizeMAC(req.MACAddress)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st := model.Station{
		Name:       strings.TrimSpace(req.Name),
		Brand:      strings.TrimSpace(req.Brand),
		Address:    address,
		MACAddress: mac,
		Details:    req.Details,
		Status:     model.StatusActive,
		LastSeen:   time.Now().UTC(),
		APID:       req.APID,
	}
	if err := h.store.CreateStation(c.Request.Context(), &st); err != nil {
		topologyError(c, err, "Station not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"station": st})
}

// UpdateStation handles PUT /api/network/stations/:id. An explicit
// empty address clears it and takes the station out of the probe set.
func (h *Handler) UpdateStation(c *gin.Context) {
	var req updateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Brand != nil {
		updates["brand"] = strings.TrimSpace(*req.Brand)
	}
	if req.Address != nil {
		address := strings.TrimSpace(*req.Address)
		if address != "" {
			var err error
			address, err = netaddr.ValidateHost(address)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		updates["address"] = address
	}
	if req.MACAddress != nil {
		mac, err := netaddr.NormalizeMAC(*req.MACAddress)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updates["mac_address"] = mac
	}
	if req.Details != nil {
		updates["details"] = *req.Details
	}

	st, err := h.store.UpdateStation(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		topologyError(c, err, "Station not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"station": st})
}

// DeleteStation handles DELETE /api/network/stations/:id.
func (h *Handler) DeleteStation(c *gin.Context) {
	if err := h.store.DeleteStation(c.Request.Context(), c.Param("id")); err != nil {
		topologyError(c, err, "Station not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Station deleted"})
}

// --- Backbones ---

type createBackboneRequest struct {
	Type    string   `json:"type" binding:"required,oneof=wireless fibre"`
	Details string   `json:"details"`
	Status  string   `json:"status" binding:"omitempty,oneof=active down"`
	Pops    []string `json:"pops"`
}

type updateBackboneRequest struct {
	Type    *string  `json:"type"`
	Details *string  `json:"details"`
	Status  *string  `json:"status"`
	Pops    []string `json:"pops"`
}

// GetBackbones handles GET /api/network/backbones. Backbones are not
// probed; the listing reflects operator-set status.
func (h *Handler) GetBackbones(c *gin.Context) {
	backbones, err := h.store.ListBackbones(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	noCache(c)
	c.JSON(http.StatusOK, gin.H{"backbones": backbones})
}

// CreateBackbone handles POST /api/network/backbones.
func (h *Handler) CreateBackbone(c *gin.Context) {
	var req createBackboneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = model.StatusActive
	}

	bb := model.Backbone{
		Type:     req.Type,
		Details:  req.Details,
		Status:   status,
		LastSeen: time.Now().UTC(),
	}
	if err := h.store.CreateBackbone(c.Request.Context(), &bb, req.Pops); err != nil {
		topologyError(c, err, "Backbone not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"backbone": bb})
}

// UpdateBackbone handles PUT /api/network/backbones/:id. Supplying
// "pops" replaces the linked POP set; omitting it leaves the links
// untouched.
func (h *Handler) UpdateBackbone(c *gin.Context) {
	var req updateBackboneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{}
	if req.Type != nil {
		if *req.Type != model.LinkWireless && *req.Type != model.LinkFibre {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be wireless or fibre"})
			return
		}
		updates["type"] = *req.Type
	}
	if req.Status != nil {
		if *req.Status != model.StatusActive && *req.Status != model.StatusDown {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or down"})
			return
		}
		updates["status"] = *req.Status
		updates["last_seen"] = time.Now().UTC()
	}
	if req.Details != nil {
		updates["details"] = *req.Details
	}

	bb, err := h.store.UpdateBackbone(c.Request.Context(), c.Param("id"), updates, req.Pops)
	if err != nil {
		topologyError(c, err, "Backbone not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"backbone": bb})
}

// DeleteBackbone handles DELETE /api/network/backbones/:id.
func (h *Handler) DeleteBackbone(c *gin.Context) {
	if err := h.store.DeleteBackbone(c.Request.Context(), c.Param("id")); err != nil {
		topologyError(c, err, "Backbone not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Backbone deleted"})
}

// TriggerRefresh handles POST /api/network/refresh, running one
// synchronous refresh pass.
func (h *Handler) TriggerRefresh(c *gin.Context) {
	if h.refresher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "refresh service is not running"})
		return
	}
	h.refresher.RefreshOnce(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "refresh pass complete"})
}

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"machine-maintenance-backend/internal/model"
	"machine-maintenance-backend/internal/store"
)

type machineRequest struct {
	AssetTag string `json:"assetTag" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Sector   string `json:"sector"`
	Status   string `json:"status"`
}

// ListMachines handles GET /api/machines. The default listing powers the
// intake forms and excludes deactivated machines; admins may pass ?all=1 to
// see the whole registry. ?setor= filters by sector.
func (h *Handler) ListMachines(c *gin.Context) {
	filter := store.MachineFilter{
		ExcludeDeactivated: true,
		Sector:             c.Query("setor"),
	}
	if c.Query("all") == "1" {
		if id := h.identity(c); id != nil && id.Role.IsAdmin() {
			filter.ExcludeDeactivated = false
		}
	}

	machines, err := h.store.ListMachines(c.Request.Context(), filter)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve machines"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"machines": machines, "types": model.MachineTypes})
}

// CreateMachine handles POST /api/machines.
func (h *Handler) CreateMachine(c *gin.Context) {
	var req machineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assetTag and type are required"})
		return
	}

	machine, err := h.store.CreateMachine(c.Request.Context(), store.MachineInput{
		AssetTag: req.AssetTag,
		Type:     req.Type,
		Sector:   req.Sector,
		Status:   req.Status,
	})
	if err != nil {
		h.machineWriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, machine)
}

// UpdateMachine handles PUT /api/machines/:id as a full replace of the
// mutable fields.
func (h *Handler) UpdateMachine(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid machine id"})
		return
	}

	var req machineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assetTag and type are required"})
		return
	}

	machine, err := h.store.UpdateMachine(c.Request.Context(), id, store.MachineInput{
		AssetTag: req.AssetTag,
		Type:     req.Type,
		Sector:   req.Sector,
		Status:   req.Status,
	})
	if err != nil {
		h.machineWriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

func (h *Handler) machineWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrDuplicateAssetTag):
		c.JSON(http.StatusConflict, gin.H{"error": "asset tag already registered"})
	case errors.Is(err, store.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrMachineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "machine not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// GetSectors handles GET /api/sectors.
func (h *Handler) GetSectors(c *gin.Context) {
	sectors, err := h.store.DistinctSectors(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve sectors"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sectors": sectors})
}

// GetProblems handles GET /api/problems; the intake forms offer this
// catalog.
func (h *Handler) GetProblems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"problems": model.Problems})
}

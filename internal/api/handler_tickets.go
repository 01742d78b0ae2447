package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"machine-maintenance-backend/internal/store"
)

type createTicketRequest struct {
	MachineID  int64  `json:"machine_id"`
	Problem    string `json:"problema"`
	Notes      string `json:"observacoes"`
	ReportedBy string `json:"aberto_por"`
}

// CreateTicket handles POST /api/tickets, the console intake path. The
// reporter comes from the session when present. A missing machine id or
// problem is a soft no-op answered with 204; no ticket is created.
func (h *Handler) CreateTicket(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusNoContent)
		return
	}

	var username string
	if id := h.identity(c); id != nil {
		username = id.Username
	}

	ticket, err := h.gateway.ConsoleOpen(c.Request.Context(), username, req.MachineID, req.Problem, req.Notes, req.ReportedBy)
	if err != nil {
		if errors.Is(err, store.ErrMachineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "machine not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ticket == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// ticketFilterFromQuery reads the shared year/month/sector filter
// parameters used by the ticket list, the stats query and the exports.
func ticketFilterFromQuery(c *gin.Context) store.TicketFilter {
	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))
	return store.TicketFilter{
		Year:   year,
		Month:  month,
		Sector: c.Query("setor"),
	}
}

// ListTickets handles GET /api/tickets, newest first.
func (h *Handler) ListTickets(c *gin.Context) {
	tickets, err := h.store.ListTickets(c.Request.Context(), ticketFilterFromQuery(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve tickets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateTicketStatus handles POST /api/tickets/:id/status. An unrecognized
// status value leaves the ticket unchanged and still answers 200 with the
// current ticket.
func (h *Handler) UpdateTicketStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	ticket, err := h.store.SetTicketStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// GetStats handles GET /api/stats for the dashboard.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context(), ticketFilterFromQuery(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

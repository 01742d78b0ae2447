package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"machine-maintenance-backend/internal/export"
)

// ExportMachinesCSV handles GET /export/machines.csv.
func (h *Handler) ExportMachinesCSV(c *gin.Context) {
	rows, err := h.store.MachineExportRows(c.Request.Context(), c.Query("setor"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename=machines.csv`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := export.WriteMachinesCSV(c.Writer, rows); err != nil {
		_ = c.Error(err)
	}
}

// ExportTicketsCSV handles GET /export/tickets.csv with the same filter
// semantics as the stats query.
func (h *Handler) ExportTicketsCSV(c *gin.Context) {
	rows, err := h.store.TicketExportRows(c.Request.Context(), ticketFilterFromQuery(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename=manutencoes.csv`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := export.WriteTicketsCSV(c.Writer, rows); err != nil {
		_ = c.Error(err)
	}
}

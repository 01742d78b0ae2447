package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"machine-maintenance-backend/internal/importer"
)

// ResetMachines handles POST /admin/reset-machines: a destructive roster
// reload. All tickets and machines are wiped, then the uploaded CSV is
// inserted de-duplicated on asset tag. The roster may arrive as a multipart
// file named "roster" or as the raw request body.
func (h *Handler) ResetMachines(c *gin.Context) {
	var reader io.Reader = c.Request.Body
	if file, err := c.FormFile("roster"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer f.Close()
		reader = f
	}

	rows, err := importer.ParseRoster(reader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inserted, err := h.store.ResetAndImportMachines(c.Request.Context(), rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inserted": inserted})
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"machine-maintenance-backend/internal/intake"
	"machine-maintenance-backend/internal/model"
	"machine-maintenance-backend/internal/qr"
	"machine-maintenance-backend/internal/store"
)

// GetQRForm handles GET /qr/:assetTag, the unauthenticated technician form
// reached by scanning a machine's code. Unknown asset tags are a hard 404.
// A pending flash warning (set by a failed POST) is returned once and
// cleared.
func (h *Handler) GetQRForm(c *gin.Context) {
	machine, err := h.store.GetMachineByAssetTag(c.Request.Context(), c.Param("assetTag"))
	if err != nil {
		if errors.Is(err, store.ErrMachineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "machine not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"machine": machine, "problems": model.Problems}
	if warning, err := c.Cookie(flashCookie); err == nil && warning != "" {
		c.SetCookie(flashCookie, "", -1, "/qr", "", false, true)
		resp["warning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}

// PostQRForm handles POST /qr/:assetTag. The PIN must match on every
// attempt; a mismatch or a missing problem creates no ticket and redirects
// back to the form with a single-read warning.
func (h *Handler) PostQRForm(c *gin.Context) {
	assetTag := c.Param("assetTag")
	ticket, err := h.gateway.QROpen(
		c.Request.Context(),
		assetTag,
		c.PostForm("pin"),
		c.PostForm("tecnico"),
		c.PostForm("problema"),
		c.PostForm("observacoes"),
	)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrMachineNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "machine not found"})
		case errors.Is(err, intake.ErrInvalidPIN):
			h.flashAndRedirect(c, assetTag, "PIN incorreto.")
		case errors.Is(err, intake.ErrMissingProblem):
			h.flashAndRedirect(c, assetTag, "Selecione o problema.")
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *Handler) flashAndRedirect(c *gin.Context, assetTag, warning string) {
	c.SetCookie(flashCookie, warning, 300, "/qr", "", false, true)
	c.Redirect(http.StatusSeeOther, "/qr/"+assetTag)
}

type qrCodeItem struct {
	AssetTag string `json:"assetTag"`
	Type     string `json:"type"`
	Sector   string `json:"sector"`
	URL      string `json:"url"`
	QR       string `json:"qr"`
}

// GetQRCodes handles GET /api/qrcodes: one scannable data URI per machine,
// for printing the codes that go on the machines.
func (h *Handler) GetQRCodes(c *gin.Context) {
	machines, err := h.store.ListMachines(c.Request.Context(), store.MachineFilter{})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve machines"})
		return
	}

	base := h.cfg.QR.BaseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}

	items := make([]qrCodeItem, 0, len(machines))
	for _, m := range machines {
		formURL := qr.FormURL(base, m.AssetTag)
		dataURI, err := qr.DataURI(formURL)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		items = append(items, qrCodeItem{
			AssetTag: m.AssetTag,
			Type:     m.Type,
			Sector:   m.Sector,
			URL:      formURL,
			QR:       dataURI,
		})
	}
	c.JSON(http.StatusOK, gin.H{"base": base, "items": items})
}

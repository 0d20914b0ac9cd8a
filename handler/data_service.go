package handler

import (
	"encoding/json"
	"net/http"

	"adboard/model/model"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const platformKey = "platform"

// CreatePlatformDocumentsHandler is the upsert target the external
// platform fetchers post raw performance rows into. Re-posting a
// (campaign, date) row replaces its metric columns.
func (h *Handlers) CreatePlatformDocumentsHandler(c *gin.Context) {
	platform := c.Params.ByName(platformKey)

	rows := make([]model.FactRowInput, 0)
	decoder := json.NewDecoder(c.Request.Body)
	if err := decoder.Decode(&rows); err != nil {
		log.WithError(err).Error("Failed to decode json request on create platform documents handler.")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request json."})
		return
	}
	if len(rows) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Empty documents payload."})
		return
	}

	written, err := h.store.UpsertFacts(platform, rows)
	if err != nil {
		log.WithError(err).WithField("platform", platform).Error("Failed to upsert platform documents.")
		abortWithError(c, err)
		return
	}

	h.invalidateMetricsCache()
	c.JSON(http.StatusCreated, gin.H{"rows_written": written})
}

// GetCanonicalCampaignsHandler lists the stable internal identities.
func (h *Handlers) GetCanonicalCampaignsHandler(c *gin.Context) {
	campaigns, err := h.store.GetCanonicalCampaigns(c.Query("source_system"))
	if err != nil {
		log.WithError(err).Error("Failed to get canonical campaigns.")
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

// GetLocationsHandler lists active locations.
func (h *Handlers) GetLocationsHandler(c *gin.Context) {
	locations, err := h.store.GetLocations()
	if err != nil {
		log.WithError(err).Error("Failed to get locations.")
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, locations)
}

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"adboard/model/model"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const mappingIDKey = "id"

// GetCampaignMappingsHandler returns all active mappings, optionally
// filtered by ?source_system=.
func (h *Handlers) GetCampaignMappingsHandler(c *gin.Context) {
	mappings, err := h.store.GetMappings(c.Query("source_system"))
	if err != nil {
		log.WithError(err).Error("Failed to get campaign mappings.")
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, mappings)
}

// CreateCampaignMappingHandler upserts a mapping: the UI "Map" button
// and subsequent pretty-field edits both land here.
func (h *Handlers) CreateCampaignMappingHandler(c *gin.Context) {
	var input model.CampaignMappingInput
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		log.WithError(err).Error("Failed to decode json request on create campaign mapping handler.")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request json."})
		return
	}

	mapping, err := h.store.UpsertMapping(&input)
	if err != nil {
		log.WithError(err).WithField("external_campaign_id", input.ExternalCampaignID).
			Error("Failed to upsert campaign mapping.")
		abortWithError(c, err)
		return
	}

	h.invalidateMetricsCache()
	c.JSON(http.StatusCreated, mapping)
}

// DeleteCampaignMappingHandler archives rather than destroys.
func (h *Handlers) DeleteCampaignMappingHandler(c *gin.Context) {
	mappingID, err := strconv.ParseUint(c.Params.ByName(mappingIDKey), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid mapping id."})
		return
	}

	if err := h.store.ArchiveMapping(mappingID); err != nil {
		log.WithError(err).WithField("mapping_id", mappingID).Error("Failed to archive campaign mapping.")
		abortWithError(c, err)
		return
	}

	h.invalidateMetricsCache()
	c.JSON(http.StatusOK, gin.H{"message": "Successfully archived campaign mapping."})
}

type archiveRequest struct {
	ID       uint64 `json:"id"`
	IsActive bool   `json:"is_active"`
}

// ArchiveCampaignMappingHandler flips the active flag. Idempotent.
func (h *Handlers) ArchiveCampaignMappingHandler(c *gin.Context) {
	var request archiveRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request json."})
		return
	}
	if request.ID == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "id is required."})
		return
	}

	if err := h.store.SetMappingActive(request.ID, request.IsActive); err != nil {
		log.WithError(err).WithField("mapping_id", request.ID).Error("Failed to set campaign mapping active state.")
		abortWithError(c, err)
		return
	}

	h.invalidateMetricsCache()
	c.JSON(http.StatusOK, gin.H{"message": "Successfully updated campaign mapping state."})
}

// UpdateCampaignOrderHandler applies a full display_order replacement
// atomically; one bad id aborts the whole batch.
func (h *Handlers) UpdateCampaignOrderHandler(c *gin.Context) {
	orders := make([]model.CampaignOrder, 0)
	if err := c.ShouldBindJSON(&orders); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request json."})
		return
	}
	if len(orders) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Empty order payload."})
		return
	}

	if err := h.store.ReorderMappings(orders); err != nil {
		log.WithError(err).Error("Failed to reorder campaign mappings.")
		abortWithError(c, err)
		return
	}

	h.invalidateMetricsCache()
	c.JSON(http.StatusOK, gin.H{"message": "Successfully updated campaign order."})
}

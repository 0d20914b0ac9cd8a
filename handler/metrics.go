package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"adboard/cache"
	"adboard/model/model"
	U "adboard/util"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const metricsCachePrefix = "metrics"

// GetUnmappedCampaignsHandler surfaces fact rows lacking a mapping.
// Best-effort display data: storage failure degrades to an empty list.
func (h *Handlers) GetUnmappedCampaignsHandler(c *gin.Context) {
	unmapped, err := h.store.ListUnmapped(c.Query("source_system"))
	if err != nil {
		log.WithError(err).Error("Failed to list unmapped campaigns.")
		if model.IsStorageUnavailableError(err) {
			c.JSON(http.StatusOK, []model.UnmappedCampaign{})
			return
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, unmapped)
}

func metricsFilterFromQuery(c *gin.Context) (model.MetricsFilter, error) {
	start, end, err := U.DateRangeBounds(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return model.MetricsFilter{}, err
	}
	return model.MetricsFilter{
		StartDate:    start,
		EndDate:      end,
		SourceSystem: c.Query("source_system"),
	}, nil
}

// GetUnifiedMetricsHandler returns the normalized cross-platform rows;
// ?rollup=true groups by (platform, network, campaign, date) with
// derived rates.
func (h *Handlers) GetUnifiedMetricsHandler(c *gin.Context) {
	filter, err := metricsFilterFromQuery(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter.Rollup, _ = strconv.ParseBool(c.DefaultQuery("rollup", "true"))

	cacheKey, _ := cache.NewKey(metricsCachePrefix,
		"unified:"+c.Request.URL.RawQuery)
	if payload, hit := h.cache.Get(cacheKey); hit {
		c.Data(http.StatusOK, "application/json", payload)
		return
	}

	rows, err := h.store.UnifiedMetrics(filter)
	if err != nil {
		log.WithError(err).Error("Failed to compute unified metrics.")
		if model.IsStorageUnavailableError(err) {
			c.JSON(http.StatusOK, []model.UnifiedRow{})
			return
		}
		abortWithError(c, err)
		return
	}

	h.cacheJSON(cacheKey, rows)
	c.JSON(http.StatusOK, rows)
}

// GetCampaignsHierarchicalHandler returns the source→network→campaign
// tree flattened to one row per campaign for the dashboard table.
func (h *Handlers) GetCampaignsHierarchicalHandler(c *gin.Context) {
	filter, err := metricsFilterFromQuery(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	includeArchived, _ := strconv.ParseBool(c.DefaultQuery("include_archived", "false"))

	cacheKey, _ := cache.NewKey(metricsCachePrefix,
		"hierarchical:"+c.Request.URL.RawQuery)
	if payload, hit := h.cache.Get(cacheKey); hit {
		c.Data(http.StatusOK, "application/json", payload)
		return
	}

	rows, err := h.store.HierarchicalCampaigns(filter, includeArchived)
	if err != nil {
		log.WithError(err).Error("Failed to build hierarchical campaigns.")
		if model.IsStorageUnavailableError(err) {
			c.JSON(http.StatusOK, []model.HierarchicalRow{})
			return
		}
		abortWithError(c, err)
		return
	}

	h.cacheJSON(cacheKey, rows)
	c.JSON(http.StatusOK, rows)
}

func (h *Handlers) cacheJSON(key *cache.Key, value interface{}) {
	if h.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	h.cache.Set(key, payload)
}

func (h *Handlers) invalidateMetricsCache() {
	h.cache.InvalidatePrefix(metricsCachePrefix)
}

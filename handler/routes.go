package handler

import (
	"net/http"

	"adboard/cache"
	C "adboard/config"
	mid "adboard/middleware"
	U "adboard/util"
	"adboard/model/model"
	"adboard/model/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Handlers carries the injected collaborators; one instance per
// process, built in the entrypoint.
type Handlers struct {
	store store.Store
	cache *cache.ResponseCache
}

func NewHandlers(s store.Store, c *cache.ResponseCache) *Handlers {
	return &Handlers{store: s, cache: c}
}

func InitRoutes(r *gin.Engine, h *Handlers) {
	r.Use(mid.RequestID())
	r.Use(mid.Logger())

	if C.IsDevelopment() {
		log.Info("Running in development.")
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = []string{"http://localhost:8080",
			"http://localhost:3000"}
		r.Use(cors.New(corsConfig))
	}

	r.GET("/status", h.StatusHandler)

	r.GET("/unmapped-campaigns", h.GetUnmappedCampaignsHandler)
	r.GET("/campaign-mappings", h.GetCampaignMappingsHandler)
	r.POST("/campaign-mappings", h.CreateCampaignMappingHandler)
	r.DELETE("/campaign-mappings/:id", h.DeleteCampaignMappingHandler)
	r.POST("/campaign-mappings/archive", h.ArchiveCampaignMappingHandler)
	r.POST("/campaign-order", h.UpdateCampaignOrderHandler)

	r.GET("/campaigns-hierarchical", h.GetCampaignsHierarchicalHandler)
	r.GET("/unified-metrics", h.GetUnifiedMetricsHandler)

	r.GET("/locations", h.GetLocationsHandler)
	r.GET("/canonical-campaigns", h.GetCanonicalCampaignsHandler)

	r.POST("/data-service/:platform/documents", h.CreatePlatformDocumentsHandler)
}

func (h *Handlers) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": U.TimeNowZ()})
}

// abortWithError maps the typed taxonomy onto http statuses.
func abortWithError(c *gin.Context, err error) {
	logCtx := log.WithField("req_id", mid.GetRequestID(c))
	switch {
	case model.IsValidationError(err):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case model.IsNotFoundError(err):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case model.IsConflictError(err):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case model.IsStorageUnavailableError(err):
		logCtx.WithError(err).Error("Storage unavailable.")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, retry later"})
	default:
		logCtx.WithError(err).Error("Request failed.")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

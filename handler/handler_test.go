package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"adboard/model/model"
	"adboard/model/store"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
)

func setupTestRouter(t *testing.T) (*gin.Engine, store.Store) {
	db, err := gorm.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.DB().SetMaxOpenConns(1)
	if err := store.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dataStore := store.New(db)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	InitRoutes(r, NewHandlers(dataStore, nil))
	return r, dataStore
}

func sendJSON(r *gin.Engine, method, url string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sendGet(r *gin.Engine, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedGoogleFacts(t *testing.T, r *gin.Engine) {
	w := sendJSON(r, http.MethodPost, "/data-service/google_ads/documents", []model.FactRowInput{
		{Date: "2024-01-01", CampaignID: "123", CampaignName: "Raw Solar", Network: "Search"},
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestStatusHandler(t *testing.T) {
	r, _ := setupTestRouter(t)
	w := sendGet(r, "/status")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMappingLifecycleOverHTTP(t *testing.T) {
	r, _ := setupTestRouter(t)
	seedGoogleFacts(t, r)

	t.Run("UnmappedBeforeMapping", func(t *testing.T) {
		w := sendGet(r, "/unmapped-campaigns")
		assert.Equal(t, http.StatusOK, w.Code)

		var unmapped []model.UnmappedCampaign
		assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &unmapped))
		assert.Len(t, unmapped, 1)
		assert.Equal(t, "123", unmapped[0].ExternalCampaignID)
	})

	var mappingID uint64
	t.Run("CreateMapping", func(t *testing.T) {
		w := sendJSON(r, http.MethodPost, "/campaign-mappings", map[string]interface{}{
			"source_system":        "Google Ads",
			"external_campaign_id": "123",
			"pretty_campaign_name": "Solar Search",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var mapping model.CampaignMapping
		assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &mapping))
		assert.NotZero(t, mapping.ID)
		mappingID = mapping.ID
	})

	t.Run("UnmappedAfterMapping", func(t *testing.T) {
		w := sendGet(r, "/unmapped-campaigns")
		assert.Equal(t, http.StatusOK, w.Code)

		var unmapped []model.UnmappedCampaign
		assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &unmapped))
		assert.Len(t, unmapped, 0)
	})

	t.Run("UnifiedMetricsZeroRates", func(t *testing.T) {
		w := sendGet(r, "/unified-metrics")
		assert.Equal(t, http.StatusOK, w.Code)

		var rows []model.UnifiedRow
		assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &rows))
		assert.Len(t, rows, 1)
		assert.Equal(t, "Solar Search", rows[0].CampaignName)
		assert.Equal(t, float64(0), rows[0].CTR)
		assert.Equal(t, float64(0), rows[0].CostPerClick)
	})

	t.Run("ArchiveIsIdempotent", func(t *testing.T) {
		payload := map[string]interface{}{"id": mappingID, "is_active": false}
		w := sendJSON(r, http.MethodPost, "/campaign-mappings/archive", payload)
		assert.Equal(t, http.StatusOK, w.Code)
		w = sendJSON(r, http.MethodPost, "/campaign-mappings/archive", payload)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("DeleteArchivesSoftly", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/campaign-mappings/%d", mappingID), nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		// The mapping row survives; it no longer lists as active.
		wGet := sendGet(r, "/campaign-mappings")
		var mappings []model.CampaignMapping
		assert.Nil(t, json.Unmarshal(wGet.Body.Bytes(), &mappings))
		assert.Len(t, mappings, 0)
	})
}

func TestCreateMappingValidationErrors(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := sendJSON(r, http.MethodPost, "/campaign-mappings", map[string]interface{}{
		"source_system":        "Google Ads",
		"external_campaign_id": "123",
		"pretty_campaign_name": "",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "pretty_campaign_name")

	// Unknown fields are rejected outright.
	w = sendJSON(r, http.MethodPost, "/campaign-mappings", map[string]interface{}{
		"source_system":        "Google Ads",
		"external_campaign_id": "123",
		"pretty_campaign_name": "Solar",
		"unexpected_field":     true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCampaignOrderEndpoint(t *testing.T) {
	r, dataStore := setupTestRouter(t)

	first, err := dataStore.UpsertMapping(&model.CampaignMappingInput{
		SourceSystem: "google_ads", ExternalCampaignID: "1", PrettyCampaignName: "One", Network: "Search",
	})
	assert.Nil(t, err)
	second, err := dataStore.UpsertMapping(&model.CampaignMappingInput{
		SourceSystem: "google_ads", ExternalCampaignID: "2", PrettyCampaignName: "Two", Network: "Search",
	})
	assert.Nil(t, err)

	t.Run("UnknownIDFailsAtomically", func(t *testing.T) {
		w := sendJSON(r, http.MethodPost, "/campaign-order", []model.CampaignOrder{
			{ID: first.ID, DisplayOrder: 2},
			{ID: 99999, DisplayOrder: 1},
		})
		assert.Equal(t, http.StatusNotFound, w.Code)

		mappings, _ := dataStore.GetMappings("google_ads")
		assert.Equal(t, 1, mappings[0].DisplayOrder)
		assert.Equal(t, 2, mappings[1].DisplayOrder)
	})

	t.Run("ValidReorderApplies", func(t *testing.T) {
		w := sendJSON(r, http.MethodPost, "/campaign-order", []model.CampaignOrder{
			{ID: first.ID, DisplayOrder: 2},
			{ID: second.ID, DisplayOrder: 1},
		})
		assert.Equal(t, http.StatusOK, w.Code)

		mappings, _ := dataStore.GetMappings("google_ads")
		assert.Equal(t, second.ID, mappings[0].ID)
	})
}

func TestCampaignsHierarchicalEndpoint(t *testing.T) {
	r, dataStore := setupTestRouter(t)

	_, err := dataStore.UpsertFacts("google_ads", []model.FactRowInput{
		{Date: "2024-01-01", CampaignID: "g1", CampaignName: "G One", Network: "Search",
			Impressions: 100, Clicks: 10, Cost: 5, Conversions: 1},
		{Date: "2024-02-01", CampaignID: "g1", CampaignName: "G One", Network: "Search",
			Impressions: 900, Clicks: 90, Cost: 45, Conversions: 9},
	})
	assert.Nil(t, err)
	_, err = dataStore.UpsertMapping(&model.CampaignMappingInput{
		SourceSystem: "google_ads", ExternalCampaignID: "g1",
		PrettyCampaignName: "Solar Search", Network: "Search",
	})
	assert.Nil(t, err)

	w := sendGet(r, "/campaigns-hierarchical?start_date=2024-01-01&end_date=2024-01-31")
	assert.Equal(t, http.StatusOK, w.Code)

	var rows []model.HierarchicalRow
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 1)
	assert.Equal(t, "Solar Search", rows[0].CampaignName)
	assert.Equal(t, int64(100), rows[0].Impressions)

	w = sendGet(r, "/campaigns-hierarchical?start_date=bad-date")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDataServiceRejectsUnknownPlatform(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := sendJSON(r, http.MethodPost, "/data-service/facebook_ads/documents", []model.FactRowInput{
		{Date: "2024-01-01", CampaignID: "1"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package postgres

import (
	U "adboard/util"
	"adboard/model/model"

	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"
)

// UpsertFacts is the append/upsert target the external platform
// fetchers post into: one row per (platform, campaign, date[,
// location]), metric columns replaced on re-post. Also creates the
// canonical dim_campaigns row lazily the first time an unseen
// (source_system, external_id) pair appears. Returns the number of
// rows written.
func (store *Store) UpsertFacts(platform string, inputs []model.FactRowInput) (int, error) {
	canonical, ok := model.CanonicalSourceSystem(platform)
	if !ok {
		return 0, &model.ValidationError{Field: "platform", Message: "unknown platform label"}
	}
	logCtx := log.WithField("platform", canonical)

	written := 0
	for i := range inputs {
		input := inputs[i]
		if err := input.Validate(); err != nil {
			return written, err
		}
		input.CampaignID = U.NormalizeExternalID(input.CampaignID)

		if err := store.ensureCanonicalCampaign(canonical, &input); err != nil {
			return written, err
		}
		if err := store.upsertFactRow(canonical, &input); err != nil {
			logCtx.WithError(err).WithField("campaign_id", input.CampaignID).
				Error("Failed to upsert fact row.")
			return written, err
		}
		written++
	}
	return written, nil
}

func (store *Store) upsertFactRow(platform string, input *model.FactRowInput) error {
	switch platform {
	case model.SourceGoogleAds:
		fact := model.GoogleAdsFact{}
		err := store.db.Where("date = ? AND campaign_id = ? AND location_id = ?",
			input.Date, input.CampaignID, input.LocationID).First(&fact).Error
		if err != nil && !gorm.IsRecordNotFoundError(err) {
			return asStorageError(err, "lookup google ads fact")
		}
		fact.Date = input.Date
		fact.CampaignID = input.CampaignID
		fact.LocationID = input.LocationID
		fact.CampaignName = input.CampaignName
		fact.Network = input.Network
		fact.Impressions = input.Impressions
		fact.Clicks = input.Clicks
		fact.Cost = input.Cost
		fact.Conversions = input.Conversions
		return store.saveFact(&fact, fact.ID == 0)
	case model.SourceBingAds:
		fact := model.BingAdsFact{}
		err := store.db.Where("date = ? AND campaign_id = ?",
			input.Date, input.CampaignID).First(&fact).Error
		if err != nil && !gorm.IsRecordNotFoundError(err) {
			return asStorageError(err, "lookup bing ads fact")
		}
		fact.Date = input.Date
		fact.CampaignID = input.CampaignID
		fact.CampaignName = input.CampaignName
		fact.Network = input.Network
		fact.Impressions = input.Impressions
		fact.Clicks = input.Clicks
		fact.Spend = input.Cost
		fact.Conversions = int64(input.Conversions)
		fact.CurrencyCode = input.CurrencyCode
		return store.saveFact(&fact, fact.ID == 0)
	case model.SourceRedTrack:
		fact := model.RedTrackFact{}
		err := store.db.Where("date = ? AND campaign_id = ?",
			input.Date, input.CampaignID).First(&fact).Error
		if err != nil && !gorm.IsRecordNotFoundError(err) {
			return asStorageError(err, "lookup redtrack fact")
		}
		fact.Date = input.Date
		fact.CampaignID = input.CampaignID
		fact.CampaignName = input.CampaignName
		fact.Network = input.Network
		fact.Clicks = input.Clicks
		fact.Conversions = input.Conversions
		fact.Revenue = input.Revenue
		return store.saveFact(&fact, fact.ID == 0)
	case model.SourceMatomo:
		fact := model.MatomoFact{}
		err := store.db.Where("date = ? AND campaign_id = ?",
			input.Date, input.CampaignID).First(&fact).Error
		if err != nil && !gorm.IsRecordNotFoundError(err) {
			return asStorageError(err, "lookup matomo fact")
		}
		fact.Date = input.Date
		fact.CampaignID = input.CampaignID
		fact.CampaignName = input.CampaignName
		fact.Network = input.Network
		fact.NbVisits = input.Impressions
		fact.NbConversions = int64(input.Conversions)
		return store.saveFact(&fact, fact.ID == 0)
	}
	return &model.ValidationError{Field: "platform", Message: "unknown platform label"}
}

func (store *Store) saveFact(fact interface{}, isNew bool) error {
	var err error
	if isNew {
		err = store.db.Create(fact).Error
	} else {
		err = store.db.Save(fact).Error
	}
	if err != nil {
		if IsDuplicateRecordError(err) {
			return &model.ConflictError{Message: "concurrent fact upsert for the same row"}
		}
		return asStorageError(err, "save fact row")
	}
	return nil
}

// ensureCanonicalCampaign creates the dim row for an unseen
// (source_system, external_id) pair. Existing rows are never mutated
// here; cosmetic naming lives in the mapping catalog.
func (store *Store) ensureCanonicalCampaign(platform string, input *model.FactRowInput) error {
	var existing model.CanonicalCampaign
	err := store.db.Where("source_system = ? AND external_id = ?",
		platform, input.CampaignID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !gorm.IsRecordNotFoundError(err) {
		return asStorageError(err, "lookup canonical campaign")
	}

	campaign := model.CanonicalCampaign{
		CampaignName: input.CampaignName,
		SourceSystem: platform,
		ExternalID:   input.CampaignID,
		AccountID:    input.AccountID,
		AccountName:  input.AccountName,
		IsActive:     true,
	}
	if err := store.db.Create(&campaign).Error; err != nil {
		// A concurrent ingestion already created it.
		if IsDuplicateRecordError(err) {
			return nil
		}
		return asStorageError(err, "create canonical campaign")
	}
	return nil
}

// GetCanonicalCampaigns lists the dim rows for a source system, or all
// of them with an empty filter.
func (store *Store) GetCanonicalCampaigns(sourceSystem string) ([]model.CanonicalCampaign, error) {
	campaigns := make([]model.CanonicalCampaign, 0)
	query := store.db
	if sourceSystem != "" {
		canonical, ok := model.CanonicalSourceSystem(sourceSystem)
		if !ok {
			return campaigns, nil
		}
		query = query.Where("source_system = ?", canonical)
	}
	err := query.Order("source_system, external_id").Find(&campaigns).Error
	if err != nil {
		return nil, asStorageError(err, "get canonical campaigns")
	}
	return campaigns, nil
}

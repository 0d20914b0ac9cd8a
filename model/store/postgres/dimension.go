package postgres

import (
	"adboard/model/model"

	"github.com/jinzhu/gorm"
)

// GetLocations lists active locations. Reference data, seeded rarely.
func (store *Store) GetLocations() ([]model.Location, error) {
	locations := make([]model.Location, 0)
	err := store.db.Where("is_active = ?", true).
		Order("country, region_code, location_name").Find(&locations).Error
	if err != nil {
		return nil, asStorageError(err, "get locations")
	}
	return locations, nil
}

// CreateLocation seeds one location row.
func (store *Store) CreateLocation(location *model.Location) error {
	if location.LocationName == "" {
		return &model.ValidationError{Field: "location_name", Message: "is required"}
	}
	if err := store.db.Create(location).Error; err != nil {
		if IsDuplicateRecordError(err) {
			return &model.ConflictError{Message: "location already exists"}
		}
		return asStorageError(err, "create location")
	}
	return nil
}

// LinkCampaignLocation attributes a canonical campaign to a geography.
func (store *Store) LinkCampaignLocation(campaignID, locationID uint64, isPrimary bool) error {
	var campaign model.CanonicalCampaign
	if err := store.db.First(&campaign, campaignID).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &model.NotFoundError{Entity: "canonical campaign", ID: campaignID}
		}
		return asStorageError(err, "lookup canonical campaign for link")
	}
	var location model.Location
	if err := store.db.First(&location, locationID).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &model.NotFoundError{Entity: "location", ID: locationID}
		}
		return asStorageError(err, "lookup location for link")
	}

	link := model.CampaignLocation{CampaignID: campaignID, LocationID: locationID, IsPrimary: isPrimary}
	if err := store.db.Create(&link).Error; err != nil {
		if IsDuplicateRecordError(err) {
			// Re-linking the same pair only updates the primary flag.
			return asStorageError(store.db.Model(&model.CampaignLocation{}).
				Where("campaign_id = ? AND location_id = ?", campaignID, locationID).
				Update("is_primary", isPrimary).Error, "update campaign location link")
		}
		return asStorageError(err, "create campaign location link")
	}
	return nil
}

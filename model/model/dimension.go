package model

import "time"

// Location is immutable geographic reference data, created by seed or
// import and rarely mutated afterwards.
type Location struct {
	LocationID   uint64 `gorm:"primary_key;column:location_id" json:"location_id"`
	RegionCode   string `json:"region_code"`
	LocationName string `json:"location_name"`
	Country      string `json:"country"`
	GeoTargetID  string `json:"geo_target_id"`
	IsActive     bool   `json:"is_active"`
}

func (Location) TableName() string {
	return "locations"
}

// CanonicalCampaign is the long-lived internal identity for a
// (source_system, external_id) pair, independent of the cosmetic
// naming a CampaignMapping attaches to it. Created lazily the first
// time a fact row references an unseen pair; never deleted, only
// deactivated.
type CanonicalCampaign struct {
	CampaignID   uint64    `gorm:"primary_key;column:campaign_id" json:"campaign_id"`
	CampaignName string    `json:"campaign_name"`
	SourceSystem string    `gorm:"not null;unique_index:uix_dim_campaigns_identity" json:"source_system"`
	ExternalID   string    `gorm:"not null;unique_index:uix_dim_campaigns_identity" json:"external_id"`
	AccountID    string    `json:"account_id"`
	AccountName  string    `json:"account_name"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (CanonicalCampaign) TableName() string {
	return "dim_campaigns"
}

// CampaignLocation links a canonical campaign to one or more
// geographies.
type CampaignLocation struct {
	CampaignID uint64 `gorm:"primary_key;auto_increment:false" json:"campaign_id"`
	LocationID uint64 `gorm:"primary_key;auto_increment:false" json:"location_id"`
	IsPrimary  bool   `json:"is_primary"`
}

func (CampaignLocation) TableName() string {
	return "campaign_locations"
}

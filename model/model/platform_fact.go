package model

import (
	U "adboard/util"
	"time"
)

// One fact table per platform, each with its own column set. The
// variants never leak past this file: each has exactly one normalizer
// projecting it into the common UnifiedRow shape, with typed zeros for
// the columns the platform does not report.

// GoogleAdsFact carries the full column set.
type GoogleAdsFact struct {
	ID                    uint64    `gorm:"primary_key" json:"id"`
	Date                  string    `gorm:"not null;unique_index:uix_fact_google_ads_row" json:"date"`
	CampaignID            string    `gorm:"not null;unique_index:uix_fact_google_ads_row" json:"campaign_id"`
	LocationID            uint64    `gorm:"unique_index:uix_fact_google_ads_row" json:"location_id"`
	CampaignName          string    `json:"campaign_name"`
	Network               string    `json:"network"`
	Impressions           int64     `json:"impressions"`
	Clicks                int64     `json:"clicks"`
	Cost                  float64   `json:"cost"`
	Conversions           float64   `json:"conversions"`
	SearchImpressionShare float64   `json:"search_impression_share"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (GoogleAdsFact) TableName() string {
	return "fact_google_ads"
}

func (f *GoogleAdsFact) ToUnifiedRow() UnifiedRow {
	return UnifiedRow{
		Platform:             SourceGoogleAds,
		Network:              f.Network,
		Date:                 f.Date,
		CampaignID:           U.NormalizeExternalID(f.CampaignID),
		CampaignName:         f.CampaignName,
		OriginalCampaignName: f.CampaignName,
		Impressions:          f.Impressions,
		Clicks:               f.Clicks,
		Cost:                 f.Cost,
		Conversions:          f.Conversions,
	}
}

// BingAdsFact reports cost as spend and integral conversions.
type BingAdsFact struct {
	ID           uint64    `gorm:"primary_key" json:"id"`
	Date         string    `gorm:"not null;unique_index:uix_fact_bing_ads_row" json:"date"`
	CampaignID   string    `gorm:"not null;unique_index:uix_fact_bing_ads_row" json:"campaign_id"`
	CampaignName string    `json:"campaign_name"`
	Network      string    `json:"network"`
	Impressions  int64     `json:"impressions"`
	Clicks       int64     `json:"clicks"`
	Spend        float64   `json:"spend"`
	Conversions  int64     `json:"conversions"`
	CurrencyCode string    `json:"currency_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (BingAdsFact) TableName() string {
	return "fact_bing_ads"
}

func (f *BingAdsFact) ToUnifiedRow() UnifiedRow {
	return UnifiedRow{
		Platform:             SourceBingAds,
		Network:              f.Network,
		Date:                 f.Date,
		CampaignID:           U.NormalizeExternalID(f.CampaignID),
		CampaignName:         f.CampaignName,
		OriginalCampaignName: f.CampaignName,
		Impressions:          f.Impressions,
		Clicks:               f.Clicks,
		Cost:                 f.Spend,
		Conversions:          float64(f.Conversions),
	}
}

// RedTrackFact has no impressions or cost in the minimal schema.
type RedTrackFact struct {
	ID           uint64    `gorm:"primary_key" json:"id"`
	Date         string    `gorm:"not null;unique_index:uix_fact_redtrack_row" json:"date"`
	CampaignID   string    `gorm:"not null;unique_index:uix_fact_redtrack_row" json:"campaign_id"`
	CampaignName string    `json:"campaign_name"`
	Network      string    `json:"network"`
	Clicks       int64     `json:"clicks"`
	Conversions  float64   `json:"conversions"`
	Revenue      float64   `json:"revenue"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (RedTrackFact) TableName() string {
	return "fact_redtrack"
}

func (f *RedTrackFact) ToUnifiedRow() UnifiedRow {
	return UnifiedRow{
		Platform:             SourceRedTrack,
		Network:              f.Network,
		Date:                 f.Date,
		CampaignID:           U.NormalizeExternalID(f.CampaignID),
		CampaignName:         f.CampaignName,
		OriginalCampaignName: f.CampaignName,
		Impressions:          0,
		Clicks:               f.Clicks,
		Cost:                 0,
		Conversions:          f.Conversions,
	}
}

// MatomoFact has no clicks or cost; visits stand in for impressions.
type MatomoFact struct {
	ID             uint64    `gorm:"primary_key" json:"id"`
	Date           string    `gorm:"not null;unique_index:uix_fact_matomo_row" json:"date"`
	CampaignID     string    `gorm:"not null;unique_index:uix_fact_matomo_row" json:"campaign_id"`
	CampaignName   string    `json:"campaign_name"`
	Network        string    `json:"network"`
	NbVisits       int64     `json:"nb_visits"`
	NbConversions  int64     `json:"nb_conversions"`
	SumVisitLength int64     `json:"sum_visit_length"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (MatomoFact) TableName() string {
	return "fact_matomo"
}

func (f *MatomoFact) ToUnifiedRow() UnifiedRow {
	return UnifiedRow{
		Platform:             SourceMatomo,
		Network:              f.Network,
		Date:                 f.Date,
		CampaignID:           U.NormalizeExternalID(f.CampaignID),
		CampaignName:         f.CampaignName,
		OriginalCampaignName: f.CampaignName,
		Impressions:          f.NbVisits,
		Clicks:               0,
		Cost:                 0,
		Conversions:          float64(f.NbConversions),
	}
}

// FactRowInput is the generic document shape the external platform
// fetchers post; the store projects it into the platform's fact table.
// Columns a platform does not report are ignored on write.
type FactRowInput struct {
	Date         string  `json:"date"`
	CampaignID   string  `json:"campaign_id"`
	CampaignName string  `json:"campaign_name"`
	Network      string  `json:"network"`
	LocationID   uint64  `json:"location_id"`
	Impressions  int64   `json:"impressions"`
	Clicks       int64   `json:"clicks"`
	Cost         float64 `json:"cost"`
	Conversions  float64 `json:"conversions"`
	Revenue      float64 `json:"revenue"`
	CurrencyCode string  `json:"currency_code"`
	AccountID    string  `json:"account_id"`
	AccountName  string  `json:"account_name"`
}

func (input *FactRowInput) Validate() error {
	if _, err := U.ParseDate(input.Date); err != nil {
		return &ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	if U.NormalizeExternalID(input.CampaignID) == "" {
		return &ValidationError{Field: "campaign_id", Message: "is required"}
	}
	return nil
}

package model

import (
	U "adboard/util"
	"strings"
	"time"
)

// Source system labels. Fact tables are per-platform so facts always
// carry the canonical label; mapping payloads arrive as free text and
// are canonicalized through CanonicalSourceSystem.
const (
	SourceGoogleAds = "google_ads"
	SourceBingAds   = "bing_ads"
	SourceRedTrack  = "redtrack"
	SourceMatomo    = "matomo"
)

var KnownSourceSystems = []string{
	SourceGoogleAds,
	SourceBingAds,
	SourceRedTrack,
	SourceMatomo,
}

const CategoryUncategorized = "Uncategorized"

// CanonicalSourceSystem matches free-text source labels against the
// known platforms case-insensitively. "Google Ads" and "google_ads"
// both canonicalize to SourceGoogleAds.
func CanonicalSourceSystem(source string) (string, bool) {
	normalized := U.NormalizeSource(source)
	for _, known := range KnownSourceSystems {
		if normalized == known {
			return known, true
		}
	}
	// Tolerate the spaced, unseparated and display variants.
	switch normalized {
	case "googleads", "google":
		return SourceGoogleAds, true
	case "bingads", "bing":
		return SourceBingAds, true
	case "red_track":
		return SourceRedTrack, true
	}
	return "", false
}

// CampaignMapping is the authoritative identity translation layer
// between platform-reported campaigns and the dashboard's pretty
// identities. Exactly one row exists per normalized
// (source_system, external_campaign_id); SourceKey and ExternalKey are
// the stored normalized columns backing the unique index.
type CampaignMapping struct {
	ID                   uint64    `gorm:"primary_key" json:"id"`
	SourceSystem         string    `gorm:"not null" json:"source_system"`
	ExternalCampaignID   string    `gorm:"not null" json:"external_campaign_id"`
	SourceKey            string    `gorm:"not null;unique_index:uix_campaign_mappings_soft_key" json:"-"`
	ExternalKey          string    `gorm:"not null;unique_index:uix_campaign_mappings_soft_key" json:"-"`
	OriginalCampaignName string    `json:"original_campaign_name"`
	PrettyCampaignName   string    `gorm:"not null" json:"pretty_campaign_name"`
	CampaignCategory     string    `json:"campaign_category"`
	CampaignType         string    `json:"campaign_type"`
	Network              string    `json:"network"`
	PrettyNetwork        string    `json:"pretty_network"`
	PrettySource         string    `json:"pretty_source"`
	DisplayOrder         int       `json:"display_order"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (CampaignMapping) TableName() string {
	return "campaign_mappings"
}

// CampaignMappingInput is the mapping upsert payload. SourceSystem and
// ExternalCampaignID identify the row and are immutable after
// creation; the remaining fields are the cosmetic identity.
type CampaignMappingInput struct {
	SourceSystem         string `json:"source_system"`
	ExternalCampaignID   string `json:"external_campaign_id"`
	OriginalCampaignName string `json:"original_campaign_name"`
	PrettyCampaignName   string `json:"pretty_campaign_name"`
	CampaignCategory     string `json:"campaign_category"`
	CampaignType         string `json:"campaign_type"`
	Network              string `json:"network"`
	PrettyNetwork        string `json:"pretty_network"`
	PrettySource         string `json:"pretty_source"`
}

func (input *CampaignMappingInput) Validate() error {
	if strings.TrimSpace(input.SourceSystem) == "" {
		return &ValidationError{Field: "source_system", Message: "is required"}
	}
	if _, ok := CanonicalSourceSystem(input.SourceSystem); !ok {
		return &ValidationError{Field: "source_system", Message: "unknown platform label"}
	}
	if U.NormalizeExternalID(input.ExternalCampaignID) == "" {
		return &ValidationError{Field: "external_campaign_id", Message: "is required"}
	}
	if strings.TrimSpace(input.PrettyCampaignName) == "" {
		return &ValidationError{Field: "pretty_campaign_name", Message: "is required"}
	}
	return nil
}

// ApplyDefaults fills optional cosmetic fields from the raw values.
func (input *CampaignMappingInput) ApplyDefaults() {
	if input.CampaignCategory == "" {
		input.CampaignCategory = CategoryUncategorized
	}
	if input.CampaignType == "" {
		input.CampaignType = CategoryUncategorized
	}
	if input.PrettySource == "" {
		input.PrettySource = input.SourceSystem
	}
	if input.PrettyNetwork == "" {
		input.PrettyNetwork = input.Network
	}
}

// CampaignOrder is one element of a reorder payload.
type CampaignOrder struct {
	ID           uint64 `json:"id"`
	DisplayOrder int    `json:"display_order"`
}

// UnmappedCampaign is a campaign observed in the fact tables with no
// resolvable active mapping.
type UnmappedCampaign struct {
	SourceSystem       string `json:"source_system"`
	ExternalCampaignID string `json:"external_campaign_id"`
	CampaignName       string `json:"campaign_name"`
	Network            string `json:"network"`
}

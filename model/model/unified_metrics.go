package model

import (
	U "adboard/util"
	"sort"
)

// UnifiedRow is the single row shape every platform's facts project
// into. The full column set is always present; platforms missing a
// metric carry a typed zero. Mapping fields are filled during
// resolution and keep their raw fallbacks when no mapping exists.
type UnifiedRow struct {
	Platform             string  `json:"platform"`
	Network              string  `json:"network"`
	Date                 string  `json:"date"`
	CampaignID           string  `json:"campaign_id"`
	CampaignName         string  `json:"campaign_name"`
	OriginalCampaignName string  `json:"original_campaign_name"`
	CampaignCategory     string  `json:"campaign_category"`
	CampaignType         string  `json:"campaign_type"`
	PrettySource         string  `json:"pretty_source"`
	PrettyNetwork        string  `json:"pretty_network"`
	MappingID            uint64  `json:"mapping_id,omitempty"`
	MappingActive        bool    `json:"-"`
	DisplayOrder         int     `json:"display_order"`
	Impressions          int64   `json:"impressions"`
	Clicks               int64   `json:"clicks"`
	Cost                 float64 `json:"cost"`
	Conversions          float64 `json:"conversions"`
	CTR                  float64 `json:"ctr"`
	CostPerClick         float64 `json:"cpc"`
	ConversionRate       float64 `json:"conversion_rate"`
	CostPerConversion    float64 `json:"cost_per_conversion"`
}

// ApplyMapping resolves the row's cosmetic identity through an active
// mapping. Passing nil keeps the raw name and marks the row
// uncategorized; callers must not fabricate a default mapping.
func (row *UnifiedRow) ApplyMapping(mapping *CampaignMapping) {
	if mapping == nil {
		row.CampaignCategory = CategoryUncategorized
		row.CampaignType = CategoryUncategorized
		row.PrettySource = row.Platform
		row.PrettyNetwork = networkFallback(row.Network, "")
		row.MappingActive = true
		return
	}
	row.MappingID = mapping.ID
	row.MappingActive = mapping.IsActive
	row.DisplayOrder = mapping.DisplayOrder
	if mapping.PrettyCampaignName != "" {
		row.CampaignName = mapping.PrettyCampaignName
	}
	if mapping.CampaignCategory != "" {
		row.CampaignCategory = mapping.CampaignCategory
	} else {
		row.CampaignCategory = CategoryUncategorized
	}
	if mapping.CampaignType != "" {
		row.CampaignType = mapping.CampaignType
	} else {
		row.CampaignType = CategoryUncategorized
	}
	if mapping.PrettySource != "" {
		row.PrettySource = mapping.PrettySource
	} else {
		row.PrettySource = row.Platform
	}
	row.PrettyNetwork = networkFallback(row.Network, mapping.PrettyNetwork)
}

// networkFallback picks pretty network, else raw network, else
// "Uncategorized".
func networkFallback(rawNetwork, prettyNetwork string) string {
	if prettyNetwork != "" {
		return prettyNetwork
	}
	if rawNetwork != "" {
		return rawNetwork
	}
	return CategoryUncategorized
}

// DeriveRates computes the derived rate columns with guarded
// denominators. Division by zero yields 0, never NaN or an error.
func (row *UnifiedRow) DeriveRates() {
	row.CTR = U.SafeDivide(float64(row.Clicks), float64(row.Impressions))
	row.CostPerClick = U.SafeDivide(row.Cost, float64(row.Clicks))
	row.ConversionRate = U.SafeDivide(row.Conversions, float64(row.Clicks))
	row.CostPerConversion = U.SafeDivide(row.Cost, row.Conversions)
}

type rollupKey struct {
	Platform     string
	Network      string
	CampaignID   string
	CampaignName string
	Date         string
}

// RollupUnifiedRows groups rows by (platform, network, campaign_id,
// campaign_name, date), sums the additive metrics and derives the rate
// columns. Output order is deterministic for a fixed input.
func RollupUnifiedRows(rows []UnifiedRow) []UnifiedRow {
	grouped := make(map[rollupKey]*UnifiedRow)
	order := make([]rollupKey, 0, len(rows))
	for i := range rows {
		row := rows[i]
		key := rollupKey{
			Platform:     row.Platform,
			Network:      row.Network,
			CampaignID:   row.CampaignID,
			CampaignName: row.CampaignName,
			Date:         row.Date,
		}
		existing, found := grouped[key]
		if !found {
			copied := row
			grouped[key] = &copied
			order = append(order, key)
			continue
		}
		existing.Impressions += row.Impressions
		existing.Clicks += row.Clicks
		existing.Cost += row.Cost
		existing.Conversions += row.Conversions
	}

	result := make([]UnifiedRow, 0, len(order))
	for _, key := range order {
		row := grouped[key]
		row.DeriveRates()
		result = append(result, *row)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Platform != result[j].Platform {
			return result[i].Platform < result[j].Platform
		}
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].CampaignID < result[j].CampaignID
	})
	return result
}

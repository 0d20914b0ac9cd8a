package model

import (
	U "adboard/util"
	"sort"
)

// MetricTotals is the elementwise metric sum at a hierarchy level,
// with the derived rates recomputed over the summed values.
type MetricTotals struct {
	Impressions       int64   `json:"impressions"`
	Clicks            int64   `json:"clicks"`
	Cost              float64 `json:"cost"`
	Conversions       float64 `json:"conversions"`
	CTR               float64 `json:"ctr"`
	CostPerClick      float64 `json:"cpc"`
	ConversionRate    float64 `json:"conversion_rate"`
	CostPerConversion float64 `json:"cost_per_conversion"`
}

func (t *MetricTotals) add(row *UnifiedRow) {
	t.Impressions += row.Impressions
	t.Clicks += row.Clicks
	t.Cost += row.Cost
	t.Conversions += row.Conversions
}

func (t *MetricTotals) addTotals(other *MetricTotals) {
	t.Impressions += other.Impressions
	t.Clicks += other.Clicks
	t.Cost += other.Cost
	t.Conversions += other.Conversions
}

func (t *MetricTotals) deriveRates() {
	t.CTR = U.SafeDivide(float64(t.Clicks), float64(t.Impressions))
	t.CostPerClick = U.SafeDivide(t.Cost, float64(t.Clicks))
	t.ConversionRate = U.SafeDivide(t.Conversions, float64(t.Clicks))
	t.CostPerConversion = U.SafeDivide(t.Cost, t.Conversions)
}

// HierarchyCampaign is one campaign aggregated over the requested
// range within its network group. Platform stays on the row because
// pretty sources are cosmetic: two platforms grouped under one label
// remain distinct campaigns.
type HierarchyCampaign struct {
	Platform             string       `json:"platform"`
	CampaignID           string       `json:"campaign_id"`
	CampaignName         string       `json:"campaign_name"`
	OriginalCampaignName string       `json:"original_campaign_name"`
	CampaignCategory     string       `json:"campaign_category"`
	CampaignType         string       `json:"campaign_type"`
	MappingID            uint64       `json:"mapping_id,omitempty"`
	DisplayOrder         int          `json:"display_order"`
	IsActive             bool         `json:"is_active"`
	Totals               MetricTotals `json:"totals"`
}

// HierarchyNetwork groups campaigns under a pretty network.
type HierarchyNetwork struct {
	Network   string              `json:"network"`
	Campaigns []HierarchyCampaign `json:"campaigns"`
	Totals    MetricTotals        `json:"totals"`
}

// HierarchySource groups networks under a pretty source.
type HierarchySource struct {
	Source   string             `json:"source"`
	Networks []HierarchyNetwork `json:"networks"`
	Totals   MetricTotals       `json:"totals"`
}

// BuildHierarchy assembles the source→network→campaign tree the
// dashboard renders. Totals are computed bottom-up from the rows in
// the tree, never re-queried, so they always agree with the displayed
// campaigns. Archived campaigns are excluded by default; networks left
// empty after that filtering are omitted. Ordering: sources and
// networks alphabetically, campaigns by display_order ascending with
// campaign_id breaking ties.
func BuildHierarchy(rows []UnifiedRow, includeArchived bool) []HierarchySource {
	// The platform is part of the campaign identity: a shared external
	// id across platforms under the same pretty labels must not merge.
	type campaignKey struct {
		source   string
		network  string
		platform string
		campaign string
	}

	campaigns := make(map[campaignKey]*HierarchyCampaign)
	for i := range rows {
		row := &rows[i]
		if !includeArchived && !row.MappingActive {
			continue
		}
		key := campaignKey{
			source:   sourceLabel(row),
			network:  networkFallback(row.Network, row.PrettyNetwork),
			platform: row.Platform,
			campaign: row.CampaignID,
		}
		campaign, found := campaigns[key]
		if !found {
			campaign = &HierarchyCampaign{
				Platform:             row.Platform,
				CampaignID:           row.CampaignID,
				CampaignName:         row.CampaignName,
				OriginalCampaignName: row.OriginalCampaignName,
				CampaignCategory:     row.CampaignCategory,
				CampaignType:         row.CampaignType,
				MappingID:            row.MappingID,
				DisplayOrder:         row.DisplayOrder,
				IsActive:             row.MappingActive,
			}
			campaigns[key] = campaign
		}
		campaign.Totals.add(row)
	}

	networks := make(map[string]map[string]*HierarchyNetwork)
	for key, campaign := range campaigns {
		campaign.Totals.deriveRates()
		byNetwork, found := networks[key.source]
		if !found {
			byNetwork = make(map[string]*HierarchyNetwork)
			networks[key.source] = byNetwork
		}
		network, found := byNetwork[key.network]
		if !found {
			network = &HierarchyNetwork{Network: key.network}
			byNetwork[key.network] = network
		}
		network.Campaigns = append(network.Campaigns, *campaign)
	}

	sources := make([]HierarchySource, 0, len(networks))
	for sourceName, byNetwork := range networks {
		source := HierarchySource{Source: sourceName}
		for _, network := range byNetwork {
			sort.SliceStable(network.Campaigns, func(i, j int) bool {
				if network.Campaigns[i].DisplayOrder != network.Campaigns[j].DisplayOrder {
					return network.Campaigns[i].DisplayOrder < network.Campaigns[j].DisplayOrder
				}
				if network.Campaigns[i].CampaignID != network.Campaigns[j].CampaignID {
					return network.Campaigns[i].CampaignID < network.Campaigns[j].CampaignID
				}
				return network.Campaigns[i].Platform < network.Campaigns[j].Platform
			})
			for i := range network.Campaigns {
				network.Totals.addTotals(&network.Campaigns[i].Totals)
			}
			network.Totals.deriveRates()
			source.Networks = append(source.Networks, *network)
		}
		sort.SliceStable(source.Networks, func(i, j int) bool {
			return source.Networks[i].Network < source.Networks[j].Network
		})
		for i := range source.Networks {
			source.Totals.addTotals(&source.Networks[i].Totals)
		}
		source.Totals.deriveRates()
		sources = append(sources, source)
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Source < sources[j].Source
	})
	return sources
}

func sourceLabel(row *UnifiedRow) string {
	if row.PrettySource != "" {
		return row.PrettySource
	}
	return row.Platform
}

// HierarchicalRow is the tree flattened to one row per campaign for
// the dashboard table.
type HierarchicalRow struct {
	Source               string  `json:"source"`
	Network              string  `json:"network"`
	Platform             string  `json:"platform"`
	CampaignID           string  `json:"campaign_id"`
	CampaignName         string  `json:"campaign_name"`
	OriginalCampaignName string  `json:"original_campaign_name"`
	CampaignCategory     string  `json:"campaign_category"`
	CampaignType         string  `json:"campaign_type"`
	MappingID            uint64  `json:"mapping_id,omitempty"`
	DisplayOrder         int     `json:"display_order"`
	IsActive             bool    `json:"is_active"`
	Impressions          int64   `json:"impressions"`
	Clicks               int64   `json:"clicks"`
	Cost                 float64 `json:"cost"`
	Conversions          float64 `json:"conversions"`
	CTR                  float64 `json:"ctr"`
	CostPerClick         float64 `json:"cpc"`
	ConversionRate       float64 `json:"conversion_rate"`
	CostPerConversion    float64 `json:"cost_per_conversion"`
}

// FlattenHierarchy walks the tree in display order and emits one row
// per campaign carrying its resolved source and network labels.
func FlattenHierarchy(sources []HierarchySource) []HierarchicalRow {
	flat := make([]HierarchicalRow, 0)
	for _, source := range sources {
		for _, network := range source.Networks {
			for _, campaign := range network.Campaigns {
				flat = append(flat, HierarchicalRow{
					Source:               source.Source,
					Network:              network.Network,
					Platform:             campaign.Platform,
					CampaignID:           campaign.CampaignID,
					CampaignName:         campaign.CampaignName,
					OriginalCampaignName: campaign.OriginalCampaignName,
					CampaignCategory:     campaign.CampaignCategory,
					CampaignType:         campaign.CampaignType,
					MappingID:            campaign.MappingID,
					DisplayOrder:         campaign.DisplayOrder,
					IsActive:             campaign.IsActive,
					Impressions:          campaign.Totals.Impressions,
					Clicks:               campaign.Totals.Clicks,
					Cost:                 campaign.Totals.Cost,
					Conversions:          campaign.Totals.Conversions,
					CTR:                  campaign.Totals.CTR,
					CostPerClick:         campaign.Totals.CostPerClick,
					ConversionRate:       campaign.Totals.ConversionRate,
					CostPerConversion:    campaign.Totals.CostPerConversion,
				})
			}
		}
	}
	return flat
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleRows() []UnifiedRow {
	rows := []UnifiedRow{
		{Platform: SourceGoogleAds, Network: "Search", Date: "2024-01-01",
			CampaignID: "1", CampaignName: "Solar Search", PrettySource: "Google", PrettyNetwork: "Paid Search",
			DisplayOrder: 2, MappingActive: true,
			Impressions: 100, Clicks: 10, Cost: 5, Conversions: 1},
		{Platform: SourceGoogleAds, Network: "Search", Date: "2024-01-02",
			CampaignID: "1", CampaignName: "Solar Search", PrettySource: "Google", PrettyNetwork: "Paid Search",
			DisplayOrder: 2, MappingActive: true,
			Impressions: 300, Clicks: 30, Cost: 15, Conversions: 2},
		{Platform: SourceGoogleAds, Network: "Search", Date: "2024-01-01",
			CampaignID: "2", CampaignName: "Roofing Search", PrettySource: "Google", PrettyNetwork: "Paid Search",
			DisplayOrder: 1, MappingActive: true,
			Impressions: 50, Clicks: 5, Cost: 2, Conversions: 0},
		{Platform: SourceBingAds, Network: "Audience", Date: "2024-01-01",
			CampaignID: "9", CampaignName: "Bing Audience", PrettySource: "Bing", PrettyNetwork: "Audience",
			DisplayOrder: 1, MappingActive: true,
			Impressions: 10, Clicks: 1, Cost: 1, Conversions: 0},
	}
	return rows
}

func TestBuildHierarchyTotalsConsistency(t *testing.T) {
	tree := BuildHierarchy(sampleRows(), false)
	assert.Len(t, tree, 2)

	for _, source := range tree {
		var sourceImpressions, sourceClicks int64
		var sourceCost, sourceConversions float64
		for _, network := range source.Networks {
			var networkImpressions, networkClicks int64
			var networkCost, networkConversions float64
			for _, campaign := range network.Campaigns {
				networkImpressions += campaign.Totals.Impressions
				networkClicks += campaign.Totals.Clicks
				networkCost += campaign.Totals.Cost
				networkConversions += campaign.Totals.Conversions
			}
			assert.Equal(t, networkImpressions, network.Totals.Impressions)
			assert.Equal(t, networkClicks, network.Totals.Clicks)
			assert.Equal(t, networkCost, network.Totals.Cost)
			assert.Equal(t, networkConversions, network.Totals.Conversions)

			sourceImpressions += network.Totals.Impressions
			sourceClicks += network.Totals.Clicks
			sourceCost += network.Totals.Cost
			sourceConversions += network.Totals.Conversions
		}
		assert.Equal(t, sourceImpressions, source.Totals.Impressions)
		assert.Equal(t, sourceClicks, source.Totals.Clicks)
		assert.Equal(t, sourceCost, source.Totals.Cost)
		assert.Equal(t, sourceConversions, source.Totals.Conversions)
	}
}

func TestBuildHierarchyCampaignAggregationAndOrdering(t *testing.T) {
	tree := BuildHierarchy(sampleRows(), false)

	var google *HierarchySource
	for i := range tree {
		if tree[i].Source == "Google" {
			google = &tree[i]
		}
	}
	assert.NotNil(t, google)
	assert.Len(t, google.Networks, 1)

	network := google.Networks[0]
	assert.Equal(t, "Paid Search", network.Network)
	assert.Len(t, network.Campaigns, 2)

	// display_order ascending: Roofing (1) before Solar (2).
	assert.Equal(t, "Roofing Search", network.Campaigns[0].CampaignName)
	assert.Equal(t, "Solar Search", network.Campaigns[1].CampaignName)

	// Campaign rows aggregate across the date range.
	solar := network.Campaigns[1]
	assert.Equal(t, int64(400), solar.Totals.Impressions)
	assert.Equal(t, int64(40), solar.Totals.Clicks)
	assert.Equal(t, float64(20), solar.Totals.Cost)
	assert.Equal(t, 0.1, solar.Totals.CTR)
}

func TestBuildHierarchySharedExternalIDAcrossPlatforms(t *testing.T) {
	// Two platforms reuse external id "123" and both map to the same
	// pretty source and network. Grouping is cosmetic; the campaigns
	// stay separate with their own totals.
	rows := []UnifiedRow{
		{Platform: SourceGoogleAds, Network: "Search", Date: "2024-01-01",
			CampaignID: "123", CampaignName: "Google Solar",
			PrettySource: "All Ads", PrettyNetwork: "Paid Search",
			DisplayOrder: 1, MappingActive: true,
			Impressions: 100, Clicks: 10, Cost: 5},
		{Platform: SourceBingAds, Network: "Search", Date: "2024-01-01",
			CampaignID: "123", CampaignName: "Bing Solar",
			PrettySource: "All Ads", PrettyNetwork: "Paid Search",
			DisplayOrder: 1, MappingActive: true,
			Impressions: 40, Clicks: 4, Cost: 2},
	}

	tree := BuildHierarchy(rows, false)
	assert.Len(t, tree, 1)
	assert.Len(t, tree[0].Networks, 1)

	campaigns := tree[0].Networks[0].Campaigns
	assert.Len(t, campaigns, 2)
	assert.Equal(t, SourceBingAds, campaigns[0].Platform)
	assert.Equal(t, int64(40), campaigns[0].Totals.Impressions)
	assert.Equal(t, SourceGoogleAds, campaigns[1].Platform)
	assert.Equal(t, int64(100), campaigns[1].Totals.Impressions)

	// The network still totals both.
	assert.Equal(t, int64(140), tree[0].Networks[0].Totals.Impressions)
}

func TestBuildHierarchyOrderingTieBreaksOnCampaignID(t *testing.T) {
	rows := []UnifiedRow{
		{Platform: SourceGoogleAds, CampaignID: "b", CampaignName: "B", Network: "Search",
			DisplayOrder: 1, MappingActive: true, Date: "2024-01-01"},
		{Platform: SourceGoogleAds, CampaignID: "a", CampaignName: "A", Network: "Search",
			DisplayOrder: 1, MappingActive: true, Date: "2024-01-01"},
	}
	tree := BuildHierarchy(rows, false)
	campaigns := tree[0].Networks[0].Campaigns
	assert.Equal(t, "a", campaigns[0].CampaignID)
	assert.Equal(t, "b", campaigns[1].CampaignID)
}

func TestBuildHierarchyArchivedFiltering(t *testing.T) {
	rows := []UnifiedRow{
		{Platform: SourceGoogleAds, CampaignID: "1", CampaignName: "Active", Network: "Search",
			PrettyNetwork: "Search", MappingActive: true, Date: "2024-01-01", Impressions: 10},
		{Platform: SourceGoogleAds, CampaignID: "2", CampaignName: "Archived", Network: "Display",
			PrettyNetwork: "Display", MappingActive: false, Date: "2024-01-01", Impressions: 99},
	}

	// Default view drops archived campaigns and the network they empty.
	tree := BuildHierarchy(rows, false)
	assert.Len(t, tree, 1)
	assert.Len(t, tree[0].Networks, 1)
	assert.Equal(t, "Search", tree[0].Networks[0].Network)
	assert.Equal(t, int64(10), tree[0].Totals.Impressions)

	// Archived view retains them.
	tree = BuildHierarchy(rows, true)
	assert.Len(t, tree[0].Networks, 2)
	assert.Equal(t, int64(109), tree[0].Totals.Impressions)
}

func TestFlattenHierarchy(t *testing.T) {
	tree := BuildHierarchy(sampleRows(), false)
	flat := FlattenHierarchy(tree)
	assert.Len(t, flat, 3)

	for _, row := range flat {
		assert.NotEmpty(t, row.Source)
		assert.NotEmpty(t, row.Network)
		assert.NotEmpty(t, row.CampaignName)
	}

	// Bing sorts before Google; within Google the display order holds.
	assert.Equal(t, "Bing", flat[0].Source)
	assert.Equal(t, "Roofing Search", flat[1].CampaignName)
	assert.Equal(t, "Solar Search", flat[2].CampaignName)
}

func TestBuildHierarchyEmptyInput(t *testing.T) {
	tree := BuildHierarchy(nil, false)
	assert.Empty(t, tree)
	assert.Empty(t, FlattenHierarchy(tree))
}

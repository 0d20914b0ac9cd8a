package postgres

import (
	"adboard/model/model"
)

// UnifiedMetrics projects every platform's facts into the common row
// shape, resolves pretty identities through the mapping catalog, and
// unions the results. With Rollup set, rows are grouped by (platform,
// network, campaign, date) with summed metrics and guarded derived
// rates. Date filters are inclusive on both ends; omitting both yields
// all-time data.
//
// Only active mappings resolve here. An archived mapping counts as
// unresolved, so its campaign keeps the raw name, matching its listing
// as unmapped.
func (store *Store) UnifiedMetrics(filter model.MetricsFilter) ([]model.UnifiedRow, error) {
	mappingsByKey, err := store.activeMappingIndex()
	if err != nil {
		return nil, err
	}
	return store.unifiedRows(filter, mappingsByKey)
}

func (store *Store) unifiedRows(filter model.MetricsFilter, mappingsByKey map[string]*model.CampaignMapping) ([]model.UnifiedRow, error) {
	rows := make([]model.UnifiedRow, 0)
	for _, platform := range model.KnownSourceSystems {
		if !filter.MatchesSource(platform) {
			continue
		}
		platformRows, err := store.platformRows(platform, filter)
		if err != nil {
			return nil, err
		}
		rows = append(rows, platformRows...)
	}

	for i := range rows {
		rows[i].ApplyMapping(mappingsByKey[softKey(rows[i].Platform, rows[i].CampaignID)])
	}

	if filter.Rollup {
		return model.RollupUnifiedRows(rows), nil
	}
	return rows, nil
}

func (store *Store) platformRows(platform string, filter model.MetricsFilter) ([]model.UnifiedRow, error) {
	query := store.db
	start, end := filter.DateBounds()
	if start != "" {
		query = query.Where("date >= ?", start)
	}
	if end != "" {
		query = query.Where("date <= ?", end)
	}

	rows := make([]model.UnifiedRow, 0)
	switch platform {
	case model.SourceGoogleAds:
		facts := make([]model.GoogleAdsFact, 0)
		if err := query.Find(&facts).Error; err != nil {
			return nil, asStorageError(err, "read google ads facts")
		}
		for i := range facts {
			rows = append(rows, facts[i].ToUnifiedRow())
		}
	case model.SourceBingAds:
		facts := make([]model.BingAdsFact, 0)
		if err := query.Find(&facts).Error; err != nil {
			return nil, asStorageError(err, "read bing ads facts")
		}
		for i := range facts {
			rows = append(rows, facts[i].ToUnifiedRow())
		}
	case model.SourceRedTrack:
		facts := make([]model.RedTrackFact, 0)
		if err := query.Find(&facts).Error; err != nil {
			return nil, asStorageError(err, "read redtrack facts")
		}
		for i := range facts {
			rows = append(rows, facts[i].ToUnifiedRow())
		}
	case model.SourceMatomo:
		facts := make([]model.MatomoFact, 0)
		if err := query.Find(&facts).Error; err != nil {
			return nil, asStorageError(err, "read matomo facts")
		}
		for i := range facts {
			rows = append(rows, facts[i].ToUnifiedRow())
		}
	}
	return rows, nil
}

// HierarchicalCampaigns runs the aggregation and assembles the
// flattened source→network→campaign rows for the dashboard. Unlike
// the flat endpoint it resolves through archived mappings too, so the
// archived view renders pretty names; the tree decides visibility.
func (store *Store) HierarchicalCampaigns(filter model.MetricsFilter, includeArchived bool) ([]model.HierarchicalRow, error) {
	mappingsByKey, err := store.mappingIndex()
	if err != nil {
		return nil, err
	}
	filter.Rollup = false
	rows, err := store.unifiedRows(filter, mappingsByKey)
	if err != nil {
		return nil, err
	}
	tree := model.BuildHierarchy(rows, includeArchived)
	return model.FlattenHierarchy(tree), nil
}

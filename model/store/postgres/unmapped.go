package postgres

import (
	U "adboard/util"
	"adboard/model/model"
	"sort"
)

type observedCampaign struct {
	CampaignID   string
	CampaignName string
	Network      string
}

// ListUnmapped computes the distinct campaigns observed across all
// fact tables minus those with a resolvable active mapping. Recomputed
// fully on every call; fact volume is small and freshness matters more
// than cost. Ordering is stable by (source_system, external id) so UI
// diffs stay minimal across refreshes.
func (store *Store) ListUnmapped(sourceSystem string) ([]model.UnmappedCampaign, error) {
	mappingsByKey, err := store.activeMappingIndex()
	if err != nil {
		return nil, err
	}

	filter := ""
	if sourceSystem != "" {
		canonical, ok := model.CanonicalSourceSystem(sourceSystem)
		if !ok {
			return []model.UnmappedCampaign{}, nil
		}
		filter = canonical
	}

	unmapped := make([]model.UnmappedCampaign, 0)
	for _, platform := range model.KnownSourceSystems {
		if filter != "" && filter != platform {
			continue
		}
		observed, err := store.distinctFactCampaigns(platform)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool)
		for _, campaign := range observed {
			// Comparison always on trimmed text; fact ids drift
			// between numeric and text representations upstream.
			externalKey := U.NormalizeExternalID(campaign.CampaignID)
			if externalKey == "" || seen[externalKey] {
				continue
			}
			seen[externalKey] = true
			if _, mapped := mappingsByKey[softKey(platform, externalKey)]; mapped {
				continue
			}
			unmapped = append(unmapped, model.UnmappedCampaign{
				SourceSystem:       platform,
				ExternalCampaignID: externalKey,
				CampaignName:       campaign.CampaignName,
				Network:            campaign.Network,
			})
		}
	}

	sort.SliceStable(unmapped, func(i, j int) bool {
		if unmapped[i].SourceSystem != unmapped[j].SourceSystem {
			return unmapped[i].SourceSystem < unmapped[j].SourceSystem
		}
		return unmapped[i].ExternalCampaignID < unmapped[j].ExternalCampaignID
	})
	return unmapped, nil
}

func (store *Store) distinctFactCampaigns(platform string) ([]observedCampaign, error) {
	table, ok := factTableForPlatform(platform)
	if !ok {
		return nil, nil
	}
	observed := make([]observedCampaign, 0)
	err := store.db.Table(table).
		Select("campaign_id, MAX(campaign_name) AS campaign_name, MAX(network) AS network").
		Group("campaign_id").
		Scan(&observed).Error
	if err != nil {
		return nil, asStorageError(err, "distinct fact campaigns for "+platform)
	}
	return observed, nil
}

func factTableForPlatform(platform string) (string, bool) {
	switch platform {
	case model.SourceGoogleAds:
		return model.GoogleAdsFact{}.TableName(), true
	case model.SourceBingAds:
		return model.BingAdsFact{}.TableName(), true
	case model.SourceRedTrack:
		return model.RedTrackFact{}.TableName(), true
	case model.SourceMatomo:
		return model.MatomoFact{}.TableName(), true
	}
	return "", false
}

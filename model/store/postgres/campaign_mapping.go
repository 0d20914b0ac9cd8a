package postgres

import (
	U "adboard/util"
	"adboard/model/model"

	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"
)

// ResolveMapping performs the soft-key lookup: case-insensitive
// source, trimmed external id. Returns (nil, nil) when no active
// mapping exists — that is the unmapped signal and callers must not
// fabricate a default.
func (store *Store) ResolveMapping(sourceSystem, externalCampaignID string) (*model.CampaignMapping, error) {
	sourceKey, ok := model.CanonicalSourceSystem(sourceSystem)
	if !ok {
		return nil, nil
	}
	externalKey := U.NormalizeExternalID(externalCampaignID)

	var mapping model.CampaignMapping
	err := store.db.Where("source_key = ? AND external_key = ? AND is_active = ?",
		sourceKey, externalKey, true).First(&mapping).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, asStorageError(err, "resolve mapping")
	}
	return &mapping, nil
}

// UpsertMapping creates or updates the mapping for the input's soft
// key. At most one active mapping exists per normalized
// (source_system, external_campaign_id) at any time: the table keeps
// one row per soft key behind a unique index, and a conflicting
// concurrent insert is retried once as a lookup-then-update before
// surfacing ConflictError.
func (store *Store) UpsertMapping(input *model.CampaignMappingInput) (*model.CampaignMapping, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	input.ApplyDefaults()

	sourceKey, _ := model.CanonicalSourceSystem(input.SourceSystem)
	externalKey := U.NormalizeExternalID(input.ExternalCampaignID)
	logCtx := log.WithFields(log.Fields{"source_key": sourceKey, "external_key": externalKey})

	mapping, err := store.upsertMappingOnce(input, sourceKey, externalKey)
	if err != nil && model.IsConflictError(err) {
		logCtx.Warn("Mapping upsert hit a concurrent insert. Retrying as update.")
		mapping, err = store.upsertMappingOnce(input, sourceKey, externalKey)
	}
	if err != nil {
		logCtx.WithError(err).Error("Failed to upsert campaign mapping.")
		return nil, err
	}
	return mapping, nil
}

func (store *Store) upsertMappingOnce(input *model.CampaignMappingInput,
	sourceKey, externalKey string) (*model.CampaignMapping, error) {

	var existing model.CampaignMapping
	err := store.db.Where("source_key = ? AND external_key = ?",
		sourceKey, externalKey).First(&existing).Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		return nil, asStorageError(err, "lookup mapping for upsert")
	}

	if gorm.IsRecordNotFoundError(err) {
		mapping := model.CampaignMapping{
			SourceSystem:         input.SourceSystem,
			ExternalCampaignID:   input.ExternalCampaignID,
			SourceKey:            sourceKey,
			ExternalKey:          externalKey,
			OriginalCampaignName: input.OriginalCampaignName,
			PrettyCampaignName:   input.PrettyCampaignName,
			CampaignCategory:     input.CampaignCategory,
			CampaignType:         input.CampaignType,
			Network:              input.Network,
			PrettyNetwork:        input.PrettyNetwork,
			PrettySource:         input.PrettySource,
			DisplayOrder:         store.nextDisplayOrder(sourceKey, input.Network),
			IsActive:             true,
		}
		if err := store.db.Create(&mapping).Error; err != nil {
			if IsDuplicateRecordError(err) {
				return nil, &model.ConflictError{Message: "mapping already exists for this campaign"}
			}
			return nil, asStorageError(err, "create mapping")
		}
		return &mapping, nil
	}

	// Identity fields other than the soft key never change on update;
	// the row is re-activated so an upsert over an archived mapping
	// restores it.
	updates := map[string]interface{}{
		"original_campaign_name": input.OriginalCampaignName,
		"pretty_campaign_name":   input.PrettyCampaignName,
		"campaign_category":      input.CampaignCategory,
		"campaign_type":          input.CampaignType,
		"network":                input.Network,
		"pretty_network":         input.PrettyNetwork,
		"pretty_source":          input.PrettySource,
		"is_active":              true,
	}
	if input.OriginalCampaignName == "" {
		delete(updates, "original_campaign_name")
	}
	err = store.db.Model(&model.CampaignMapping{}).Where("id = ?", existing.ID).
		Updates(updates).Error
	if err != nil {
		return nil, asStorageError(err, "update mapping")
	}

	var updated model.CampaignMapping
	if err := store.db.First(&updated, existing.ID).Error; err != nil {
		return nil, asStorageError(err, "reload mapping after update")
	}
	return &updated, nil
}

// nextDisplayOrder appends new mappings after their (source, network)
// siblings. Display order is only ever compared within one sibling
// set.
func (store *Store) nextDisplayOrder(sourceKey, network string) int {
	var result struct{ MaxOrder int }
	err := store.db.Model(&model.CampaignMapping{}).
		Select("COALESCE(MAX(display_order), 0) AS max_order").
		Where("source_key = ? AND network = ?", sourceKey, network).
		Scan(&result).Error
	if err != nil {
		log.WithError(err).Warn("Failed to read sibling display order. Appending at 1.")
		return 1
	}
	return result.MaxOrder + 1
}

// GetMappings returns active mappings, optionally filtered by source
// system, ordered for stable UI diffs.
func (store *Store) GetMappings(sourceSystem string) ([]model.CampaignMapping, error) {
	mappings := make([]model.CampaignMapping, 0)
	query := store.db.Where("is_active = ?", true)
	if sourceSystem != "" {
		sourceKey, ok := model.CanonicalSourceSystem(sourceSystem)
		if !ok {
			return mappings, nil
		}
		query = query.Where("source_key = ?", sourceKey)
	}
	err := query.Order("source_key, network, display_order, id").Find(&mappings).Error
	if err != nil {
		return nil, asStorageError(err, "get mappings")
	}
	return mappings, nil
}

// SetMappingActive flips the archive state. Idempotent: setting the
// current state again is a no-op success.
func (store *Store) SetMappingActive(mappingID uint64, isActive bool) error {
	var mapping model.CampaignMapping
	err := store.db.First(&mapping, mappingID).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &model.NotFoundError{Entity: "campaign mapping", ID: mappingID}
		}
		return asStorageError(err, "load mapping for archive")
	}
	if mapping.IsActive == isActive {
		return nil
	}
	// Archived campaigns keep their display_order so unarchiving
	// restores their position among siblings.
	err = store.db.Model(&mapping).Update("is_active", isActive).Error
	if err != nil {
		return asStorageError(err, "set mapping active")
	}
	return nil
}

// ArchiveMapping soft-deletes; history is preserved.
func (store *Store) ArchiveMapping(mappingID uint64) error {
	return store.SetMappingActive(mappingID, false)
}

// ReorderMappings applies a full replacement of display_order values
// in one transaction. If any referenced mapping id does not exist,
// nothing is applied.
func (store *Store) ReorderMappings(orders []model.CampaignOrder) error {
	if len(orders) == 0 {
		return nil
	}
	tx := store.db.Begin()
	if tx.Error != nil {
		return asStorageError(tx.Error, "begin reorder transaction")
	}
	for _, order := range orders {
		result := tx.Model(&model.CampaignMapping{}).Where("id = ?", order.ID).
			Update("display_order", order.DisplayOrder)
		if result.Error != nil {
			tx.Rollback()
			return asStorageError(result.Error, "apply display order")
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			return &model.NotFoundError{Entity: "campaign mapping", ID: order.ID}
		}
	}
	if err := tx.Commit().Error; err != nil {
		return asStorageError(err, "commit reorder transaction")
	}
	return nil
}

// activeMappingIndex loads active mappings keyed by soft key for the
// read-path joins.
func (store *Store) activeMappingIndex() (map[string]*model.CampaignMapping, error) {
	mappings := make([]model.CampaignMapping, 0)
	err := store.db.Where("is_active = ?", true).Find(&mappings).Error
	if err != nil {
		return nil, asStorageError(err, "load active mappings")
	}
	index := make(map[string]*model.CampaignMapping, len(mappings))
	for i := range mappings {
		index[softKey(mappings[i].SourceKey, mappings[i].ExternalKey)] = &mappings[i]
	}
	return index, nil
}

// mappingIndex loads every mapping, archived included.
func (store *Store) mappingIndex() (map[string]*model.CampaignMapping, error) {
	mappings := make([]model.CampaignMapping, 0)
	err := store.db.Find(&mappings).Error
	if err != nil {
		return nil, asStorageError(err, "load mappings")
	}
	index := make(map[string]*model.CampaignMapping, len(mappings))
	for i := range mappings {
		index[softKey(mappings[i].SourceKey, mappings[i].ExternalKey)] = &mappings[i]
	}
	return index, nil
}

func softKey(sourceKey, externalKey string) string {
	return sourceKey + "\x00" + externalKey
}

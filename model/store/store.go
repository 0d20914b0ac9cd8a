package store

import (
	"adboard/model/model"
	storePostgres "adboard/model/store/postgres"

	"github.com/jinzhu/gorm"
)

// Store is the catalog, detector and aggregator surface the handlers
// consume. One relational implementation exists; the interface keeps
// handlers testable against it without reaching into gorm.
type Store interface {
	ResolveMapping(sourceSystem, externalCampaignID string) (*model.CampaignMapping, error)
	UpsertMapping(input *model.CampaignMappingInput) (*model.CampaignMapping, error)
	GetMappings(sourceSystem string) ([]model.CampaignMapping, error)
	ArchiveMapping(mappingID uint64) error
	SetMappingActive(mappingID uint64, isActive bool) error
	ReorderMappings(orders []model.CampaignOrder) error

	ListUnmapped(sourceSystem string) ([]model.UnmappedCampaign, error)
	UnifiedMetrics(filter model.MetricsFilter) ([]model.UnifiedRow, error)
	HierarchicalCampaigns(filter model.MetricsFilter, includeArchived bool) ([]model.HierarchicalRow, error)

	UpsertFacts(platform string, inputs []model.FactRowInput) (int, error)
	GetCanonicalCampaigns(sourceSystem string) ([]model.CanonicalCampaign, error)
	GetLocations() ([]model.Location, error)
	CreateLocation(location *model.Location) error
	LinkCampaignLocation(campaignID, locationID uint64, isPrimary bool) error
}

// New builds the relational store around an injected connection.
func New(db *gorm.DB) Store {
	return storePostgres.NewStore(db)
}

// Migrate creates the schema on the given connection.
func Migrate(db *gorm.DB) error {
	return storePostgres.Migrate(db)
}

package postgres

import (
	"strings"

	"adboard/model/model"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

// Store implements the catalog, detector and aggregator operations
// against a shared relational database. Constructed with its *gorm.DB
// rather than reaching into process-wide state so tests and callers
// control the lifecycle.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the relational schema, including the unique index on
// the normalized mapping soft key that backs upsert races.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Location{},
		&model.CanonicalCampaign{},
		&model.CampaignLocation{},
		&model.CampaignMapping{},
		&model.GoogleAdsFact{},
		&model.BingAdsFact{},
		&model.RedTrackFact{},
		&model.MatomoFact{},
	).Error
	if err != nil {
		return errors.Wrap(err, "auto migrate failed")
	}
	return nil
}

func IsDuplicateRecordError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "statement_timeout") ||
		strings.Contains(msg, "bad connection")
}

// asStorageError translates driver failures into the typed taxonomy.
// Timeouts and connection failures become StorageUnavailableError so
// the caller's retry policy can see them.
func asStorageError(err error, context string) error {
	if err == nil {
		return nil
	}
	if isConnectionError(err) {
		return &model.StorageUnavailableError{Err: err}
	}
	return errors.Wrap(err, context)
}

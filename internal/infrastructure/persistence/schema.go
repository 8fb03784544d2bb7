package persistence

import (
	"errors"

	"github.com/spares/backend/internal/domain/catalog"
	"github.com/spares/backend/internal/domain/inventory"
	"github.com/spares/backend/internal/domain/reference"
	"github.com/spares/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency order.
// Postgres schemas come from the SQL migrations; AutoMigrate over these
// models is used for sqlite-backed tests and local experiments.
func Models() []any {
	return []any{
		&reference.Manufacturer{},
		&reference.Location{},
		&reference.EquipmentModel{},
		&reference.Equipment{},
		&reference.Actor{},
		&catalog.PartType{},
		&catalog.CompatibleModel{},
		&inventory.InventoryRecord{},
		&inventory.Transaction{},
	}
}

// AutoMigrate creates or updates tables for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// translateError maps gorm errors to domain errors
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.NewReferenceProtectedError("Resource is still referenced by other records")
	default:
		return err
	}
}

package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/catalog"
	"github.com/spares/backend/internal/domain/inventory"
	"github.com/spares/backend/internal/domain/reference"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB opens a migrated in-memory database. The pool is limited to
// one connection so every test sees the same database and transactions
// serialize.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), newGormConfig(logger.Default.LogMode(logger.Silent)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

type seed struct {
	manufacturer *reference.Manufacturer
	location     *reference.Location
	model        *reference.EquipmentModel
	partType     *catalog.PartType
}

func seedCatalog(t *testing.T, db *gorm.DB) seed {
	t.Helper()

	manufacturer, err := reference.NewManufacturer("Dell", "dell-"+uuid.NewString()[:8])
	require.NoError(t, err)
	require.NoError(t, db.Create(manufacturer).Error)

	location, err := reference.NewLocation("Rack A", "rack-a-"+uuid.NewString()[:8], "")
	require.NoError(t, err)
	require.NoError(t, db.Create(location).Error)

	model, err := reference.NewEquipmentModel(manufacturer.ID, "R740", "r740-"+uuid.NewString()[:8])
	require.NoError(t, err)
	require.NoError(t, db.Create(model).Error)

	partType, err := catalog.NewPartType(catalog.PartTypeAttributes{
		Name:               "750W PSU",
		Slug:               "750w-psu-" + uuid.NewString()[:8],
		ManufacturerID:     &manufacturer.ID,
		PartNumber:         "PSU-" + uuid.NewString()[:8],
		Category:           catalog.CategoryPSU,
		CompatibleModelIDs: []uuid.UUID{model.ID},
	})
	require.NoError(t, err)
	require.NoError(t, NewGormPartTypeRepository(db).Save(t.Context(), partType))

	return seed{manufacturer: manufacturer, location: location, model: model, partType: partType}
}

func seedRecord(t *testing.T, db *gorm.DB, partTypeID, locationID uuid.UUID, onHand, reserved, minimum int) *inventory.InventoryRecord {
	t.Helper()

	record, err := inventory.NewInventoryRecord(partTypeID, locationID, inventory.RecordSettings{MinimumQuantity: minimum})
	require.NoError(t, err)
	record.QuantityOnHand = onHand
	record.QuantityReserved = reserved
	require.NoError(t, NewGormInventoryRecordRepository(db).Save(t.Context(), record))
	return record
}

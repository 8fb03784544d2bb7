package integration

import (
	"net/http"
	"testing"

	catalogapp "github.com/spares/backend/internal/application/catalog"
	inventoryapp "github.com/spares/backend/internal/application/inventory"
	referenceapp "github.com/spares/backend/internal/application/reference"
	"github.com/spares/backend/internal/domain/shared"
	"github.com/spares/backend/internal/infrastructure/event"
	"github.com/spares/backend/internal/infrastructure/persistence"
	"github.com/spares/backend/internal/interfaces/http/handler"
	"github.com/spares/backend/internal/interfaces/http/middleware"
	"github.com/spares/backend/internal/interfaces/http/router"
	"github.com/spares/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	middleware.SetupValidator()
}

// ledgerServer is the full HTTP stack over a migrated postgres database
type ledgerServer struct {
	*testutil.APIClient
	DB     *TestDB
	Ledger *inventoryapp.LedgerService
	Bus    *event.InMemoryEventBus
}

func newLedgerServer(t *testing.T, tdb *TestDB, handlers ...shared.EventHandler) *ledgerServer {
	t.Helper()

	log := zaptest.NewLogger(t)
	repos := persistence.NewRepositorySet(tdb.DB)

	bus := event.NewInMemoryEventBus(log)
	for _, h := range handlers {
		bus.Subscribe(h, h.EventTypes()...)
	}
	require.NoError(t, bus.Start(t.Context()))

	ledger := inventoryapp.NewLedgerService(inventoryapp.LedgerServiceConfig{
		Records:      repos.Records,
		Transactions: repos.Transactions,
		PartTypes:    repos.PartTypes,
		Locations:    repos.Locations,
		Actors:       repos.Actors,
		Equipment:    repos.Equipment,
		TxScope:      persistence.NewGormTransactionScope(tdb.DB),
		Logger:       log,
	})
	ledger.SetEventPublisher(bus)

	engine, err := router.NewEngine(router.EngineConfig{Logger: log}, router.Handlers{
		PartTypes:    handler.NewPartTypeHandler(catalogapp.NewPartTypeService(repos.PartTypes, repos.Records, repos.Manufacturers, repos.EquipmentModels)),
		Inventory:    handler.NewInventoryHandler(ledger),
		Transactions: handler.NewTransactionHandler(ledger),
		References:   handler.NewReferenceHandler(referenceapp.NewReferenceService(repos, persistence.NewGormReferenceScope(tdb.DB), log)),
		Health:       handler.NewHealthHandler(&persistence.Database{DB: tdb.DB}, "integration"),
	})
	require.NoError(t, err)

	return &ledgerServer{
		APIClient: testutil.NewAPIClient(engine),
		DB:        tdb,
		Ledger:    ledger,
		Bus:       bus,
	}
}

type idBody struct {
	ID string `json:"id"`
}

func (s *ledgerServer) create(t *testing.T, path string, body any) string {
	t.Helper()
	resp := s.Do(t, http.MethodPost, "/api/v1"+path, body).RequireStatus(t, http.StatusCreated)
	return testutil.Data[idBody](t, resp).ID
}

type catalogFixture struct {
	ManufacturerID string
	LocationID     string
	ModelID        string
	PartTypeID     string
	EquipmentID    string
	ActorID        string
}

func (s *ledgerServer) seedCatalog(t *testing.T) catalogFixture {
	t.Helper()

	var f catalogFixture
	f.ManufacturerID = s.create(t, "/manufacturers", map[string]any{"name": "Supermicro", "slug": "supermicro"})
	f.LocationID = s.create(t, "/locations", map[string]any{"name": "DC1 Cage 4", "slug": "dc1-cage-4"})
	f.ModelID = s.create(t, "/equipment-models", map[string]any{
		"manufacturer_id": f.ManufacturerID, "model": "SYS-1029P", "slug": "sys-1029p",
	})
	f.PartTypeID = s.create(t, "/part-types", map[string]any{
		"name":                 "32GB DDR4 RDIMM",
		"slug":                 "32gb-ddr4-rdimm",
		"manufacturer_id":      f.ManufacturerID,
		"part_number":          "MEM-DR432L",
		"category":             "ram",
		"unit_cost":            "120.00",
		"compatible_model_ids": []string{f.ModelID},
	})
	f.EquipmentID = s.create(t, "/equipment", map[string]any{
		"name": "hv-17", "model_id": f.ModelID, "location_id": f.LocationID,
	})
	f.ActorID = s.create(t, "/actors", map[string]any{"username": "oncall", "display_name": "On-call tech"})
	return f
}

func (s *ledgerServer) newRecord(t *testing.T, f catalogFixture, initial, minimum int) string {
	t.Helper()
	return s.create(t, "/inventory", map[string]any{
		"part_type_id":     f.PartTypeID,
		"location_id":      f.LocationID,
		"initial_quantity": initial,
		"minimum_quantity": minimum,
		"reorder_quantity": 10,
	})
}

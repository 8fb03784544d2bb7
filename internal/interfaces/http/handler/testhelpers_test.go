package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/spares/backend/internal/application/catalog"
	inventoryapp "github.com/spares/backend/internal/application/inventory"
	referenceapp "github.com/spares/backend/internal/application/reference"
	"github.com/spares/backend/internal/infrastructure/persistence"
	"github.com/spares/backend/internal/interfaces/http/dto"
	"github.com/spares/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testAPI is a gin engine wired to real services over an in-memory sqlite
// database, with the same handler layout the router uses.
type testAPI struct {
	engine *gin.Engine
	db     *gorm.DB
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(db))

	log := zaptest.NewLogger(t)
	repos := persistence.NewRepositorySet(db)

	ledger := inventoryapp.NewLedgerService(inventoryapp.LedgerServiceConfig{
		Records:      repos.Records,
		Transactions: repos.Transactions,
		PartTypes:    repos.PartTypes,
		Locations:    repos.Locations,
		Actors:       repos.Actors,
		Equipment:    repos.Equipment,
		TxScope:      persistence.NewGormTransactionScope(db),
		Logger:       log,
	})
	partTypes := catalogapp.NewPartTypeService(repos.PartTypes, repos.Records, repos.Manufacturers, repos.EquipmentModels)
	references := referenceapp.NewReferenceService(repos, persistence.NewGormReferenceScope(db), log)

	inventoryHandler := NewInventoryHandler(ledger)
	transactionHandler := NewTransactionHandler(ledger)
	partTypeHandler := NewPartTypeHandler(partTypes)
	referenceHandler := NewReferenceHandler(references)

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Actor(middleware.ActorConfig{}))
	api := engine.Group("/api/v1")

	api.GET("/part-types", partTypeHandler.List)
	api.POST("/part-types", partTypeHandler.Create)
	api.GET("/part-types/:id", partTypeHandler.GetByID)
	api.PUT("/part-types/:id", partTypeHandler.Update)
	api.DELETE("/part-types/:id", partTypeHandler.Delete)
	api.GET("/part-types/:id/stock", partTypeHandler.Stock)

	api.GET("/inventory", inventoryHandler.List)
	api.POST("/inventory", inventoryHandler.Create)
	api.GET("/inventory/:id", inventoryHandler.GetByID)
	api.PUT("/inventory/:id", inventoryHandler.Update)
	api.DELETE("/inventory/:id", inventoryHandler.Delete)
	api.POST("/inventory/:id/check-in", inventoryHandler.CheckIn)
	api.POST("/inventory/:id/check-out", inventoryHandler.CheckOut)
	api.POST("/inventory/:id/adjust", inventoryHandler.Adjust)
	api.POST("/inventory/:id/allocate", inventoryHandler.Allocate)
	api.POST("/inventory/:id/deallocate", inventoryHandler.Deallocate)

	api.GET("/transactions", transactionHandler.List)
	api.GET("/transactions/export", transactionHandler.Export)
	api.GET("/transactions/:id", transactionHandler.GetByID)
	api.PATCH("/transactions/:id/notes", transactionHandler.AttachNotes)

	api.GET("/manufacturers", referenceHandler.ListManufacturers)
	api.POST("/manufacturers", referenceHandler.CreateManufacturer)
	api.GET("/manufacturers/:id", referenceHandler.GetManufacturer)
	api.DELETE("/manufacturers/:id", referenceHandler.DeleteManufacturer)
	api.POST("/locations", referenceHandler.CreateLocation)
	api.DELETE("/locations/:id", referenceHandler.DeleteLocation)
	api.POST("/equipment-models", referenceHandler.CreateEquipmentModel)
	api.POST("/equipment", referenceHandler.CreateEquipment)
	api.DELETE("/equipment/:id", referenceHandler.DeleteEquipment)
	api.GET("/actors/:id", referenceHandler.GetActor)
	api.POST("/actors", referenceHandler.CreateActor)
	api.DELETE("/actors/:id", referenceHandler.DeleteActor)

	return &testAPI{engine: engine, db: db}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope and, when out is non-nil, its data field
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()

	var envelope struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return envelope.Response
}

// created posts body to path, expects 201 and returns the new id
func (a *testAPI) created(t *testing.T, path string, body any) string {
	t.Helper()

	w := a.do(t, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		ID string `json:"id"`
	}
	decode(t, w, &out)
	return out.ID
}

type fixture struct {
	manufacturerID string
	locationID     string
	modelID        string
	partTypeID     string
	equipmentID    string
	actorID        string
}

func (a *testAPI) seed(t *testing.T) fixture {
	t.Helper()

	var f fixture
	f.manufacturerID = a.created(t, "/api/v1/manufacturers", map[string]any{"name": "Dell", "slug": "dell"})
	f.locationID = a.created(t, "/api/v1/locations", map[string]any{"name": "Rack A", "slug": "rack-a"})
	f.modelID = a.created(t, "/api/v1/equipment-models", map[string]any{
		"manufacturer_id": f.manufacturerID, "model": "R740", "slug": "r740",
	})
	f.partTypeID = a.created(t, "/api/v1/part-types", map[string]any{
		"name":                 "750W PSU",
		"slug":                 "750w-psu",
		"manufacturer_id":      f.manufacturerID,
		"part_number":          "PSU-750",
		"category":             "psu",
		"unit_cost":            "89.50",
		"compatible_model_ids": []string{f.modelID},
	})
	f.equipmentID = a.created(t, "/api/v1/equipment", map[string]any{
		"name": "db-01", "model_id": f.modelID, "location_id": f.locationID,
	})
	f.actorID = a.created(t, "/api/v1/actors", map[string]any{"username": "jdoe", "display_name": "J. Doe"})
	return f
}

// newRecord creates an inventory record for the fixture part type and returns its id
func (a *testAPI) newRecord(t *testing.T, f fixture, initial, minimum int) string {
	t.Helper()
	return a.created(t, "/api/v1/inventory", map[string]any{
		"part_type_id":     f.partTypeID,
		"location_id":      f.locationID,
		"initial_quantity": initial,
		"minimum_quantity": minimum,
	})
}

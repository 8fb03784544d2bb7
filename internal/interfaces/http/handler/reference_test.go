package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	inventoryapp "github.com/spares/backend/internal/application/inventory"
	referenceapp "github.com/spares/backend/internal/application/reference"
	"github.com/spares/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceHandler(t *testing.T) {
	api := newTestAPI(t)
	f := api.seed(t)

	t.Run("list and get manufacturers", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/manufacturers?search=del", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var items []referenceapp.ManufacturerResponse
		resp := decode(t, w, &items)
		require.Len(t, items, 1)
		assert.Equal(t, int64(1), resp.Meta.Total)

		w = api.do(t, http.MethodGet, "/api/v1/manufacturers/"+f.manufacturerID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var m referenceapp.ManufacturerResponse
		decode(t, w, &m)
		assert.Equal(t, "dell", m.Slug)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/manufacturers", map[string]any{"name": "Dell EMC", "slug": "dell"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid slug", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/locations", map[string]any{"name": "Rack Z", "slug": "rack/z"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("manufacturer in use is protected", func(t *testing.T) {
		w := api.do(t, http.MethodDelete, "/api/v1/manufacturers/"+f.manufacturerID, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "REFERENCE_PROTECTED", decode(t, w, nil).Error.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/manufacturers/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("deleting an actor keeps the ledger", func(t *testing.T) {
		recordID := api.newRecord(t, f, 2, 0)
		w := api.do(t, http.MethodPost, "/api/v1/inventory/"+recordID+"/check-out",
			map[string]any{"quantity": 1, "reason": "Swap", "related_equipment_id": f.equipmentID},
			middleware.HeaderActorID, f.actorID)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var result ledgerBody
		decode(t, w, &result)

		w = api.do(t, http.MethodDelete, "/api/v1/actors/"+f.actorID, nil)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
		w = api.do(t, http.MethodDelete, "/api/v1/equipment/"+f.equipmentID, nil)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		w = api.do(t, http.MethodGet, "/api/v1/actors/"+f.actorID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = api.do(t, http.MethodGet, "/api/v1/transactions/"+result.TransactionID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var tx inventoryapp.TransactionResponse
		decode(t, w, &tx)
		assert.Nil(t, tx.ActorID)
		assert.Nil(t, tx.RelatedEquipmentID)
		assert.Equal(t, -1, tx.Quantity)
	})

	t.Run("location with records is protected", func(t *testing.T) {
		w := api.do(t, http.MethodDelete, "/api/v1/locations/"+f.locationID, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

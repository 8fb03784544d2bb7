package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	inventoryapp "github.com/spares/backend/internal/application/inventory"
	"github.com/spares/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerBody struct {
	Message       string                      `json:"message"`
	TransactionID uuid.UUID                   `json:"transaction_id"`
	Inventory     inventoryapp.RecordResponse `json:"inventory"`
}

func TestInventoryHandler_LedgerActions(t *testing.T) {
	api := newTestAPI(t)
	f := api.seed(t)
	recordID := api.newRecord(t, f, 5, 2)
	base := "/api/v1/inventory/" + recordID

	t.Run("check in", func(t *testing.T) {
		w := api.do(t, http.MethodPost, base+"/check-in", map[string]any{"quantity": 5, "reason": "PO 1182"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body ledgerBody
		resp := decode(t, w, &body)
		assert.True(t, resp.Success)
		assert.Equal(t, "Checked in 5 units", body.Message)
		assert.NotEqual(t, uuid.Nil, body.TransactionID)
		assert.Equal(t, 10, body.Inventory.QuantityOnHand)
	})

	t.Run("allocate and deallocate", func(t *testing.T) {
		w := api.do(t, http.MethodPost, base+"/allocate", map[string]any{"quantity": 4, "reason": "Hold for db-01"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var body ledgerBody
		decode(t, w, &body)
		assert.Equal(t, "Allocated 4 units", body.Message)
		assert.Equal(t, 4, body.Inventory.QuantityReserved)
		assert.Equal(t, 6, body.Inventory.QuantityAvailable)

		w = api.do(t, http.MethodPost, base+"/deallocate", map[string]any{"quantity": 1, "reason": "Plan changed"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		decode(t, w, &body)
		assert.Equal(t, "Deallocated 1 units", body.Message)
		assert.Equal(t, 3, body.Inventory.QuantityReserved)
	})

	t.Run("adjust by a signed delta", func(t *testing.T) {
		w := api.do(t, http.MethodPost, base+"/adjust", map[string]any{"quantity": -2, "reason": "Stock count"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var body ledgerBody
		decode(t, w, &body)
		assert.Equal(t, "Adjusted inventory by -2 units", body.Message)
		assert.Equal(t, 8, body.Inventory.QuantityOnHand)

		w = api.do(t, http.MethodPost, base+"/adjust", map[string]any{"quantity": 1, "reason": "Found one"})
		require.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &body)
		assert.Equal(t, "Adjusted inventory by +1 units", body.Message)

		w = api.do(t, http.MethodPost, base+"/adjust", map[string]any{"quantity": 0, "reason": "Count verified"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		decode(t, w, &body)
		assert.Equal(t, "Adjusted inventory by +0 units", body.Message)
		assert.Equal(t, 9, body.Inventory.QuantityOnHand)
		assert.NotEqual(t, uuid.Nil, body.TransactionID)
	})

	t.Run("check out with equipment, actor and notes", func(t *testing.T) {
		w := api.do(t, http.MethodPost, base+"/check-out", map[string]any{
			"quantity":             2,
			"reason":               "Failed PSU",
			"related_equipment_id": f.equipmentID,
			"notes":                "RMA 4411",
		}, middleware.HeaderActorID, f.actorID)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body ledgerBody
		decode(t, w, &body)
		assert.Equal(t, "Checked out 2 units", body.Message)
		assert.Equal(t, 7, body.Inventory.QuantityOnHand)

		w = api.do(t, http.MethodGet, "/api/v1/transactions/"+body.TransactionID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var tx inventoryapp.TransactionResponse
		decode(t, w, &tx)
		assert.Equal(t, "check_out", tx.TransactionType)
		assert.Equal(t, -2, tx.Quantity)
		assert.Equal(t, 9, tx.QuantityBefore)
		assert.Equal(t, 7, tx.QuantityAfter)
		assert.Equal(t, "RMA 4411", tx.Notes)
		require.NotNil(t, tx.ActorID)
		assert.Equal(t, f.actorID, tx.ActorID.String())
		require.NotNil(t, tx.RelatedEquipmentID)
		assert.Equal(t, f.equipmentID, tx.RelatedEquipmentID.String())
	})
}

func TestInventoryHandler_LedgerRejections(t *testing.T) {
	api := newTestAPI(t)
	f := api.seed(t)
	recordID := api.newRecord(t, f, 3, 0)
	base := "/api/v1/inventory/" + recordID

	tests := []struct {
		name     string
		path     string
		body     map[string]any
		headers  []string
		wantCode int
		wantErr  string
	}{
		{"allocate beyond available", "/allocate", map[string]any{"quantity": 4, "reason": "x"}, nil, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
		{"deallocate beyond reserved", "/deallocate", map[string]any{"quantity": 1, "reason": "x"}, nil, http.StatusUnprocessableEntity, "INSUFFICIENT_RESERVATION"},
		{"check out below zero", "/check-out", map[string]any{"quantity": 4, "reason": "x"}, nil, http.StatusUnprocessableEntity, "NEGATIVE_STOCK"},
		{"adjustment without quantity", "/adjust", map[string]any{"reason": "x"}, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"negative check in", "/check-in", map[string]any{"quantity": -1, "reason": "x"}, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing reason", "/check-in", map[string]any{"quantity": 1}, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown actor", "/check-in", map[string]any{"quantity": 1, "reason": "x"}, []string{middleware.HeaderActorID, uuid.NewString()}, http.StatusNotFound, "NOT_FOUND"},
		{"malformed actor header", "/check-in", map[string]any{"quantity": 1, "reason": "x"}, []string{middleware.HeaderActorID, "jdoe"}, http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, base+tt.path, tt.body, tt.headers...)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())

			resp := decode(t, w, nil)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}

	t.Run("rejections leave the record and ledger untouched", func(t *testing.T) {
		w := api.do(t, http.MethodGet, base, nil)
		var record inventoryapp.RecordResponse
		decode(t, w, &record)
		assert.Equal(t, 3, record.QuantityOnHand)
		assert.Zero(t, record.QuantityReserved)

		w = api.do(t, http.MethodGet, "/api/v1/transactions?inventory_record_id="+recordID, nil)
		resp := decode(t, w, nil)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)
	})

	t.Run("unknown record", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/inventory/"+uuid.NewString()+"/check-in", map[string]any{"quantity": 1, "reason": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed record id", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/inventory/not-a-uuid/check-in", map[string]any{"quantity": 1, "reason": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "BAD_REQUEST", decode(t, w, nil).Error.Code)
	})
}

func TestInventoryHandler_Records(t *testing.T) {
	api := newTestAPI(t)
	f := api.seed(t)

	recordID := api.newRecord(t, f, 0, 2)

	t.Run("duplicate part type and location conflicts", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/inventory", map[string]any{
			"part_type_id": f.partTypeID,
			"location_id":  f.locationID,
		})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("low stock filter", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/inventory?low_stock=true", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var records []inventoryapp.RecordResponse
		resp := decode(t, w, &records)
		require.Len(t, records, 1)
		assert.True(t, records[0].IsLowStock)
		assert.Equal(t, int64(1), resp.Meta.Total)

		w = api.do(t, http.MethodGet, "/api/v1/inventory?low_stock=maybe", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update settings keeps quantities", func(t *testing.T) {
		w := api.do(t, http.MethodPut, "/api/v1/inventory/"+recordID, map[string]any{
			"minimum_quantity": 0,
			"reorder_quantity": 5,
			"storage_detail":   "Shelf 3, bin 2",
			"tags":             []string{"hot-spare"},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var record inventoryapp.RecordResponse
		decode(t, w, &record)
		assert.Equal(t, "Shelf 3, bin 2", record.StorageDetail)
		assert.Zero(t, record.QuantityOnHand)
		assert.Zero(t, record.MinimumQuantity)
		assert.Equal(t, 5, record.ReorderQuantity)
	})

	t.Run("record without history can be deleted", func(t *testing.T) {
		w := api.do(t, http.MethodDelete, "/api/v1/inventory/"+recordID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = api.do(t, http.MethodGet, "/api/v1/inventory/"+recordID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("record with history is protected", func(t *testing.T) {
		id := api.newRecord(t, f, 1, 0)
		w := api.do(t, http.MethodDelete, "/api/v1/inventory/"+id, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "REFERENCE_PROTECTED", decode(t, w, nil).Error.Code)
	})
}

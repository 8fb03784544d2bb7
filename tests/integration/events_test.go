package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/spares/backend/internal/domain/inventory"
	"github.com/spares/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerEvents_StockLowAfterCommit(t *testing.T) {
	sink := testutil.NewEventSink(inventory.EventTypeStockLow)
	srv := newLedgerServer(t, NewSharedTestDB(t), sink)
	f := srv.seedCatalog(t)

	recordID := srv.newRecord(t, f, 6, 2)
	testutil.Never(t, 200*time.Millisecond, func() bool { return len(sink.Events("")) > 0 },
		"stock above the minimum raised an event")

	t.Run("check-out to the minimum", func(t *testing.T) {
		resp := srv.action(t, recordID, "check-out", map[string]any{"quantity": 4, "reason": "swap"}).
			RequireStatus(t, http.StatusOK)
		body := testutil.Data[ledgerBody](t, resp)

		got, ok := sink.Await(t, inventory.EventTypeStockLow, 1, 5*time.Second).(*inventory.StockLowEvent)
		require.True(t, ok)
		assert.Equal(t, recordID, got.InventoryRecordID.String())
		require.NotNil(t, got.TransactionID)
		assert.Equal(t, body.TransactionID, *got.TransactionID)
		assert.Equal(t, 2, got.QuantityAvailable)
		assert.True(t, got.NeedsReorder)
	})

	t.Run("check-in above the minimum is quiet", func(t *testing.T) {
		srv.action(t, recordID, "check-in", map[string]any{"quantity": 10, "reason": "delivery"}).
			RequireStatus(t, http.StatusOK)
		testutil.Never(t, 200*time.Millisecond, func() bool { return len(sink.Events("")) > 1 })
	})

	t.Run("allocation counts against availability", func(t *testing.T) {
		srv.action(t, recordID, "allocate", map[string]any{"quantity": 11, "reason": "RMA 7"}).
			RequireStatus(t, http.StatusOK)

		got, ok := sink.Await(t, inventory.EventTypeStockLow, 2, 5*time.Second).(*inventory.StockLowEvent)
		require.True(t, ok)
		assert.Equal(t, 12, got.QuantityOnHand)
		assert.Equal(t, 11, got.QuantityReserved)
		assert.Equal(t, 1, got.QuantityAvailable)
	})

	t.Run("rejected operations publish nothing", func(t *testing.T) {
		srv.action(t, recordID, "check-out", map[string]any{"quantity": 50, "reason": "swap"}).
			RequireStatus(t, http.StatusUnprocessableEntity)
		testutil.Never(t, 200*time.Millisecond, func() bool { return len(sink.Events("")) > 2 })
	})

	t.Run("raising the minimum signals without a ledger entry", func(t *testing.T) {
		srv.Do(t, http.MethodPut, "/api/v1/inventory/"+recordID, map[string]any{
			"minimum_quantity": 20,
			"reorder_quantity": 10,
		}).RequireStatus(t, http.StatusOK)

		got, ok := sink.Await(t, inventory.EventTypeStockLow, 3, 5*time.Second).(*inventory.StockLowEvent)
		require.True(t, ok)
		assert.Nil(t, got.TransactionID)
		assert.Equal(t, 20, got.MinimumQuantity)
		assert.Equal(t, 1, got.QuantityAvailable)
	})
}

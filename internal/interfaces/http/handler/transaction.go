package handler

import (
	"encoding/csv"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/spares/backend/internal/application/inventory"
	"github.com/spares/backend/internal/domain/inventory"
	"github.com/spares/backend/internal/infrastructure/logger"
	"github.com/spares/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const exportPageSize = 100

var exportHeader = []string{
	"id", "occurred_at", "transaction_type", "inventory_record_id", "quantity",
	"quantity_before", "quantity_after", "actor_id", "related_equipment_id", "reason", "notes",
}

// TransactionHandler exposes the read-only ledger. Notes are the only field
// a client may change after a transaction is booked.
type TransactionHandler struct {
	BaseHandler
	ledgerService *inventoryapp.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(ledgerService *inventoryapp.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// parseDateTime parses a datetime string in various formats
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (h *TransactionHandler) queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := parseDateTime(raw)
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return nil, false
	}
	return &t, true
}

// bindFilter reads the ledger filter shared by List and Export
func (h *TransactionHandler) bindFilter(c *gin.Context) (inventoryapp.TransactionListFilter, bool) {
	var filter inventoryapp.TransactionListFilter

	list, ok := h.bindList(c)
	if !ok {
		return filter, false
	}
	filter.Search = list.Search
	filter.Page = list.Page
	filter.PageSize = list.PageSize
	filter.OrderBy = list.OrderBy
	filter.OrderDir = list.OrderDir
	filter.Type = inventory.TransactionType(c.Query("transaction_type"))

	for name, dst := range map[string]**uuid.UUID{
		"inventory_record_id":  &filter.InventoryRecordID,
		"part_type_id":         &filter.PartTypeID,
		"location_id":          &filter.LocationID,
		"actor_id":             &filter.ActorID,
		"related_equipment_id": &filter.RelatedEquipmentID,
	} {
		if *dst, ok = h.queryUUID(c, name); !ok {
			return filter, false
		}
	}

	if filter.From, ok = h.queryTime(c, "from"); !ok {
		return filter, false
	}
	if filter.To, ok = h.queryTime(c, "to"); !ok {
		return filter, false
	}
	return filter, true
}

// List godoc
// @Summary      List ledger transactions
// @Description  Newest first unless order_by says otherwise
// @Tags         transactions
// @Produce      json
// @Param        search query string false "Matches reason and notes"
// @Param        inventory_record_id query string false "Filter by record" format(uuid)
// @Param        part_type_id query string false "Filter by part type" format(uuid)
// @Param        location_id query string false "Filter by location" format(uuid)
// @Param        transaction_type query string false "check_in, check_out, adjustment, allocation, deallocation or transfer"
// @Param        actor_id query string false "Filter by actor" format(uuid)
// @Param        related_equipment_id query string false "Filter by equipment" format(uuid)
// @Param        from query string false "Occurred at or after (RFC3339 or YYYY-MM-DD)"
// @Param        to query string false "Occurred at or before (RFC3339 or YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response
// @Router       /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	txs, total, err := h.ledgerService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, txs, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get a ledger transaction
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id", "transaction")
	if !ok {
		return
	}

	tx, err := h.ledgerService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tx)
}

// AttachNotes godoc
// @Summary      Attach notes to a transaction
// @Description  Replaces the notes; quantities and type stay untouched
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body dto.NotesRequest true "Notes"
// @Success      200 {object} dto.Response
// @Router       /transactions/{id}/notes [patch]
func (h *TransactionHandler) AttachNotes(c *gin.Context) {
	id, ok := h.parseID(c, "id", "transaction")
	if !ok {
		return
	}

	var req dto.NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	tx, err := h.ledgerService.AttachNotes(c.Request.Context(), id, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tx)
}

// Export godoc
// @Summary      Export ledger transactions as CSV
// @Description  Accepts the list filters; paging parameters are ignored
// @Tags         transactions
// @Produce      text/csv
// @Success      200 {file} file
// @Router       /transactions/export [get]
func (h *TransactionHandler) Export(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	filter.Page = 1
	filter.PageSize = exportPageSize

	// fetch the first page before writing headers so filter errors still
	// get a JSON envelope
	txs, total, err := h.ledgerService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := "transactions-" + time.Now().UTC().Format("20060102-150405") + ".csv"
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeader)

	written := 0
	for {
		for i := range txs {
			_ = w.Write(transactionRow(txs[i]))
		}
		written += len(txs)
		if len(txs) == 0 || int64(written) >= total {
			break
		}

		filter.Page++
		txs, _, err = h.ledgerService.ListTransactions(c.Request.Context(), filter)
		if err != nil {
			// headers are gone; the truncated file is all the client gets
			logger.FromGin(c).Error("Transaction export aborted",
				zap.Int("rows_written", written),
				zap.Error(err),
			)
			break
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		logger.FromGin(c).Warn("Failed to write transaction export", zap.Error(err))
	}
}

func transactionRow(tx inventoryapp.TransactionResponse) []string {
	optional := func(v *uuid.UUID) string {
		if v == nil {
			return ""
		}
		return v.String()
	}
	return []string{
		tx.ID.String(),
		tx.OccurredAt.UTC().Format(time.RFC3339),
		tx.TransactionType,
		tx.InventoryRecordID.String(),
		strconv.Itoa(tx.Quantity),
		strconv.Itoa(tx.QuantityBefore),
		strconv.Itoa(tx.QuantityAfter),
		optional(tx.ActorID),
		optional(tx.RelatedEquipmentID),
		tx.Reason,
		tx.Notes,
	}
}

package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/spares/backend/internal/application/inventory"
	"github.com/spares/backend/internal/domain/catalog"
	"github.com/spares/backend/internal/domain/inventory"
	"github.com/spares/backend/internal/infrastructure/logger"
	"github.com/spares/backend/internal/interfaces/http/dto"
	"github.com/spares/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// InventoryHandler handles inventory record endpoints and the ledger actions
// that move stock on a record.
type InventoryHandler struct {
	BaseHandler
	ledgerService *inventoryapp.LedgerService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledgerService *inventoryapp.LedgerService) *InventoryHandler {
	return &InventoryHandler{ledgerService: ledgerService}
}

// StockActionRequest is the body of check-in, allocate and deallocate
type StockActionRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Reason   string `json:"reason" binding:"required,max=200"`
	Notes    string `json:"notes" binding:"max=10000"`
}

// CheckOutRequest is the body of check-out
type CheckOutRequest struct {
	Quantity           int        `json:"quantity" binding:"required,gt=0"`
	Reason             string     `json:"reason" binding:"required,max=200"`
	RelatedEquipmentID *uuid.UUID `json:"related_equipment_id"`
	Notes              string     `json:"notes" binding:"max=10000"`
}

// AdjustRequest is the body of a signed manual correction
// A zero quantity records a count that matched.
type AdjustRequest struct {
	Quantity *int   `json:"quantity" binding:"required"`
	Reason   string `json:"reason" binding:"required,max=200"`
	Notes    string `json:"notes" binding:"max=10000"`
}

// ===================== Record CRUD =====================

// List godoc
// @Summary      List inventory records
// @Tags         inventory
// @Produce      json
// @Param        search query string false "Matches part type name, part number and storage detail"
// @Param        part_type_id query string false "Filter by part type" format(uuid)
// @Param        location_id query string false "Filter by location" format(uuid)
// @Param        manufacturer_id query string false "Filter by manufacturer" format(uuid)
// @Param        category query string false "Filter by part type category"
// @Param        low_stock query boolean false "Only records at or below their minimum"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response
// @Router       /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	list, ok := h.bindList(c)
	if !ok {
		return
	}
	partTypeID, ok := h.queryUUID(c, "part_type_id")
	if !ok {
		return
	}
	locationID, ok := h.queryUUID(c, "location_id")
	if !ok {
		return
	}
	manufacturerID, ok := h.queryUUID(c, "manufacturer_id")
	if !ok {
		return
	}
	lowStock, ok := h.queryBool(c, "low_stock")
	if !ok {
		return
	}
	category := catalog.Category(c.Query("category"))
	if category != "" && !category.IsValid() {
		h.BadRequest(c, "Invalid category")
		return
	}

	records, total, err := h.ledgerService.ListRecords(c.Request.Context(), inventoryapp.RecordListFilter{
		Search:         list.Search,
		PartTypeID:     partTypeID,
		LocationID:     locationID,
		Category:       category,
		ManufacturerID: manufacturerID,
		LowStock:       lowStock,
		Page:           list.Page,
		PageSize:       list.PageSize,
		OrderBy:        list.OrderBy,
		OrderDir:       list.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, records, total, list.Page, list.PageSize)
}

// GetByID godoc
// @Summary      Get inventory record by ID
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Inventory record ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /inventory/{id} [get]
func (h *InventoryHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id", "inventory record")
	if !ok {
		return
	}

	record, err := h.ledgerService.GetRecord(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// Create godoc
// @Summary      Create an inventory record
// @Description  A positive initial_quantity is booked as an opening check-in
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateRecordRequest true "Record"
// @Success      201 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /inventory [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	req.ActorID = middleware.GetActorID(c)

	record, err := h.ledgerService.CreateRecord(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, record)
}

// Update godoc
// @Summary      Update record settings
// @Description  Quantities are not editable here; use the ledger actions
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Inventory record ID" format(uuid)
// @Param        request body inventoryapp.UpdateRecordRequest true "Settings"
// @Success      200 {object} dto.Response
// @Router       /inventory/{id} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id", "inventory record")
	if !ok {
		return
	}

	var req inventoryapp.UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	record, err := h.ledgerService.UpdateSettings(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// Delete godoc
// @Summary      Delete an inventory record
// @Description  Fails with REFERENCE_PROTECTED once the record has ledger history
// @Tags         inventory
// @Param        id path string true "Inventory record ID" format(uuid)
// @Success      204
// @Failure      422 {object} dto.Response
// @Router       /inventory/{id} [delete]
func (h *InventoryHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id", "inventory record")
	if !ok {
		return
	}

	if err := h.ledgerService.DeleteRecord(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ===================== Ledger actions =====================

// CheckIn godoc
// @Summary      Check stock in
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string false "Acting user" format(uuid)
// @Param        id path string true "Inventory record ID" format(uuid)
// @Param        request body StockActionRequest true "Quantity and reason"
// @Success      200 {object} dto.Response{data=dto.LedgerResponse}
// @Failure      422 {object} dto.Response
// @Router       /inventory/{id}/check-in [post]
func (h *InventoryHandler) CheckIn(c *gin.Context) {
	id, ok := h.parseID(c, "id", "inventory record")
	if !ok {
		return
	}
	var req StockActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.ledgerService.CheckIn(c.Request.Context(), id, inventoryapp.StockMovementRequest{
		Quantity: req.Quantity,
		Reason:   req.Reason,
		ActorID:  middleware.GetActorID(c),
	})
	h.respondLedger(c, result, err, req.Notes, fmt.Sprintf("Checked in %d units", req.Quantity))
}

// CheckOut godoc
// @Summary      Check stock out
// @Description  Removes units from the shelf, optionally naming the equipment they went into
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string false "Acting user" format(uuid)
// @Param        id path string true "Inventory record ID" format(uuid)
// @Param        request body CheckOutRequest true "Quantity, reason and equipment"
// @Success      200 {object} dto.Response{data=dto.LedgerResponse}
// @Failure      422 {object} dto.Response
// @Router       /inventory/{id}/check-out [post]
func (h *InventoryHandler) CheckOut(c *gin.Context) {
	id, ok := h.parseID(c, "id", "inventory record")
	if !ok {
		return
	}
	var req CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.ledgerService.CheckOut(c.Request.Context(), id, inventoryapp.StockMovementRequest{
		Quantity:           req.Quantity,
		Reason:             req.Reason,
		ActorID:            middleware.GetActorID(c),
		RelatedEquipmentID: req.RelatedEquipmentID,
	})
	h.respondLedger(c, result, err, req.Notes, fmt.Sprintf("Checked out %d units", req.Quantity))
}

// Adjust godoc
// @Summary      Adjust on-hand stock
// @Description  Signed manual correction, e.g. after a stock count
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string false "Acting user" format(uuid)
// @Param        id path string true "Inventory record ID" format(uuid)
// @Param        request body AdjustRequest true "Signed quantity and reason"
// @Success      200 {object} dto.Response{data=dto.LedgerResponse}
// @Failure      422 {object} dto.Response
// @Router       /inventory/{id}/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	id, ok := h.parseID(c, "id", "inventory record")
	if !ok {
		return
	}
	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.ledgerService.AdjustStock(c.Request.Context(), id, inventoryapp.AdjustStockRequest{
		Delta:   *req.Quantity,
		Type:    inventory.TransactionTypeAdjustment,
		Reason:  req.Reason,
		ActorID: middleware.GetActorID(c),
	})
	h.respondLedger(c, result, err, req.Notes, fmt.Sprintf("Adjusted inventory by %+d units", *req.Quantity))
}

// Allocate godoc
// @Summary      Reserve stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string false "Acting user" format(uuid)
// @Param        id path string true "Inventory record ID" format(uuid)
// @Param        request body StockActionRequest true "Quantity and reason"
// @Success      200 {object} dto.Response{data=dto.LedgerResponse}
// @Failure      422 {object} dto.Response
// @Router       /inventory/{id}/allocate [post]
func (h *InventoryHandler) Allocate(c *gin.Context) {
	id, ok := h.parseID(c, "id", "inventory record")
	if !ok {
		return
	}
	var req StockActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.ledgerService.Allocate(c.Request.Context(), id, inventoryapp.ReservationRequest{
		Quantity: req.Quantity,
		Reason:   req.Reason,
		ActorID:  middleware.GetActorID(c),
	})
	h.respondLedger(c, result, err, req.Notes, fmt.Sprintf("Allocated %d units", req.Quantity))
}

// Deallocate godoc
// @Summary      Release reserved stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string false "Acting user" format(uuid)
// @Param        id path string true "Inventory record ID" format(uuid)
// @Param        request body StockActionRequest true "Quantity and reason"
// @Success      200 {object} dto.Response{data=dto.LedgerResponse}
// @Failure      422 {object} dto.Response
// @Router       /inventory/{id}/deallocate [post]
func (h *InventoryHandler) Deallocate(c *gin.Context) {
	id, ok := h.parseID(c, "id", "inventory record")
	if !ok {
		return
	}
	var req StockActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.ledgerService.Deallocate(c.Request.Context(), id, inventoryapp.ReservationRequest{
		Quantity: req.Quantity,
		Reason:   req.Reason,
		ActorID:  middleware.GetActorID(c),
	})
	h.respondLedger(c, result, err, req.Notes, fmt.Sprintf("Deallocated %d units", req.Quantity))
}

// respondLedger writes the outcome of a ledger action. Notes are attached to
// the transaction the action returned, after it has committed; a failure to
// attach them is logged and does not undo the stock change.
func (h *InventoryHandler) respondLedger(c *gin.Context, result *inventoryapp.LedgerResult, err error, notes, message string) {
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if notes != "" {
		if _, attachErr := h.ledgerService.AttachNotes(c.Request.Context(), result.TransactionID, notes); attachErr != nil {
			logger.FromGin(c).Warn("Failed to attach notes to transaction",
				zap.String("transaction_id", result.TransactionID.String()),
				zap.Error(attachErr),
			)
		}
	}

	h.Success(c, dto.LedgerResponse{
		Message:       message,
		TransactionID: result.TransactionID,
		Inventory:     result.Record,
	})
}

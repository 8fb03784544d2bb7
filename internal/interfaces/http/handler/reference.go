package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	referenceapp "github.com/spares/backend/internal/application/reference"
)

// ReferenceHandler serves the reference data the ledger points at:
// manufacturers, locations, equipment models, equipment and actors.
// Each resource supports list, get, create and delete.
type ReferenceHandler struct {
	BaseHandler
	referenceService *referenceapp.ReferenceService
}

// NewReferenceHandler creates a new ReferenceHandler
func NewReferenceHandler(referenceService *referenceapp.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

func listReference[R any](h *ReferenceHandler, c *gin.Context, list func(context.Context, referenceapp.ListFilter) ([]R, int64, error)) {
	req, ok := h.bindList(c)
	if !ok {
		return
	}

	items, total, err := list(c.Request.Context(), referenceapp.ListFilter{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

func getReference[R any](h *ReferenceHandler, c *gin.Context, label string, get func(context.Context, uuid.UUID) (*R, error)) {
	id, ok := h.parseID(c, "id", label)
	if !ok {
		return
	}

	item, err := get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

func createReference[Req, R any](h *ReferenceHandler, c *gin.Context, create func(context.Context, Req) (*R, error)) {
	var req Req
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	item, err := create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

func deleteReference(h *ReferenceHandler, c *gin.Context, label string, remove func(context.Context, uuid.UUID) error) {
	id, ok := h.parseID(c, "id", label)
	if !ok {
		return
	}

	if err := remove(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ===================== Manufacturers =====================

// ListManufacturers handles GET /manufacturers
func (h *ReferenceHandler) ListManufacturers(c *gin.Context) {
	listReference(h, c, h.referenceService.ListManufacturers)
}

// GetManufacturer handles GET /manufacturers/:id
func (h *ReferenceHandler) GetManufacturer(c *gin.Context) {
	getReference(h, c, "manufacturer", h.referenceService.GetManufacturer)
}

// CreateManufacturer handles POST /manufacturers
func (h *ReferenceHandler) CreateManufacturer(c *gin.Context) {
	createReference(h, c, h.referenceService.CreateManufacturer)
}

// DeleteManufacturer handles DELETE /manufacturers/:id. It is refused while
// part types or equipment models reference the manufacturer.
func (h *ReferenceHandler) DeleteManufacturer(c *gin.Context) {
	deleteReference(h, c, "manufacturer", h.referenceService.DeleteManufacturer)
}

// ===================== Locations =====================

// ListLocations handles GET /locations
func (h *ReferenceHandler) ListLocations(c *gin.Context) {
	listReference(h, c, h.referenceService.ListLocations)
}

// GetLocation handles GET /locations/:id
func (h *ReferenceHandler) GetLocation(c *gin.Context) {
	getReference(h, c, "location", h.referenceService.GetLocation)
}

// CreateLocation handles POST /locations
func (h *ReferenceHandler) CreateLocation(c *gin.Context) {
	createReference(h, c, h.referenceService.CreateLocation)
}

// DeleteLocation handles DELETE /locations/:id. It is refused while
// inventory records sit at the location.
func (h *ReferenceHandler) DeleteLocation(c *gin.Context) {
	deleteReference(h, c, "location", h.referenceService.DeleteLocation)
}

// ===================== Equipment models =====================

// ListEquipmentModels handles GET /equipment-models
func (h *ReferenceHandler) ListEquipmentModels(c *gin.Context) {
	listReference(h, c, h.referenceService.ListEquipmentModels)
}

// GetEquipmentModel handles GET /equipment-models/:id
func (h *ReferenceHandler) GetEquipmentModel(c *gin.Context) {
	getReference(h, c, "equipment model", h.referenceService.GetEquipmentModel)
}

// CreateEquipmentModel handles POST /equipment-models
func (h *ReferenceHandler) CreateEquipmentModel(c *gin.Context) {
	createReference(h, c, h.referenceService.CreateEquipmentModel)
}

// DeleteEquipmentModel handles DELETE /equipment-models/:id
func (h *ReferenceHandler) DeleteEquipmentModel(c *gin.Context) {
	deleteReference(h, c, "equipment model", h.referenceService.DeleteEquipmentModel)
}

// ===================== Equipment =====================

// ListEquipment handles GET /equipment
func (h *ReferenceHandler) ListEquipment(c *gin.Context) {
	listReference(h, c, h.referenceService.ListEquipment)
}

// GetEquipment handles GET /equipment/:id
func (h *ReferenceHandler) GetEquipment(c *gin.Context) {
	getReference(h, c, "equipment", h.referenceService.GetEquipment)
}

// CreateEquipment handles POST /equipment
func (h *ReferenceHandler) CreateEquipment(c *gin.Context) {
	createReference(h, c, h.referenceService.CreateEquipment)
}

// DeleteEquipment handles DELETE /equipment/:id
func (h *ReferenceHandler) DeleteEquipment(c *gin.Context) {
	deleteReference(h, c, "equipment", h.referenceService.DeleteEquipment)
}

// ===================== Actors =====================

// ListActors handles GET /actors
func (h *ReferenceHandler) ListActors(c *gin.Context) {
	listReference(h, c, h.referenceService.ListActors)
}

// GetActor handles GET /actors/:id
func (h *ReferenceHandler) GetActor(c *gin.Context) {
	getReference(h, c, "actor", h.referenceService.GetActor)
}

// CreateActor handles POST /actors
func (h *ReferenceHandler) CreateActor(c *gin.Context) {
	createReference(h, c, h.referenceService.CreateActor)
}

// DeleteActor handles DELETE /actors/:id. Past transactions keep their
// history with the actor cleared.
func (h *ReferenceHandler) DeleteActor(c *gin.Context) {
	deleteReference(h, c, "actor", h.referenceService.DeleteActor)
}

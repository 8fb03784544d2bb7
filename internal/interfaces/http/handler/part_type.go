package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/spares/backend/internal/application/catalog"
	"github.com/spares/backend/internal/domain/catalog"
)

// PartTypeHandler handles part type catalog endpoints
type PartTypeHandler struct {
	BaseHandler
	partTypeService *catalogapp.PartTypeService
}

// NewPartTypeHandler creates a new PartTypeHandler
func NewPartTypeHandler(partTypeService *catalogapp.PartTypeService) *PartTypeHandler {
	return &PartTypeHandler{partTypeService: partTypeService}
}

// List godoc
// @Summary      List part types
// @Tags         part-types
// @Produce      json
// @Param        search query string false "Matches name, slug, part number and description"
// @Param        manufacturer_id query string false "Filter by manufacturer" format(uuid)
// @Param        category query string false "Filter by category"
// @Param        compatible_model_id query string false "Filter by compatible equipment model" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response
// @Router       /part-types [get]
func (h *PartTypeHandler) List(c *gin.Context) {
	list, ok := h.bindList(c)
	if !ok {
		return
	}
	manufacturerID, ok := h.queryUUID(c, "manufacturer_id")
	if !ok {
		return
	}
	modelID, ok := h.queryUUID(c, "compatible_model_id")
	if !ok {
		return
	}

	category := catalog.Category(c.Query("category"))
	if category != "" && !category.IsValid() {
		h.BadRequest(c, "Invalid category")
		return
	}

	items, total, err := h.partTypeService.List(c.Request.Context(), catalogapp.PartTypeListFilter{
		Search:            list.Search,
		ManufacturerID:    manufacturerID,
		Category:          category,
		CompatibleModelID: modelID,
		Page:              list.Page,
		PageSize:          list.PageSize,
		OrderBy:           list.OrderBy,
		OrderDir:          list.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, list.Page, list.PageSize)
}

// GetByID godoc
// @Summary      Get part type by ID
// @Tags         part-types
// @Produce      json
// @Param        id path string true "Part type ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /part-types/{id} [get]
func (h *PartTypeHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id", "part type")
	if !ok {
		return
	}

	partType, err := h.partTypeService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, partType)
}

// Create godoc
// @Summary      Create a part type
// @Tags         part-types
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.PartTypeRequest true "Part type"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /part-types [post]
func (h *PartTypeHandler) Create(c *gin.Context) {
	var req catalogapp.PartTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	partType, err := h.partTypeService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, partType)
}

// Update godoc
// @Summary      Replace a part type
// @Tags         part-types
// @Accept       json
// @Produce      json
// @Param        id path string true "Part type ID" format(uuid)
// @Param        request body catalogapp.PartTypeRequest true "Part type"
// @Success      200 {object} dto.Response
// @Router       /part-types/{id} [put]
func (h *PartTypeHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id", "part type")
	if !ok {
		return
	}

	var req catalogapp.PartTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	partType, err := h.partTypeService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, partType)
}

// Delete godoc
// @Summary      Delete a part type
// @Description  Fails with REFERENCE_PROTECTED while inventory records point at it
// @Tags         part-types
// @Param        id path string true "Part type ID" format(uuid)
// @Success      204
// @Failure      422 {object} dto.Response
// @Router       /part-types/{id} [delete]
func (h *PartTypeHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id", "part type")
	if !ok {
		return
	}

	if err := h.partTypeService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Stock godoc
// @Summary      Stock summary of a part type
// @Description  Total on-hand quantity across all locations and the locations holding stock
// @Tags         part-types
// @Produce      json
// @Param        id path string true "Part type ID" format(uuid)
// @Success      200 {object} dto.Response
// @Router       /part-types/{id}/stock [get]
func (h *PartTypeHandler) Stock(c *gin.Context) {
	id, ok := h.parseID(c, "id", "part type")
	if !ok {
		return
	}

	stock, err := h.partTypeService.Stock(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stock)
}

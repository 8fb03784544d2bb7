package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/catalog"
	"github.com/spares/backend/internal/domain/inventory"
	"github.com/spares/backend/internal/domain/reference"
	"github.com/spares/backend/internal/domain/shared"
)

// PartTypeService handles part catalog operations
type PartTypeService struct {
	partTypeRepo     catalog.PartTypeRepository
	recordRepo       inventory.RecordRepository
	manufacturerRepo reference.ManufacturerRepository
	modelRepo        reference.EquipmentModelRepository
}

// NewPartTypeService creates a new PartTypeService
func NewPartTypeService(
	partTypeRepo catalog.PartTypeRepository,
	recordRepo inventory.RecordRepository,
	manufacturerRepo reference.ManufacturerRepository,
	modelRepo reference.EquipmentModelRepository,
) *PartTypeService {
	return &PartTypeService{
		partTypeRepo:     partTypeRepo,
		recordRepo:       recordRepo,
		manufacturerRepo: manufacturerRepo,
		modelRepo:        modelRepo,
	}
}

// Create creates a new part type
func (s *PartTypeService) Create(ctx context.Context, req PartTypeRequest) (*PartTypeResponse, error) {
	if err := s.ensureSlugFree(ctx, req.Slug, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.verifyReferences(ctx, req); err != nil {
		return nil, err
	}

	pt, err := catalog.NewPartType(req.Attributes())
	if err != nil {
		return nil, err
	}
	if err := s.partTypeRepo.Save(ctx, pt); err != nil {
		return nil, err
	}

	response := ToPartTypeResponse(pt)
	return &response, nil
}

// GetByID retrieves a part type by ID
func (s *PartTypeService) GetByID(ctx context.Context, id uuid.UUID) (*PartTypeResponse, error) {
	pt, err := s.findPartType(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPartTypeResponse(pt)
	return &response, nil
}

// List retrieves part types with filtering and pagination
func (s *PartTypeService) List(ctx context.Context, filter PartTypeListFilter) ([]PartTypeResponse, int64, error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, 0, shared.NewValidationError("Invalid part category: " + filter.Category.String())
	}

	domainFilter := catalog.PartTypeFilter{
		Filter:            shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search),
		ManufacturerID:    filter.ManufacturerID,
		Category:          filter.Category,
		CompatibleModelID: filter.CompatibleModelID,
	}

	pts, err := s.partTypeRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.partTypeRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPartTypeResponses(pts), total, nil
}

// Update replaces the editable fields of a part type
func (s *PartTypeService) Update(ctx context.Context, id uuid.UUID, req PartTypeRequest) (*PartTypeResponse, error) {
	pt, err := s.findPartType(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Slug != pt.Slug {
		if err := s.ensureSlugFree(ctx, req.Slug, pt.ID); err != nil {
			return nil, err
		}
	}
	if err := s.verifyReferences(ctx, req); err != nil {
		return nil, err
	}

	if err := pt.Update(req.Attributes()); err != nil {
		return nil, err
	}
	if err := s.partTypeRepo.Save(ctx, pt); err != nil {
		return nil, err
	}

	response := ToPartTypeResponse(pt)
	return &response, nil
}

// Delete deletes a part type no inventory record references
func (s *PartTypeService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findPartType(ctx, id); err != nil {
		return err
	}

	inUse, err := s.recordRepo.ExistsByPartType(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return shared.NewReferenceProtectedError("Cannot delete part type with inventory records")
	}

	return s.partTypeRepo.Delete(ctx, id)
}

// Stock returns the total on-hand quantity and the locations holding stock
func (s *PartTypeService) Stock(ctx context.Context, id uuid.UUID) (*PartTypeStockResponse, error) {
	if _, err := s.findPartType(ctx, id); err != nil {
		return nil, err
	}

	total, err := s.TotalQuantity(ctx, id)
	if err != nil {
		return nil, err
	}
	locations, err := s.LocationsWithStock(ctx, id)
	if err != nil {
		return nil, err
	}

	return &PartTypeStockResponse{
		PartTypeID:         id,
		TotalQuantity:      total,
		LocationsWithStock: locations,
	}, nil
}

// TotalQuantity sums on-hand stock across all locations, zero when untracked
func (s *PartTypeService) TotalQuantity(ctx context.Context, id uuid.UUID) (int64, error) {
	total, err := s.recordRepo.SumOnHandByPartType(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("sum on-hand quantity: %w", err)
	}
	return total, nil
}

// LocationsWithStock returns the distinct locations holding on-hand stock
func (s *PartTypeService) LocationsWithStock(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.recordRepo.FindLocationsWithStock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find locations with stock: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

func (s *PartTypeService) findPartType(ctx context.Context, id uuid.UUID) (*catalog.PartType, error) {
	pt, err := s.partTypeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Part type not found")
		}
		return nil, err
	}
	return pt, nil
}

func (s *PartTypeService) ensureSlugFree(ctx context.Context, slug string, self uuid.UUID) error {
	existing, err := s.partTypeRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return shared.NewDomainError(shared.CodeAlreadyExists, "Part type with this slug already exists")
	}
	return nil
}

// verifyReferences checks the manufacturer and compatible models exist
func (s *PartTypeService) verifyReferences(ctx context.Context, req PartTypeRequest) error {
	if req.ManufacturerID != nil && *req.ManufacturerID != uuid.Nil {
		if _, err := s.manufacturerRepo.FindByID(ctx, *req.ManufacturerID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("Manufacturer not found")
			}
			return err
		}
	}
	for _, modelID := range req.CompatibleModelIDs {
		if _, err := s.modelRepo.FindByID(ctx, modelID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError(fmt.Sprintf("Equipment model %s not found", modelID))
			}
			return err
		}
	}
	return nil
}

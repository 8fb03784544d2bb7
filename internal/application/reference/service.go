// Package reference manages the manufacturers, locations, equipment models,
// equipment and actors that part types, records and ledger entries point at.
package reference

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/reference"
	"github.com/spares/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReferenceService handles reference data CRUD and the protect/nullify delete rules
type ReferenceService struct {
	repos  RepositorySet
	scope  ReferenceScope
	logger *zap.Logger
}

// NewReferenceService creates a new ReferenceService.
// A nil scope runs deletes directly against repos.
func NewReferenceService(repos RepositorySet, scope ReferenceScope, logger *zap.Logger) *ReferenceService {
	if scope == nil {
		scope = NewNoOpReferenceScope(repos)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{
		repos:  repos,
		scope:  scope,
		logger: logger.Named("reference"),
	}
}

func list[T, R any](ctx context.Context, repo reference.Repository[T], filter ListFilter, convert func(*T) R) ([]R, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	items, err := repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]R, len(items))
	for i := range items {
		responses[i] = convert(&items[i])
	}
	return responses, total, nil
}

func find[T any](ctx context.Context, repo reference.Repository[T], id uuid.UUID, name string) (*T, error) {
	entity, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError(name + " not found")
		}
		return nil, err
	}
	return entity, nil
}

// verifyOptional checks that an optional reference exists
func verifyOptional[T any](ctx context.Context, repo reference.Repository[T], id *uuid.UUID, name string) error {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	_, err := find(ctx, repo, *id, name)
	return err
}

// Manufacturers

// CreateManufacturer creates a manufacturer
func (s *ReferenceService) CreateManufacturer(ctx context.Context, req CreateManufacturerRequest) (*ManufacturerResponse, error) {
	m, err := reference.NewManufacturer(req.Name, req.Slug)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Manufacturers.Save(ctx, m); err != nil {
		return nil, err
	}
	resp := toManufacturerResponse(m)
	return &resp, nil
}

// GetManufacturer retrieves a manufacturer by ID
func (s *ReferenceService) GetManufacturer(ctx context.Context, id uuid.UUID) (*ManufacturerResponse, error) {
	m, err := find[reference.Manufacturer](ctx, s.repos.Manufacturers, id, "Manufacturer")
	if err != nil {
		return nil, err
	}
	resp := toManufacturerResponse(m)
	return &resp, nil
}

// ListManufacturers lists manufacturers
func (s *ReferenceService) ListManufacturers(ctx context.Context, filter ListFilter) ([]ManufacturerResponse, int64, error) {
	return list[reference.Manufacturer](ctx, s.repos.Manufacturers, filter, toManufacturerResponse)
}

// DeleteManufacturer deletes a manufacturer no part type or equipment model references
func (s *ReferenceService) DeleteManufacturer(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos ReferenceRepositories) error {
		if _, err := find[reference.Manufacturer](ctx, repos.ManufacturerRepo(), id, "Manufacturer"); err != nil {
			return err
		}
		usedByParts, err := repos.PartTypeRepo().ExistsByManufacturer(ctx, id)
		if err != nil {
			return fmt.Errorf("check part types: %w", err)
		}
		if usedByParts {
			return shared.NewReferenceProtectedError("Cannot delete manufacturer referenced by part types")
		}
		usedByModels, err := repos.EquipmentModelRepo().ExistsByManufacturer(ctx, id)
		if err != nil {
			return fmt.Errorf("check equipment models: %w", err)
		}
		if usedByModels {
			return shared.NewReferenceProtectedError("Cannot delete manufacturer referenced by equipment models")
		}
		return repos.ManufacturerRepo().Delete(ctx, id)
	})
}

// Locations

// CreateLocation creates a location
func (s *ReferenceService) CreateLocation(ctx context.Context, req CreateLocationRequest) (*LocationResponse, error) {
	l, err := reference.NewLocation(req.Name, req.Slug, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Locations.Save(ctx, l); err != nil {
		return nil, err
	}
	resp := toLocationResponse(l)
	return &resp, nil
}

// GetLocation retrieves a location by ID
func (s *ReferenceService) GetLocation(ctx context.Context, id uuid.UUID) (*LocationResponse, error) {
	l, err := find[reference.Location](ctx, s.repos.Locations, id, "Location")
	if err != nil {
		return nil, err
	}
	resp := toLocationResponse(l)
	return &resp, nil
}

// ListLocations lists locations
func (s *ReferenceService) ListLocations(ctx context.Context, filter ListFilter) ([]LocationResponse, int64, error) {
	return list[reference.Location](ctx, s.repos.Locations, filter, toLocationResponse)
}

// DeleteLocation deletes a location without inventory records.
// Equipment at the location keeps existing with its location cleared.
func (s *ReferenceService) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	err := s.scope.Execute(ctx, func(repos ReferenceRepositories) error {
		if _, err := find[reference.Location](ctx, repos.LocationRepo(), id, "Location"); err != nil {
			return err
		}
		stocked, err := repos.RecordRepo().ExistsByLocation(ctx, id)
		if err != nil {
			return fmt.Errorf("check inventory records: %w", err)
		}
		if stocked {
			return shared.NewReferenceProtectedError("Cannot delete location with inventory records")
		}
		if err := repos.EquipmentRepo().ClearLocation(ctx, id); err != nil {
			return fmt.Errorf("clear equipment location: %w", err)
		}
		return repos.LocationRepo().Delete(ctx, id)
	})
	if err == nil {
		s.logger.Info("Location deleted", zap.String("location_id", id.String()))
	}
	return err
}

// Equipment models

// CreateEquipmentModel creates an equipment model for an existing manufacturer
func (s *ReferenceService) CreateEquipmentModel(ctx context.Context, req CreateEquipmentModelRequest) (*EquipmentModelResponse, error) {
	if _, err := find[reference.Manufacturer](ctx, s.repos.Manufacturers, req.ManufacturerID, "Manufacturer"); err != nil {
		return nil, err
	}
	m, err := reference.NewEquipmentModel(req.ManufacturerID, req.Model, req.Slug)
	if err != nil {
		return nil, err
	}
	if err := s.repos.EquipmentModels.Save(ctx, m); err != nil {
		return nil, err
	}
	resp := toEquipmentModelResponse(m)
	return &resp, nil
}

// GetEquipmentModel retrieves an equipment model by ID
func (s *ReferenceService) GetEquipmentModel(ctx context.Context, id uuid.UUID) (*EquipmentModelResponse, error) {
	m, err := find[reference.EquipmentModel](ctx, s.repos.EquipmentModels, id, "Equipment model")
	if err != nil {
		return nil, err
	}
	resp := toEquipmentModelResponse(m)
	return &resp, nil
}

// ListEquipmentModels lists equipment models
func (s *ReferenceService) ListEquipmentModels(ctx context.Context, filter ListFilter) ([]EquipmentModelResponse, int64, error) {
	return list[reference.EquipmentModel](ctx, s.repos.EquipmentModels, filter, toEquipmentModelResponse)
}

// DeleteEquipmentModel deletes an equipment model, dropping compatibility
// links and clearing the model of equipment built on it
func (s *ReferenceService) DeleteEquipmentModel(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos ReferenceRepositories) error {
		if _, err := find[reference.EquipmentModel](ctx, repos.EquipmentModelRepo(), id, "Equipment model"); err != nil {
			return err
		}
		if err := repos.PartTypeRepo().RemoveCompatibleModel(ctx, id); err != nil {
			return fmt.Errorf("remove compatible model links: %w", err)
		}
		if err := repos.EquipmentRepo().ClearModel(ctx, id); err != nil {
			return fmt.Errorf("clear equipment model: %w", err)
		}
		return repos.EquipmentModelRepo().Delete(ctx, id)
	})
}

// Equipment

// CreateEquipment registers a piece of equipment
func (s *ReferenceService) CreateEquipment(ctx context.Context, req CreateEquipmentRequest) (*EquipmentResponse, error) {
	if err := verifyOptional[reference.EquipmentModel](ctx, s.repos.EquipmentModels, req.ModelID, "Equipment model"); err != nil {
		return nil, err
	}
	if err := verifyOptional[reference.Location](ctx, s.repos.Locations, req.LocationID, "Location"); err != nil {
		return nil, err
	}
	e, err := reference.NewEquipment(req.Name, req.ModelID, req.LocationID)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Equipment.Save(ctx, e); err != nil {
		return nil, err
	}
	resp := toEquipmentResponse(e)
	return &resp, nil
}

// GetEquipment retrieves a piece of equipment by ID
func (s *ReferenceService) GetEquipment(ctx context.Context, id uuid.UUID) (*EquipmentResponse, error) {
	e, err := find[reference.Equipment](ctx, s.repos.Equipment, id, "Equipment")
	if err != nil {
		return nil, err
	}
	resp := toEquipmentResponse(e)
	return &resp, nil
}

// ListEquipment lists equipment
func (s *ReferenceService) ListEquipment(ctx context.Context, filter ListFilter) ([]EquipmentResponse, int64, error) {
	return list[reference.Equipment](ctx, s.repos.Equipment, filter, toEquipmentResponse)
}

// DeleteEquipment deletes equipment; ledger entries keep their history
// with the related equipment cleared
func (s *ReferenceService) DeleteEquipment(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos ReferenceRepositories) error {
		if _, err := find[reference.Equipment](ctx, repos.EquipmentRepo(), id, "Equipment"); err != nil {
			return err
		}
		if err := repos.TransactionRepo().ClearEquipment(ctx, id); err != nil {
			return fmt.Errorf("clear transaction equipment: %w", err)
		}
		return repos.EquipmentRepo().Delete(ctx, id)
	})
}

// Actors

// CreateActor creates an actor
func (s *ReferenceService) CreateActor(ctx context.Context, req CreateActorRequest) (*ActorResponse, error) {
	a, err := reference.NewActor(req.Username, req.DisplayName)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Actors.Save(ctx, a); err != nil {
		return nil, err
	}
	resp := toActorResponse(a)
	return &resp, nil
}

// GetActor retrieves an actor by ID
func (s *ReferenceService) GetActor(ctx context.Context, id uuid.UUID) (*ActorResponse, error) {
	a, err := find[reference.Actor](ctx, s.repos.Actors, id, "Actor")
	if err != nil {
		return nil, err
	}
	resp := toActorResponse(a)
	return &resp, nil
}

// ListActors lists actors
func (s *ReferenceService) ListActors(ctx context.Context, filter ListFilter) ([]ActorResponse, int64, error) {
	return list[reference.Actor](ctx, s.repos.Actors, filter, toActorResponse)
}

// DeleteActor deletes an actor; ledger entries keep their history with the actor cleared
func (s *ReferenceService) DeleteActor(ctx context.Context, id uuid.UUID) error {
	err := s.scope.Execute(ctx, func(repos ReferenceRepositories) error {
		if _, err := find[reference.Actor](ctx, repos.ActorRepo(), id, "Actor"); err != nil {
			return err
		}
		if err := repos.TransactionRepo().ClearActor(ctx, id); err != nil {
			return fmt.Errorf("clear transaction actor: %w", err)
		}
		return repos.ActorRepo().Delete(ctx, id)
	})
	if err == nil {
		s.logger.Info("Actor deleted", zap.String("actor_id", id.String()))
	}
	return err
}

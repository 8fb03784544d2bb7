package reference

import (
	"context"

	"github.com/spares/backend/internal/domain/catalog"
	"github.com/spares/backend/internal/domain/inventory"
	"github.com/spares/backend/internal/domain/reference"
)

// ReferenceScope runs a delete and its protect/nullify steps in one database transaction
type ReferenceScope interface {
	Execute(ctx context.Context, fn func(repos ReferenceRepositories) error) error
}

// ReferenceRepositories exposes every repository a reference delete touches,
// bound to the current transaction
type ReferenceRepositories interface {
	ManufacturerRepo() reference.ManufacturerRepository
	LocationRepo() reference.LocationRepository
	EquipmentModelRepo() reference.EquipmentModelRepository
	EquipmentRepo() reference.EquipmentRepository
	ActorRepo() reference.ActorRepository
	PartTypeRepo() catalog.PartTypeRepository
	RecordRepo() inventory.RecordRepository
	TransactionRepo() inventory.TransactionRepository
}

// RepositorySet is a plain ReferenceRepositories value
type RepositorySet struct {
	Manufacturers   reference.ManufacturerRepository
	Locations       reference.LocationRepository
	EquipmentModels reference.EquipmentModelRepository
	Equipment       reference.EquipmentRepository
	Actors          reference.ActorRepository
	PartTypes       catalog.PartTypeRepository
	Records         inventory.RecordRepository
	Transactions    inventory.TransactionRepository
}

func (s RepositorySet) ManufacturerRepo() reference.ManufacturerRepository     { return s.Manufacturers }
func (s RepositorySet) LocationRepo() reference.LocationRepository             { return s.Locations }
func (s RepositorySet) EquipmentModelRepo() reference.EquipmentModelRepository { return s.EquipmentModels }
func (s RepositorySet) EquipmentRepo() reference.EquipmentRepository           { return s.Equipment }
func (s RepositorySet) ActorRepo() reference.ActorRepository                   { return s.Actors }
func (s RepositorySet) PartTypeRepo() catalog.PartTypeRepository               { return s.PartTypes }
func (s RepositorySet) RecordRepo() inventory.RecordRepository                 { return s.Records }
func (s RepositorySet) TransactionRepo() inventory.TransactionRepository       { return s.Transactions }

// NoOpReferenceScope calls fn directly with a fixed repository set.
// Used in unit tests.
type NoOpReferenceScope struct {
	repos RepositorySet
}

// NewNoOpReferenceScope creates a NoOpReferenceScope
func NewNoOpReferenceScope(repos RepositorySet) *NoOpReferenceScope {
	return &NoOpReferenceScope{repos: repos}
}

// Execute runs fn without a transaction
func (s *NoOpReferenceScope) Execute(_ context.Context, fn func(repos ReferenceRepositories) error) error {
	return fn(s.repos)
}

var (
	_ ReferenceScope        = (*NoOpReferenceScope)(nil)
	_ ReferenceRepositories = RepositorySet{}
)

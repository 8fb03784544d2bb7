package persistence

import (
	"context"

	appinv "github.com/spares/backend/internal/application/inventory"
	appref "github.com/spares/backend/internal/application/reference"
	"github.com/spares/backend/internal/domain/catalog"
	"github.com/spares/backend/internal/domain/inventory"
	"github.com/spares/backend/internal/domain/reference"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Repositories handed to fn share the transaction, so a row lock taken by
// FindByIDForUpdate is held until fn returns.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormReferenceScope implements the reference delete scope using GORM transactions
type GormReferenceScope struct {
	db *gorm.DB
}

// NewGormReferenceScope creates a new GormReferenceScope.
func NewGormReferenceScope(db *gorm.DB) *GormReferenceScope {
	return &GormReferenceScope{db: db}
}

// Execute runs the protect checks, nullify updates and the delete in one transaction
func (s *GormReferenceScope) Execute(ctx context.Context, fn func(repos appref.ReferenceRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// NewRepositorySet builds every repository over db
func NewRepositorySet(db *gorm.DB) appref.RepositorySet {
	repos := &gormTransactionalRepositories{tx: db}
	return appref.RepositorySet{
		Manufacturers:   repos.ManufacturerRepo(),
		Locations:       repos.LocationRepo(),
		EquipmentModels: repos.EquipmentModelRepo(),
		Equipment:       repos.EquipmentRepo(),
		Actors:          repos.ActorRepo(),
		PartTypes:       repos.PartTypeRepo(),
		Records:         repos.RecordRepo(),
		Transactions:    repos.TransactionRepo(),
	}
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// RecordRepo returns the inventory record repository scoped to the current transaction.
func (r *gormTransactionalRepositories) RecordRepo() inventory.RecordRepository {
	return NewGormInventoryRecordRepository(r.tx)
}

// TransactionRepo returns the ledger transaction repository scoped to the current transaction.
func (r *gormTransactionalRepositories) TransactionRepo() inventory.TransactionRepository {
	return NewGormInventoryTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) PartTypeRepo() catalog.PartTypeRepository {
	return NewGormPartTypeRepository(r.tx)
}

func (r *gormTransactionalRepositories) ManufacturerRepo() reference.ManufacturerRepository {
	return NewGormManufacturerRepository(r.tx)
}

func (r *gormTransactionalRepositories) LocationRepo() reference.LocationRepository {
	return NewGormLocationRepository(r.tx)
}

func (r *gormTransactionalRepositories) EquipmentModelRepo() reference.EquipmentModelRepository {
	return NewGormEquipmentModelRepository(r.tx)
}

func (r *gormTransactionalRepositories) EquipmentRepo() reference.EquipmentRepository {
	return NewGormEquipmentRepository(r.tx)
}

func (r *gormTransactionalRepositories) ActorRepo() reference.ActorRepository {
	return NewGormActorRepository(r.tx)
}

var (
	_ appinv.TransactionScope          = (*GormTransactionScope)(nil)
	_ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ appref.ReferenceScope            = (*GormReferenceScope)(nil)
	_ appref.ReferenceRepositories     = (*gormTransactionalRepositories)(nil)
)

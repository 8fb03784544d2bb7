package reference

import (
	"context"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/catalog"
	"github.com/spares/backend/internal/domain/inventory"
	"github.com/spares/backend/internal/domain/reference"
	"github.com/spares/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of reference.Repository
type MockRepository[T any] struct {
	mock.Mock
}

func (m *MockRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) FindAll(ctx context.Context, filter shared.Filter) ([]T, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockRepository[T]) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository[T]) Save(ctx context.Context, entity *T) error {
	return m.Called(ctx, entity).Error(0)
}

func (m *MockRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockEquipmentModelRepository adds ExistsByManufacturer
type MockEquipmentModelRepository struct {
	MockRepository[reference.EquipmentModel]
}

func (m *MockEquipmentModelRepository) ExistsByManufacturer(ctx context.Context, manufacturerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, manufacturerID)
	return args.Bool(0), args.Error(1)
}

// MockEquipmentRepository adds the nullify operations
type MockEquipmentRepository struct {
	MockRepository[reference.Equipment]
}

func (m *MockEquipmentRepository) ClearLocation(ctx context.Context, locationID uuid.UUID) error {
	return m.Called(ctx, locationID).Error(0)
}

func (m *MockEquipmentRepository) ClearModel(ctx context.Context, modelID uuid.UUID) error {
	return m.Called(ctx, modelID).Error(0)
}

// MockPartTypeRepository mocks the part type operations reference deletes use
type MockPartTypeRepository struct {
	mock.Mock
	catalog.PartTypeRepository
}

func (m *MockPartTypeRepository) ExistsByManufacturer(ctx context.Context, manufacturerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, manufacturerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPartTypeRepository) RemoveCompatibleModel(ctx context.Context, equipmentModelID uuid.UUID) error {
	return m.Called(ctx, equipmentModelID).Error(0)
}

// MockRecordRepository mocks the record operations reference deletes use
type MockRecordRepository struct {
	mock.Mock
	inventory.RecordRepository
}

func (m *MockRecordRepository) ExistsByLocation(ctx context.Context, locationID uuid.UUID) (bool, error) {
	args := m.Called(ctx, locationID)
	return args.Bool(0), args.Error(1)
}

// MockTransactionRepository mocks the ledger operations reference deletes use
type MockTransactionRepository struct {
	mock.Mock
	inventory.TransactionRepository
}

func (m *MockTransactionRepository) ClearActor(ctx context.Context, actorID uuid.UUID) error {
	return m.Called(ctx, actorID).Error(0)
}

func (m *MockTransactionRepository) ClearEquipment(ctx context.Context, equipmentID uuid.UUID) error {
	return m.Called(ctx, equipmentID).Error(0)
}

// recordingScope wraps NoOpReferenceScope and counts executions
type recordingScope struct {
	*NoOpReferenceScope
	calls int
}

func (s *recordingScope) Execute(ctx context.Context, fn func(repos ReferenceRepositories) error) error {
	s.calls++
	return s.NoOpReferenceScope.Execute(ctx, fn)
}

var (
	_ reference.ManufacturerRepository   = (*MockRepository[reference.Manufacturer])(nil)
	_ reference.EquipmentModelRepository = (*MockEquipmentModelRepository)(nil)
	_ reference.EquipmentRepository      = (*MockEquipmentRepository)(nil)
	_ ReferenceScope                     = (*recordingScope)(nil)
)

package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/catalog"
	"github.com/spares/backend/internal/domain/inventory"
	"github.com/spares/backend/internal/domain/reference"
	"github.com/spares/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockPartTypeRepository is a mock implementation of catalog.PartTypeRepository
type MockPartTypeRepository struct {
	mock.Mock
}

func (m *MockPartTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.PartType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.PartType), args.Error(1)
}

func (m *MockPartTypeRepository) FindBySlug(ctx context.Context, slug string) (*catalog.PartType, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.PartType), args.Error(1)
}

func (m *MockPartTypeRepository) FindAll(ctx context.Context, filter catalog.PartTypeFilter) ([]catalog.PartType, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.PartType), args.Error(1)
}

func (m *MockPartTypeRepository) Count(ctx context.Context, filter catalog.PartTypeFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPartTypeRepository) Save(ctx context.Context, partType *catalog.PartType) error {
	args := m.Called(ctx, partType)
	return args.Error(0)
}

func (m *MockPartTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPartTypeRepository) ExistsByManufacturer(ctx context.Context, manufacturerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, manufacturerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPartTypeRepository) RemoveCompatibleModel(ctx context.Context, equipmentModelID uuid.UUID) error {
	args := m.Called(ctx, equipmentModelID)
	return args.Error(0)
}

// MockRecordRepository mocks the record queries the catalog depends on
type MockRecordRepository struct {
	mock.Mock
	inventory.RecordRepository
}

func (m *MockRecordRepository) ExistsByPartType(ctx context.Context, partTypeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, partTypeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecordRepository) SumOnHandByPartType(ctx context.Context, partTypeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, partTypeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordRepository) FindLocationsWithStock(ctx context.Context, partTypeID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, partTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockManufacturerRepository is a mock implementation of reference.ManufacturerRepository
type MockManufacturerRepository struct {
	mock.Mock
}

func (m *MockManufacturerRepository) FindByID(ctx context.Context, id uuid.UUID) (*reference.Manufacturer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reference.Manufacturer), args.Error(1)
}

func (m *MockManufacturerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]reference.Manufacturer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]reference.Manufacturer), args.Error(1)
}

func (m *MockManufacturerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockManufacturerRepository) Save(ctx context.Context, entity *reference.Manufacturer) error {
	return m.Called(ctx, entity).Error(0)
}

func (m *MockManufacturerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockEquipmentModelRepository is a mock implementation of reference.EquipmentModelRepository
type MockEquipmentModelRepository struct {
	mock.Mock
}

func (m *MockEquipmentModelRepository) FindByID(ctx context.Context, id uuid.UUID) (*reference.EquipmentModel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reference.EquipmentModel), args.Error(1)
}

func (m *MockEquipmentModelRepository) FindAll(ctx context.Context, filter shared.Filter) ([]reference.EquipmentModel, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]reference.EquipmentModel), args.Error(1)
}

func (m *MockEquipmentModelRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEquipmentModelRepository) Save(ctx context.Context, entity *reference.EquipmentModel) error {
	return m.Called(ctx, entity).Error(0)
}

func (m *MockEquipmentModelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEquipmentModelRepository) ExistsByManufacturer(ctx context.Context, manufacturerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, manufacturerID)
	return args.Bool(0), args.Error(1)
}

var (
	_ catalog.PartTypeRepository         = (*MockPartTypeRepository)(nil)
	_ inventory.RecordRepository         = (*MockRecordRepository)(nil)
	_ reference.ManufacturerRepository   = (*MockManufacturerRepository)(nil)
	_ reference.EquipmentModelRepository = (*MockEquipmentModelRepository)(nil)
)

package inventory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/catalog"
	"github.com/spares/backend/internal/domain/inventory"
	"github.com/spares/backend/internal/domain/reference"
	"github.com/spares/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mu      sync.Mutex
	events  []shared.DomainEvent
	ctxErrs []error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		events: make([]shared.DomainEvent, 0),
	}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	return nil
}

// ContextErrors returns ctx.Err() as seen by each Publish call
func (m *MockEventPublisher) ContextErrors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]error(nil), m.ctxErrs...)
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockRecordRepository is a mock implementation of inventory.RecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryRecord), args.Error(1)
}

func (m *MockRecordRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.InventoryRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryRecord), args.Error(1)
}

func (m *MockRecordRepository) FindByPartTypeAndLocation(ctx context.Context, partTypeID, locationID uuid.UUID) (*inventory.InventoryRecord, error) {
	args := m.Called(ctx, partTypeID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryRecord), args.Error(1)
}

func (m *MockRecordRepository) FindAll(ctx context.Context, filter inventory.RecordFilter) ([]inventory.InventoryRecord, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.InventoryRecord), args.Error(1)
}

func (m *MockRecordRepository) Count(ctx context.Context, filter inventory.RecordFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecordRepository) ExistsByPartType(ctx context.Context, partTypeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, partTypeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecordRepository) ExistsByLocation(ctx context.Context, locationID uuid.UUID) (bool, error) {
	args := m.Called(ctx, locationID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecordRepository) SumOnHandByPartType(ctx context.Context, partTypeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, partTypeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordRepository) FindLocationsWithStock(ctx context.Context, partTypeID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, partTypeID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockTransactionRepository is a mock implementation of inventory.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAll(ctx context.Context, filter inventory.TransactionFilter) ([]inventory.Transaction, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Count(ctx context.Context, filter inventory.TransactionFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *inventory.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	args := m.Called(ctx, id, notes)
	return args.Error(0)
}

func (m *MockTransactionRepository) CountByRecord(ctx context.Context, recordID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recordID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) ClearActor(ctx context.Context, actorID uuid.UUID) error {
	args := m.Called(ctx, actorID)
	return args.Error(0)
}

func (m *MockTransactionRepository) ClearEquipment(ctx context.Context, equipmentID uuid.UUID) error {
	args := m.Called(ctx, equipmentID)
	return args.Error(0)
}

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

// MockReferenceRepository is a mock implementation of reference.Repository
type MockReferenceRepository[T any] struct {
	mock.Mock
}

func (m *MockReferenceRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockReferenceRepository[T]) FindAll(ctx context.Context, filter shared.Filter) ([]T, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockReferenceRepository[T]) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReferenceRepository[T]) Save(ctx context.Context, entity *T) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockReferenceRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEquipmentRepository is a mock implementation of reference.EquipmentRepository
type MockEquipmentRepository struct {
	MockReferenceRepository[reference.Equipment]
}

func (m *MockEquipmentRepository) ClearLocation(ctx context.Context, locationID uuid.UUID) error {
	args := m.Called(ctx, locationID)
	return args.Error(0)
}

func (m *MockEquipmentRepository) ClearModel(ctx context.Context, modelID uuid.UUID) error {
	args := m.Called(ctx, modelID)
	return args.Error(0)
}

var (
	_ inventory.RecordRepository      = (*MockRecordRepository)(nil)
	_ inventory.TransactionRepository = (*MockTransactionRepository)(nil)
	_ catalog.PartTypeRepository      = (*MockPartTypeRepository)(nil)
	_ reference.LocationRepository    = (*MockReferenceRepository[reference.Location])(nil)
	_ reference.ActorRepository       = (*MockReferenceRepository[reference.Actor])(nil)
	_ reference.EquipmentRepository   = (*MockEquipmentRepository)(nil)
)

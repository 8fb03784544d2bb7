package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/catalog"
	"github.com/spares/backend/internal/domain/inventory"
	"github.com/spares/backend/internal/domain/reference"
	"github.com/spares/backend/internal/domain/shared"
	"github.com/spares/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	spanService = "inventory_ledger"

	// InitialStockReason is the reason recorded for the opening check-in of a new record
	InitialStockReason = "Initial stock"
)

// LedgerServiceConfig holds the dependencies of a LedgerService
type LedgerServiceConfig struct {
	Records      inventory.RecordRepository
	Transactions inventory.TransactionRepository
	PartTypes    catalog.PartTypeRepository
	Locations    reference.LocationRepository
	Actors       reference.ActorRepository
	Equipment    reference.EquipmentRepository
	// TxScope defaults to running directly on Records and Transactions
	TxScope TransactionScope
	Logger  *zap.Logger
}

// LedgerService runs the inventory ledger: every quantity change is applied
// to a locked record and booked as exactly one transaction in the same
// database transaction.
type LedgerService struct {
	recordRepo      inventory.RecordRepository
	transactionRepo inventory.TransactionRepository
	partTypeRepo    catalog.PartTypeRepository
	locationRepo    reference.LocationRepository
	actorRepo       reference.ActorRepository
	equipmentRepo   reference.EquipmentRepository
	txScope         TransactionScope
	eventPublisher  shared.EventPublisher
	metrics         *telemetry.LedgerMetrics
	logger          *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(cfg LedgerServiceConfig) *LedgerService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	txScope := cfg.TxScope
	if txScope == nil {
		txScope = directScope{LedgerRepositories{Records: cfg.Records, Transactions: cfg.Transactions}}
	}
	return &LedgerService{
		recordRepo:      cfg.Records,
		transactionRepo: cfg.Transactions,
		partTypeRepo:    cfg.PartTypes,
		locationRepo:    cfg.Locations,
		actorRepo:       cfg.Actors,
		equipmentRepo:   cfg.Equipment,
		txScope:         txScope,
		logger:          logger.Named("ledger"),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLedgerMetrics sets the metrics recorder (optional)
func (s *LedgerService) SetLedgerMetrics(metrics *telemetry.LedgerMetrics) {
	s.metrics = metrics
}

// ===================== Ledger operations =====================

// Allocate reserves units on a record
func (s *LedgerService) Allocate(ctx context.Context, recordID uuid.UUID, req ReservationRequest) (*LedgerResult, error) {
	return s.execute(ctx, ledgerOp{
		txType:   inventory.TransactionTypeAllocation,
		recordID: recordID,
		quantity: req.Quantity,
		actorID:  req.ActorID,
		mutate: func(record *inventory.InventoryRecord) (*inventory.Transaction, error) {
			return record.Allocate(req.Quantity, req.Reason, req.ActorID)
		},
	})
}

// Deallocate releases reserved units on a record
func (s *LedgerService) Deallocate(ctx context.Context, recordID uuid.UUID, req ReservationRequest) (*LedgerResult, error) {
	return s.execute(ctx, ledgerOp{
		txType:   inventory.TransactionTypeDeallocation,
		recordID: recordID,
		quantity: req.Quantity,
		actorID:  req.ActorID,
		mutate: func(record *inventory.InventoryRecord) (*inventory.Transaction, error) {
			return record.Deallocate(req.Quantity, req.Reason, req.ActorID)
		},
	})
}

// AdjustStock changes the on-hand quantity of a record by req.Delta
func (s *LedgerService) AdjustStock(ctx context.Context, recordID uuid.UUID, req AdjustStockRequest) (*LedgerResult, error) {
	return s.execute(ctx, ledgerOp{
		txType:      req.Type,
		recordID:    recordID,
		quantity:    req.Delta,
		actorID:     req.ActorID,
		equipmentID: req.RelatedEquipmentID,
		mutate: func(record *inventory.InventoryRecord) (*inventory.Transaction, error) {
			return record.AdjustStock(req.Delta, req.Type, req.Reason, req.ActorID, req.RelatedEquipmentID)
		},
	})
}

// CheckIn adds received units to a record
func (s *LedgerService) CheckIn(ctx context.Context, recordID uuid.UUID, req StockMovementRequest) (*LedgerResult, error) {
	return s.AdjustStock(ctx, recordID, AdjustStockRequest{
		Delta:              req.Quantity,
		Type:               inventory.TransactionTypeCheckIn,
		Reason:             req.Reason,
		ActorID:            req.ActorID,
		RelatedEquipmentID: req.RelatedEquipmentID,
	})
}

// CheckOut removes units from a record; req.Quantity is positive
func (s *LedgerService) CheckOut(ctx context.Context, recordID uuid.UUID, req StockMovementRequest) (*LedgerResult, error) {
	return s.AdjustStock(ctx, recordID, AdjustStockRequest{
		Delta:              -req.Quantity,
		Type:               inventory.TransactionTypeCheckOut,
		Reason:             req.Reason,
		ActorID:            req.ActorID,
		RelatedEquipmentID: req.RelatedEquipmentID,
	})
}

// AttachNotes amends the notes of a committed transaction.
// It is not part of the atomic ledger operation that created the transaction.
func (s *LedgerService) AttachNotes(ctx context.Context, transactionID uuid.UUID, notes string) (*TransactionResponse, error) {
	tx, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, notFound(err, "Transaction not found")
	}

	tx.AttachNotes(notes)
	if err := s.transactionRepo.UpdateNotes(ctx, tx.ID, tx.Notes); err != nil {
		return nil, notFound(err, "Transaction not found")
	}

	response := ToTransactionResponse(tx)
	return &response, nil
}

type ledgerOp struct {
	txType      inventory.TransactionType
	recordID    uuid.UUID
	quantity    int
	actorID     *uuid.UUID
	equipmentID *uuid.UUID
	mutate      func(record *inventory.InventoryRecord) (*inventory.Transaction, error)
}

// execute runs one ledger operation. Cancellation is honored up to the start
// of the atomic section; once the record is locked the work runs to commit or
// rollback regardless of the caller's context.
func (s *LedgerService) execute(ctx context.Context, op ledgerOp) (*LedgerResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, op.txType.String(),
		telemetry.SpanAttrInventoryRecordID.String(op.recordID.String()),
		telemetry.SpanAttrTransactionType.String(op.txType.String()),
		telemetry.SpanAttrQuantity.Int(op.quantity),
	)
	defer span.End()
	if op.actorID != nil {
		telemetry.SetAttributes(span, telemetry.SpanAttrActorID.String(op.actorID.String()))
	}
	started := time.Now()

	if err := ctx.Err(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.verifyReferences(ctx, op.actorID, op.equipmentID); err != nil {
		telemetry.RecordError(span, err)
		s.recordOutcome(ctx, op, err, started)
		return nil, err
	}

	atomicCtx := context.WithoutCancel(ctx)
	var (
		record *inventory.InventoryRecord
		tx     *inventory.Transaction
	)
	err := s.txScope.Execute(atomicCtx, func(repos TransactionalRepositories) error {
		var err error
		record, err = repos.RecordRepo().FindByIDForUpdate(atomicCtx, op.recordID)
		if err != nil {
			return notFound(err, "Inventory record not found")
		}

		tx, err = op.mutate(record)
		if err != nil {
			return err
		}

		if err := repos.RecordRepo().Save(atomicCtx, record); err != nil {
			return fmt.Errorf("save inventory record: %w", err)
		}
		if err := repos.TransactionRepo().Create(atomicCtx, tx); err != nil {
			return fmt.Errorf("create inventory transaction: %w", err)
		}
		return nil
	})
	s.recordOutcome(ctx, op, err, started)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrTransactionID.String(tx.ID.String()))
	s.logger.Debug("ledger operation committed",
		zap.String("transaction_type", op.txType.String()),
		zap.String("inventory_record_id", record.ID.String()),
		zap.String("transaction_id", tx.ID.String()),
		zap.Int("quantity", tx.Quantity),
		zap.Int("quantity_before", tx.QuantityBefore),
		zap.Int("quantity_after", tx.QuantityAfter),
	)

	s.publishDomainEvents(ctx, record)

	return &LedgerResult{
		Record:        ToRecordResponse(record),
		TransactionID: tx.ID,
	}, nil
}

// verifyReferences checks that the optional actor and equipment exist
func (s *LedgerService) verifyReferences(ctx context.Context, actorID, equipmentID *uuid.UUID) error {
	if actorID != nil && *actorID != uuid.Nil && s.actorRepo != nil {
		if _, err := s.actorRepo.FindByID(ctx, *actorID); err != nil {
			return notFound(err, "Actor not found")
		}
	}
	if equipmentID != nil && *equipmentID != uuid.Nil && s.equipmentRepo != nil {
		if _, err := s.equipmentRepo.FindByID(ctx, *equipmentID); err != nil {
			return notFound(err, "Equipment not found")
		}
	}
	return nil
}

func (s *LedgerService) recordOutcome(ctx context.Context, op ledgerOp, err error, started time.Time) {
	if s.metrics == nil {
		return
	}
	outcome := telemetry.OutcomeCommitted
	if err != nil {
		outcome = telemetry.OutcomeFailed
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			outcome = telemetry.OutcomeRejected
		}
	}
	s.metrics.RecordOperation(ctx, op.txType.String(), outcome, op.quantity, time.Since(started))
}

// publishDomainEvents publishes the pending events of a committed record.
// Handlers run detached from the request's cancellation.
func (s *LedgerService) publishDomainEvents(ctx context.Context, record *inventory.InventoryRecord) {
	events := record.DrainEvents()
	if len(events) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	if s.metrics != nil {
		for _, event := range events {
			if lowStock, ok := event.(*inventory.StockLowEvent); ok {
				s.metrics.RecordLowStock(ctx, lowStock.LocationID, NewStockAlert(lowStock).AlertType)
			}
		}
	}

	if s.eventPublisher == nil {
		return
	}
	// Handler errors are logged by the event bus; the ledger change is already committed
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("inventory_record_id", record.ID.String()),
			zap.Int("event_count", len(events)),
			zap.Error(err),
		)
	}
}

// ===================== Records =====================

// CreateRecord starts tracking a part type at a location. A positive initial
// quantity is booked as a check-in in the same database transaction.
func (s *LedgerService) CreateRecord(ctx context.Context, req CreateRecordRequest) (*RecordResponse, error) {
	if req.InitialQuantity < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Initial quantity cannot be negative")
	}
	if _, err := s.partTypeRepo.FindByID(ctx, req.PartTypeID); err != nil {
		return nil, notFound(err, "Part type not found")
	}
	if _, err := s.locationRepo.FindByID(ctx, req.LocationID); err != nil {
		return nil, notFound(err, "Location not found")
	}
	if err := s.verifyReferences(ctx, req.ActorID, nil); err != nil {
		return nil, err
	}

	record, err := inventory.NewInventoryRecord(req.PartTypeID, req.LocationID, inventory.RecordSettings{
		MinimumQuantity: req.MinimumQuantity,
		ReorderQuantity: req.ReorderQuantity,
		StorageDetail:   req.StorageDetail,
		Notes:           req.Notes,
		Tags:            req.Tags,
	})
	if err != nil {
		return nil, err
	}

	var initial *inventory.Transaction
	if req.InitialQuantity > 0 {
		initial, err = record.AdjustStock(req.InitialQuantity, inventory.TransactionTypeCheckIn, InitialStockReason, req.ActorID, nil)
		if err != nil {
			return nil, err
		}
	} else {
		record.CheckStockLevel()
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.RecordRepo().Save(ctx, record); err != nil {
			return err
		}
		if initial == nil {
			return nil
		}
		if err := repos.TransactionRepo().Create(ctx, initial); err != nil {
			return fmt.Errorf("create initial stock transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, record)

	response := ToRecordResponse(record)
	return &response, nil
}

// GetRecord retrieves an inventory record by ID
func (s *LedgerService) GetRecord(ctx context.Context, id uuid.UUID) (*RecordResponse, error) {
	record, err := s.recordRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Inventory record not found")
	}
	response := ToRecordResponse(record)
	return &response, nil
}

// ListRecords retrieves inventory records with filtering and pagination
func (s *LedgerService) ListRecords(ctx context.Context, filter RecordListFilter) ([]RecordResponse, int64, error) {
	domainFilter := inventory.RecordFilter{
		Filter:         shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search),
		PartTypeID:     filter.PartTypeID,
		LocationID:     filter.LocationID,
		Category:       filter.Category,
		ManufacturerID: filter.ManufacturerID,
		LowStock:       filter.LowStock,
	}

	records, err := s.recordRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.recordRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToRecordResponses(records), total, nil
}

// UpdateSettings edits thresholds, storage detail, notes and tags of a record
func (s *LedgerService) UpdateSettings(ctx context.Context, id uuid.UUID, req UpdateRecordRequest) (*RecordResponse, error) {
	record, err := s.recordRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Inventory record not found")
	}

	if err := record.UpdateSettings(inventory.RecordSettings{
		MinimumQuantity: req.MinimumQuantity,
		ReorderQuantity: req.ReorderQuantity,
		StorageDetail:   req.StorageDetail,
		Notes:           req.Notes,
		Tags:            req.Tags,
	}); err != nil {
		return nil, err
	}

	if err := s.recordRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, record)

	response := ToRecordResponse(record)
	return &response, nil
}

// DeleteRecord deletes a record that has no ledger history
func (s *LedgerService) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	if _, err := s.recordRepo.FindByID(ctx, id); err != nil {
		return notFound(err, "Inventory record not found")
	}

	count, err := s.transactionRepo.CountByRecord(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewReferenceProtectedError(
			fmt.Sprintf("Cannot delete inventory record with %d transactions", count))
	}

	return s.recordRepo.Delete(ctx, id)
}

// ===================== Transactions =====================

// ListTransactions retrieves ledger entries, newest first by default
func (s *LedgerService) ListTransactions(ctx context.Context, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, 0, shared.NewDomainError(shared.CodeInvalidTransactionType, "Invalid transaction type")
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, 0, shared.NewValidationError("from must not be after to")
	}

	domainFilter := inventory.TransactionFilter{
		Filter:             shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search),
		InventoryRecordID:  filter.InventoryRecordID,
		PartTypeID:         filter.PartTypeID,
		LocationID:         filter.LocationID,
		Type:               filter.Type,
		ActorID:            filter.ActorID,
		RelatedEquipmentID: filter.RelatedEquipmentID,
		From:               filter.From,
		To:                 filter.To,
	}

	txs, err := s.transactionRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.transactionRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToTransactionResponses(txs), total, nil
}

// GetTransaction retrieves a ledger entry by ID
func (s *LedgerService) GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Transaction not found")
	}
	response := ToTransactionResponse(tx)
	return &response, nil
}

// notFound replaces the generic not found error with one naming the resource
func notFound(err error, message string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError(message)
	}
	return err
}

package inventory

import (
	"context"

	"github.com/spares/backend/internal/domain/inventory"
)

// TransactionScope runs ledger work in one database transaction. Execute
// commits when fn returns nil and rolls back otherwise; a record row lock
// taken inside fn is held until fn returns.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the ledger repositories bound to the
// current transaction
type TransactionalRepositories interface {
	RecordRepo() inventory.RecordRepository
	TransactionRepo() inventory.TransactionRepository
}

// LedgerRepositories is a plain TransactionalRepositories value
type LedgerRepositories struct {
	Records      inventory.RecordRepository
	Transactions inventory.TransactionRepository
}

func (r LedgerRepositories) RecordRepo() inventory.RecordRepository           { return r.Records }
func (r LedgerRepositories) TransactionRepo() inventory.TransactionRepository { return r.Transactions }

// directScope hands fn the service's own repositories with no transaction.
// It serves unit tests, where the repositories are mocks.
type directScope struct {
	repos LedgerRepositories
}

func (s directScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}

var (
	_ TransactionScope          = directScope{}
	_ TransactionalRepositories = LedgerRepositories{}
)

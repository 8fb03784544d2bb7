package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	appinv "github.com/spares/backend/internal/application/inventory"
	"github.com/spares/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase wraps a sqlmock connection in a postgres-dialect Database
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func TestDatabase_Ping(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectPing()

	assert.NoError(t, db.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectClose()

	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_PingError(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectPing().WillReturnError(assert.AnError)

	assert.ErrorIs(t, db.Ping(context.Background()), assert.AnError)
}

func TestGormInventoryRecordRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("locks the row", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		id := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "inventory_records" WHERE id = \$1 ORDER BY .* LIMIT .* FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "part_type_id", "location_id", "quantity_on_hand", "quantity_reserved", "tags"}).
				AddRow(id.String(), uuid.NewString(), uuid.NewString(), 7, 2, "[]"))

		record, err := NewGormInventoryRecordRepository(db.DB).FindByIDForUpdate(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, 5, record.QuantityAvailable())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`FOR UPDATE`).WillReturnError(gorm.ErrRecordNotFound)

		_, err := NewGormInventoryRecordRepository(db.DB).FindByIDForUpdate(context.Background(), uuid.New())

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormTransactionScope(t *testing.T) {
	t.Run("commits when fn succeeds", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := NewGormTransactionScope(db.DB).Execute(context.Background(), func(repos appinv.TransactionalRepositories) error {
			assert.NotNil(t, repos.RecordRepo())
			assert.NotNil(t, repos.TransactionRepo())
			return nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()
		rejected := shared.NewDomainError(shared.CodeInsufficientStock, "Cannot allocate 3 units. Only 1 available.")

		err := NewGormTransactionScope(db.DB).Execute(context.Background(), func(appinv.TransactionalRepositories) error {
			return rejected
		})

		assert.True(t, errors.Is(err, rejected))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrRecordNotFound), shared.ErrNotFound)
	assert.ErrorIs(t, translateError(gorm.ErrDuplicatedKey), shared.ErrAlreadyExists)
	assert.True(t, shared.IsCode(translateError(gorm.ErrForeignKeyViolated), shared.CodeReferenceProtected))
	assert.Equal(t, assert.AnError, translateError(assert.AnError))
}

func TestRepositoryDelete_ForeignKeyViolation(t *testing.T) {
	restrict := &pgconn.PgError{Code: "23503", Message: "update or delete violates foreign key constraint"}

	tests := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock)
		delete func(db *gorm.DB, id uuid.UUID) error
	}{
		{
			name: "location",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM "locations"`).WillReturnError(restrict)
			},
			delete: func(db *gorm.DB, id uuid.UUID) error {
				return NewGormLocationRepository(db).Delete(context.Background(), id)
			},
		},
		{
			name: "inventory record",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM "inventory_records"`).WillReturnError(restrict)
			},
			delete: func(db *gorm.DB, id uuid.UUID) error {
				return NewGormInventoryRecordRepository(db).Delete(context.Background(), id)
			},
		},
		{
			name: "part type",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM "part_type_compatible_models"`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`DELETE FROM "part_types"`).WillReturnError(restrict)
				mock.ExpectRollback()
			},
			delete: func(db *gorm.DB, id uuid.UUID) error {
				return NewGormPartTypeRepository(db).Delete(context.Background(), id)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, mockDB := newMockDatabase(t)
			defer mockDB.Close()
			tt.expect(mock)

			err := tt.delete(db.DB, uuid.New())

			assert.True(t, shared.IsCode(err, shared.CodeReferenceProtected), "got %v", err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

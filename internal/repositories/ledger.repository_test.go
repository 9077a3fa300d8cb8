package repositories

import (
	"context"
	"regexp"
	"testing"

	"cleanhub/internal/models"
	"cleanhub/internal/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository_DecreaseBalance(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		expected bool
	}{
		{name: "balance covers the debit", affected: 1, expected: true},
		{name: "balance too low or user missing", affected: 0, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewLedgerRepository(db)
			userID := uuid.New()
			amount := decimal.NewFromInt(54)

			mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET balance = balance -")).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := repo.DecreaseBalance(context.Background(), userID, amount)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLedgerRepository_GetBalance(t *testing.T) {
	t.Run("returns the stored balance", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewLedgerRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT balance FROM users")).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("12.50"))

		balance, err := repo.GetBalance(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, "12.50", balance.StringFixed(2))
	})

	t.Run("missing user", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewLedgerRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT balance FROM users")).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}))

		_, err := repo.GetBalance(context.Background(), uuid.New())
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestLedgerRepository_FindByEventKey(t *testing.T) {
	t.Run("unknown key", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewLedgerRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "ledger_entries" WHERE event_key = $1`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		entry, err := repo.FindByEventKey(context.Background(), "payout:x")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("applied key", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewLedgerRepository(db)
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "ledger_entries" WHERE event_key = $1`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "event_key", "kind", "amount"}).
				AddRow(id, "payout:x", "credit", "54.00"))

		entry, err := repo.FindByEventKey(context.Background(), "payout:x")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, id, entry.ID)
		assert.Equal(t, models.LedgerCredit, entry.Kind)
		assert.Equal(t, "54.00", entry.Amount.StringFixed(2))
	})
}

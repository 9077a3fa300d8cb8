package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"cleanhub/internal/database"
	"cleanhub/internal/models"
	"cleanhub/internal/repositories"
	"cleanhub/internal/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	selectEntry   = regexp.QuoteMeta(`SELECT * FROM "ledger_entries" WHERE event_key = $1`)
	debitBalance  = regexp.QuoteMeta("UPDATE users SET balance = balance -")
	creditBalance = regexp.QuoteMeta("UPDATE users SET balance = balance +")
	selectBalance = regexp.QuoteMeta("SELECT balance FROM users")
	insertEntry   = regexp.QuoteMeta(`INSERT INTO "ledger_entries"`)
)

func newLedgerUnderTest(t *testing.T) (*LedgerService, sqlmock.Sqlmock) {
	gormDB, mock := setupTestDB(t)
	db := database.NewWithSQL(gormDB)
	return NewLedgerService(NewTransactionService(db), repositories.New(db)), mock
}

func TestLedgerService_Debit_InsufficientFunds(t *testing.T) {
	ledger, mock := newLedgerUnderTest(t)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(selectEntry).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(debitBalance).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectBalance).WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("10.00"))
	mock.ExpectRollback()

	entry, err := ledger.Debit(context.Background(), userID, decimal.NewFromInt(54), "booking:x", nil)
	assert.Nil(t, entry)
	require.ErrorIs(t, err, types.ErrInsufficientFunds)

	var insufficient *types.InsufficientFundsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "54.00", insufficient.Required.StringFixed(2))
	assert.Equal(t, "10.00", insufficient.Current.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerService_Debit_MissingUser(t *testing.T) {
	ledger, mock := newLedgerUnderTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectEntry).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(debitBalance).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectBalance).WillReturnRows(sqlmock.NewRows([]string{"balance"}))
	mock.ExpectRollback()

	_, err := ledger.Debit(context.Background(), uuid.New(), decimal.NewFromInt(54), "booking:x", nil)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerService_Debit_Success(t *testing.T) {
	ledger, mock := newLedgerUnderTest(t)
	userID := uuid.New()
	serviceID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(selectEntry).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(debitBalance).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectBalance).WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("46.00"))
	mock.ExpectQuery(insertEntry).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	entry, err := ledger.Debit(
		context.Background(),
		userID,
		decimal.NewFromInt(54),
		models.BookingKey(serviceID),
		&serviceID,
	)
	require.NoError(t, err)
	assert.Equal(t, models.LedgerDebit, entry.Kind)
	assert.Equal(t, "54.00", entry.Amount.StringFixed(2))
	assert.Equal(t, "46.00", entry.BalanceAfter.StringFixed(2))
	assert.Equal(t, models.BookingKey(serviceID), entry.EventKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerService_Credit_ReplayedKeyIsNoop(t *testing.T) {
	ledger, mock := newLedgerUnderTest(t)
	existingID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(selectEntry).WillReturnRows(
		sqlmock.NewRows([]string{"id", "event_key", "kind", "amount"}).
			AddRow(existingID, "payout:x", "credit", "54.00"),
	)
	mock.ExpectCommit()

	entry, err := ledger.Credit(context.Background(), uuid.New(), decimal.NewFromInt(54), "payout:x", nil)
	require.NoError(t, err)
	assert.Equal(t, existingID, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet(), "no balance update may run for a replayed key")
}

func TestLedgerService_Deposit(t *testing.T) {
	ledger, mock := newLedgerUnderTest(t)
	userID := uuid.New()
	depositID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(selectEntry).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(creditBalance).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectBalance).WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("100.00"))
	mock.ExpectQuery(insertEntry).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	entry, recorded, err := ledger.Deposit(
		context.Background(),
		userID,
		decimal.NewFromInt(100),
		models.DepositKey(depositID),
		"Bank transfer",
	)
	require.NoError(t, err)
	assert.True(t, recorded)
	assert.Equal(t, models.LedgerCredit, entry.Kind)
	assert.Equal(t, "Bank transfer", entry.Description)
	assert.Nil(t, entry.ServiceID)

	mock.ExpectBegin()
	mock.ExpectQuery(selectEntry).WillReturnRows(
		sqlmock.NewRows([]string{"id", "event_key", "kind", "amount", "description"}).
			AddRow(entry.ID, models.DepositKey(depositID), "credit", "100.00", "Bank transfer"),
	)
	mock.ExpectCommit()

	replayed, recorded, err := ledger.Deposit(
		context.Background(),
		userID,
		decimal.NewFromInt(100),
		models.DepositKey(depositID),
		"Bank transfer",
	)
	require.NoError(t, err)
	assert.False(t, recorded)
	assert.Equal(t, entry.ID, replayed.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerService_Refund_UnknownUser(t *testing.T) {
	ledger, mock := newLedgerUnderTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectEntry).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(creditBalance).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := ledger.Refund(context.Background(), uuid.New(), decimal.NewFromInt(10), "refund:x", nil)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerService_RejectsNonPositiveAmounts(t *testing.T) {
	ledger, mock := newLedgerUnderTest(t)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := ledger.Debit(context.Background(), uuid.New(), amount, "booking:x", nil)
		assert.ErrorIs(t, err, types.ErrValidation)
	}

	_, err := ledger.Credit(context.Background(), uuid.New(), decimal.NewFromInt(5), "", nil)
	assert.ErrorIs(t, err, types.ErrValidation)

	assert.NoError(t, mock.ExpectationsWereMet())
}

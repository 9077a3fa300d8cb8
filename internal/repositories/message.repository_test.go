package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"cleanhub/internal/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_MarkRead(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMessageRepository(db)
	serviceID := uuid.New()
	userID := uuid.New()
	at := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "messages" SET "recipients"=(`)).
		WithArgs(
			userID.String(),
			at,
			sqlmock.AnyArg(),
			serviceID,
			`[{"userId":"`+userID.String()+`","read":false}]`,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	marked, err := repo.MarkRead(context.Background(), serviceID, userID, at)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMessageRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "messages"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, types.ErrNotFound)
}

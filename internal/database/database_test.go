package database

import (
	"context"
	"testing"
	"time"

	"cleanhub/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestCacheConstants(t *testing.T) {
	assert.Equal(t, 0, GENERAL_CACHE_INDEX)
	assert.Equal(t, 1, USER_CACHE_INDEX)
	assert.Equal(t, 2, EVENTS_CACHE_INDEX)
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.Config{
		DatabaseHost:     "db",
		DatabasePort:     5432,
		DatabaseUser:     "cleanhub",
		DatabasePassword: "secret",
		DatabaseName:     "cleanhub",
	})

	assert.Equal(
		t,
		"host=db port=5432 user=cleanhub password=secret dbname=cleanhub sslmode=disable TimeZone=UTC",
		dsn,
	)
}

func TestCacheBuilder_Keys(t *testing.T) {
	id := uuid.MustParse("0190d0a4-3c1e-7b7a-9d7e-2f1f1f1f1f1f")

	assert.Equal(t, id.String(), NewCacheBuilder(nil, id).Key())
	assert.Equal(t, "user:"+id.String(), NewCacheBuilder(nil, id).WithHash("user").Key())
	assert.Equal(t, "plain", NewCacheBuilder(nil, "plain").WithHash("").Key())
}

func TestCacheBuilder_MarshalErrorSurfaces(t *testing.T) {
	builder := NewCacheBuilder(nil, "bad").WithStruct(make(chan int))

	assert.Error(t, builder.Set())
	_, err := builder.Get(&struct{}{})
	assert.Error(t, err)
}

func TestCacheBuilder_TimeoutContext(t *testing.T) {
	t.Run("applies default timeout", func(t *testing.T) {
		ctx, cancel := NewCacheBuilder(nil, "k").timeoutContext()
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(defaultCacheTimeout), deadline, time.Second)
	})

	t.Run("keeps a shorter parent deadline", func(t *testing.T) {
		parent, parentCancel := context.WithTimeout(context.Background(), time.Second)
		defer parentCancel()
		parentDeadline, _ := parent.Deadline()

		ctx, cancel := NewCacheBuilder(nil, "k").WithContext(parent).timeoutContext()
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.Equal(t, parentDeadline, deadline)
	})
}

func TestCreateIndexes(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	db := NewWithSQL(gormDB)
	require.NoError(t, db.CreateIndexes())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateModels_StopsAtFirstFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	db := NewWithSQL(gormDB)
	assert.Error(t, db.MigrateModels())
	assert.NoError(t, mock.ExpectationsWereMet())
}

package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()

	_, ok := GetTransaction(ctx)
	assert.False(t, ok)

	tx := &gorm.DB{}
	got, ok := GetTransaction(WithTransaction(ctx, tx))
	assert.True(t, ok)
	assert.Same(t, tx, got)
}

func TestDBPrefersTransaction(t *testing.T) {
	tx := &gorm.DB{}
	ctx := WithTransaction(context.Background(), tx)

	assert.Same(t, tx, DB(ctx, &gorm.DB{}))
}

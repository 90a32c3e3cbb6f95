package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithTx(t *testing.T) {
	t.Run("nil transaction leaves context untouched", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, ctx, WithTx(ctx, nil))

		_, ok := From(ctx)
		assert.False(t, ok)
	})

	t.Run("round-trips transaction", func(t *testing.T) {
		want := &sql.Tx{}
		got, ok := From(WithTx(context.Background(), want))
		assert.True(t, ok)
		assert.Same(t, want, got)
	})

	t.Run("querier prefers transaction", func(t *testing.T) {
		db := &sql.DB{}
		txn := &sql.Tx{}

		assert.Same(t, db, QuerierFrom(context.Background(), db))
		assert.Same(t, txn, QuerierFrom(WithTx(context.Background(), txn), db))
	})
}

package ledger

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "raffle/pkg/domain"
)

func TestDeriveAccount(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, DeriveAccount("raffle", 1), DeriveAccount("raffle", 1))
	})

	t.Run("distinct ids give distinct accounts", func(t *testing.T) {
		seen := make(map[Account]uint64)
		for n := uint64(0); n < 1000; n++ {
			acc := DeriveAccount("raffle", n)
			prev, dup := seen[acc]
			require.False(t, dup, "ids %d and %d collide", prev, n)
			seen[acc] = n
		}
	})

	t.Run("namespace separates key spaces", func(t *testing.T) {
		assert.NotEqual(t, DeriveAccount("raffle", 1), DeriveAccount("raffl", 1))
		assert.NotEqual(t, DeriveAccount("raffle", 1), DeriveAccount("registry", 1))
	})

	t.Run("escrow uses raffle namespace", func(t *testing.T) {
		assert.Equal(t, DeriveAccount("raffle", 9), EscrowAccount(id.RaffleID(9)))
	})
}

func TestMemory_TransferNative(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Credit("alice", 100)

	t.Run("moves funds", func(t *testing.T) {
		require.NoError(t, m.TransferNative(ctx, "alice", "escrow", 40))
		bal, _ := m.Balance(ctx, "alice")
		assert.Equal(t, uint64(60), bal)
		bal, _ = m.Balance(ctx, "escrow")
		assert.Equal(t, uint64(40), bal)
	})

	t.Run("refuses overdraft and changes nothing", func(t *testing.T) {
		err := m.TransferNative(ctx, "alice", "escrow", 61)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		bal, _ := m.Balance(ctx, "alice")
		assert.Equal(t, uint64(60), bal)
	})

	t.Run("rejects zero amount and empty accounts", func(t *testing.T) {
		assert.ErrorIs(t, m.TransferNative(ctx, "alice", "escrow", 0), ErrInvalidAmount)
		assert.ErrorIs(t, m.TransferNative(ctx, "", "escrow", 1), ErrInvalidAccount)
	})

	t.Run("rejects amounts beyond the signed 64-bit range", func(t *testing.T) {
		assert.ErrorIs(t, m.TransferNative(ctx, "alice", "escrow", math.MaxInt64+1), ErrAmountOutOfRange)
	})

	t.Run("refuses to overflow the destination", func(t *testing.T) {
		full := NewMemory()
		full.Credit("escrow", math.MaxUint64-5)
		full.Credit("bob", 10)

		assert.ErrorIs(t, full.TransferNative(ctx, "bob", "escrow", 6), ErrBalanceOverflow)
		bal, _ := full.Balance(ctx, "bob")
		assert.Equal(t, uint64(10), bal)
		bal, _ = full.Balance(ctx, "escrow")
		assert.Equal(t, uint64(math.MaxUint64-5), bal)

		require.NoError(t, full.TransferNative(ctx, "bob", "escrow", 5))
	})

	t.Run("hook error aborts the transfer", func(t *testing.T) {
		boom := errors.New("boom")
		m.SetTransferHook(func(context.Context, Account, Account, uint64) error { return boom })
		defer m.SetTransferHook(nil)

		assert.ErrorIs(t, m.TransferNative(ctx, "alice", "escrow", 1), boom)
		bal, _ := m.Balance(ctx, "alice")
		assert.Equal(t, uint64(60), bal)
	})
}

func TestMemory_TransferAsset(t *testing.T) {
	ctx := context.Background()
	asset := id.AssetID{7}
	m := NewMemory()
	m.Mint(asset, "creator", 1)

	require.NoError(t, m.TransferAsset(ctx, asset, "creator", "winner", 1))
	assert.Equal(t, uint64(0), m.AssetBalance(asset, "creator"))
	assert.Equal(t, uint64(1), m.AssetBalance(asset, "winner"))

	err := m.TransferAsset(ctx, asset, "creator", "winner", 1)
	assert.ErrorIs(t, err, ErrInsufficientAsset)

	err = m.TransferAsset(ctx, id.AssetID{8}, "creator", "winner", 1)
	assert.ErrorIs(t, err, ErrInsufficientAsset)
}

func TestMemory_Clock(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(WithNow(func() time.Time { return fixed }), WithMinimumBalance(5))

	assert.Equal(t, fixed, m.Now(ctx))
	assert.Equal(t, uint64(5), m.MinimumBalance(ctx))

	m.SetSlot(77)
	slot, err := m.Slot(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), slot)

	later := fixed.Add(time.Hour)
	m.SetTime(later)
	assert.Equal(t, later, m.Now(ctx))
}

func TestMemory_SlotAdvances(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	first, err := m.Slot(ctx)
	require.NoError(t, err)
	second, err := m.Slot(ctx)
	require.NoError(t, err)
	assert.Greater(t, second, first)

	m.SetSlot(77)
	next, err := m.Slot(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), next)
	next, err = m.Slot(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(78), next)
}

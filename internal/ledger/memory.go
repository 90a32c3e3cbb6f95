package ledger

import (
	"context"
	"math"
	"sync"
	"time"

	id "raffle/pkg/domain"
)

// TransferHook runs inside TransferNative before funds move. Returning an
// error aborts the transfer. Tests use it to simulate a callee that calls
// back into the engine.
type TransferHook func(ctx context.Context, from, to Account, amount uint64) error

// Memory is an in-process Ledger and Clock.
type Memory struct {
	mu         sync.Mutex
	balances   map[Account]uint64
	assets     map[id.AssetID]map[Account]uint64
	minBalance uint64
	now        func() time.Time
	slot       uint64
	hook       TransferHook
}

// MemoryOption configures a Memory ledger.
type MemoryOption func(*Memory)

// WithMinimumBalance sets the retained minimum balance.
func WithMinimumBalance(v uint64) MemoryOption {
	return func(m *Memory) {
		m.minBalance = v
	}
}

// WithTransferHook installs a hook invoked by TransferNative.
func WithTransferHook(h TransferHook) MemoryOption {
	return func(m *Memory) {
		m.hook = h
	}
}

// WithNow overrides the wall clock.
func WithNow(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		balances: make(map[Account]uint64),
		assets:   make(map[id.AssetID]map[Account]uint64),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Credit adds native funds to an account.
func (m *Memory) Credit(account Account, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[account] += amount
}

// Mint creates amount units of asset held by owner.
func (m *Memory) Mint(asset id.AssetID, owner Account, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	holders, ok := m.assets[asset]
	if !ok {
		holders = make(map[Account]uint64)
		m.assets[asset] = holders
	}
	holders[owner] += amount
}

// AssetBalance returns how many units of asset the account holds.
func (m *Memory) AssetBalance(asset id.AssetID, account Account) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assets[asset][account]
}

// SetTime pins the clock.
func (m *Memory) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = func() time.Time { return t }
}

// SetSlot sets the value the next Slot call reports.
func (m *Memory) SetSlot(slot uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slot = slot
}

// SetTransferHook replaces the transfer hook.
func (m *Memory) SetTransferHook(h TransferHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = h
}

func (m *Memory) TransferNative(ctx context.Context, from, to Account, amount uint64) error {
	if err := validateTransfer(from, to, amount); err != nil {
		return err
	}

	m.mu.Lock()
	hook := m.hook
	m.mu.Unlock()
	if hook != nil {
		if err := hook(ctx, from, to, amount); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[from] < amount {
		return ErrInsufficientFunds
	}
	if from != to && m.balances[to] > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	m.balances[from] -= amount
	m.balances[to] += amount
	return nil
}

func (m *Memory) Balance(_ context.Context, account Account) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[account], nil
}

func (m *Memory) MinimumBalance(context.Context) uint64 {
	return m.minBalance
}

func (m *Memory) TransferAsset(_ context.Context, asset id.AssetID, from, to Account, amount uint64) error {
	if err := validateTransfer(from, to, amount); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	holders := m.assets[asset]
	if holders[from] < amount {
		return ErrInsufficientAsset
	}
	if from != to && holders[to] > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	holders[from] -= amount
	holders[to] += amount
	return nil
}

func (m *Memory) Now(context.Context) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now()
}

// Slot returns the current slot and advances the counter.
func (m *Memory) Slot(context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot := m.slot
	m.slot++
	return slot, nil
}

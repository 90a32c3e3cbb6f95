package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"raffle/internal/raffle/models"
	id "raffle/pkg/domain"
	dErrors "raffle/pkg/domain-errors"
	"raffle/pkg/platform/sentinel"
)

// numShards spreads raffle locks so unrelated raffles do not contend.
const numShards = 128

const defaultTxTimeout = 5 * time.Second

// Memory is an in-process store. Raffle rows are locked by shard on first
// access; the registry has its own lock, always taken before any shard.
type Memory struct {
	mu       sync.RWMutex
	registry models.Registry
	raffles  map[id.RaffleID]*models.Raffle

	registryLock sync.Mutex
	shards       [numShards]sync.Mutex
	timeout      time.Duration
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithTxTimeout bounds transactions whose context has no deadline.
func WithTxTimeout(d time.Duration) MemoryOption {
	return func(m *Memory) {
		m.timeout = d
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		raffles: make(map[id.RaffleID]*models.Raffle),
		timeout: defaultTxTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type memTxKey struct{}

type memTx struct {
	store          *Memory
	registry       *models.Registry
	raffles        map[id.RaffleID]*models.Raffle
	registryLocked bool
	heldShards     []int
}

func (m *Memory) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if t, ok := ctx.Value(memTxKey{}).(*memTx); ok && t.store == m {
		return fn(ctx, t)
	}

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	t := &memTx{store: m, raffles: make(map[id.RaffleID]*models.Raffle)}
	defer t.release()

	if err := fn(context.WithValue(ctx, memTxKey{}, t), t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	t.commit()
	return nil
}

func (t *memTx) LoadRegistry(_ context.Context) (*models.Registry, error) {
	if !t.registryLocked {
		t.store.registryLock.Lock()
		t.registryLocked = true
	}
	if t.registry != nil {
		r := *t.registry
		return &r, nil
	}
	t.store.mu.RLock()
	r := t.store.registry
	t.store.mu.RUnlock()
	return &r, nil
}

func (t *memTx) SaveRegistry(_ context.Context, registry *models.Registry) error {
	if !t.registryLocked {
		return dErrors.New(dErrors.CodeInternal, "registry saved without being loaded")
	}
	r := *registry
	t.registry = &r
	return nil
}

func (t *memTx) LoadRaffle(_ context.Context, raffleID id.RaffleID) (*models.Raffle, error) {
	t.lockShard(raffleID)
	if staged, ok := t.raffles[raffleID]; ok {
		return staged.Clone(), nil
	}
	t.store.mu.RLock()
	committed, ok := t.store.raffles[raffleID]
	t.store.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return committed.Clone(), nil
}

func (t *memTx) SaveRaffle(_ context.Context, raffle *models.Raffle) error {
	t.lockShard(raffle.ID)
	t.raffles[raffle.ID] = raffle.Clone()
	return nil
}

func (t *memTx) lockShard(raffleID id.RaffleID) {
	shard := shardFor(raffleID)
	if slices.Contains(t.heldShards, shard) {
		return
	}
	t.store.shards[shard].Lock()
	t.heldShards = append(t.heldShards, shard)
}

func (t *memTx) commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.registry != nil {
		t.store.registry = *t.registry
	}
	for raffleID, r := range t.raffles {
		t.store.raffles[raffleID] = r
	}
}

func (t *memTx) release() {
	for i := len(t.heldShards) - 1; i >= 0; i-- {
		t.store.shards[t.heldShards[i]].Unlock()
	}
	t.heldShards = nil
	if t.registryLocked {
		t.store.registryLock.Unlock()
		t.registryLocked = false
	}
}

// shardFor hashes the id with FNV-1a.
func shardFor(raffleID id.RaffleID) int {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	n := uint64(raffleID)
	for range 8 {
		h ^= uint32(n & 0xff)
		h *= fnvPrime
		n >>= 8
	}
	return int(h % numShards)
}

// -----------------------------------------------------------------------------
// Reads outside a transaction
// -----------------------------------------------------------------------------

func (m *Memory) GetRegistry(_ context.Context) (*models.Registry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r := m.registry
	return &r, nil
}

func (m *Memory) GetRaffle(_ context.Context, raffleID id.RaffleID) (*models.Raffle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.raffles[raffleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

// ListRaffles returns matching raffles ordered by id.
func (m *Memory) ListRaffles(_ context.Context, filter models.ListFilter) ([]*models.Raffle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]id.RaffleID, 0, len(m.raffles))
	for raffleID := range m.raffles {
		ids = append(ids, raffleID)
	}
	slices.Sort(ids)

	limit := listLimit(filter.Limit)
	out := make([]*models.Raffle, 0)
	for _, raffleID := range ids {
		r := m.raffles[raffleID]
		if !filter.Matches(r) {
			continue
		}
		out = append(out, r.Clone())
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

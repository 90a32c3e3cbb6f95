package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"raffle/internal/raffle/models"
	id "raffle/pkg/domain"
	dErrors "raffle/pkg/domain-errors"
	"raffle/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
	now   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) bootstrap() {
	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx Tx) error {
		reg, err := tx.LoadRegistry(ctx)
		if err != nil {
			return err
		}
		reg.ApplyBootstrap(id.Identity{1})
		return tx.SaveRegistry(ctx, reg)
	})
	s.Require().NoError(err)
}

func (s *MemoryStoreSuite) create(creator id.Identity) id.RaffleID {
	var raffleID id.RaffleID
	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx Tx) error {
		reg, err := tx.LoadRegistry(ctx)
		if err != nil {
			return err
		}
		if raffleID, err = reg.IssueID(); err != nil {
			return err
		}
		if err := tx.SaveRegistry(ctx, reg); err != nil {
			return err
		}
		r := models.NewRaffle(raffleID, creator, models.CreateRaffleRequest{
			AssetRef:   id.AssetID{9},
			EntryFee:   10,
			MaxEntries: 5,
			ExpiryDate: s.now.Add(time.Hour),
		}, s.now)
		return tx.SaveRaffle(ctx, r)
	})
	s.Require().NoError(err)
	return raffleID
}

func (s *MemoryStoreSuite) TestUninitializedRegistryIsZero() {
	reg, err := s.store.GetRegistry(s.ctx)
	s.Require().NoError(err)
	s.False(reg.Initialized)
}

func (s *MemoryStoreSuite) TestCommitMakesChangesVisible() {
	s.bootstrap()
	raffleID := s.create(id.Identity{2})

	reg, err := s.store.GetRegistry(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(1), reg.RaffleCount)

	r, err := s.store.GetRaffle(s.ctx, raffleID)
	s.Require().NoError(err)
	s.Equal(id.Identity{2}, r.Creator)
}

func (s *MemoryStoreSuite) TestFailedTxDiscardsChanges() {
	s.bootstrap()
	raffleID := s.create(id.Identity{2})
	boom := errors.New("boom")

	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx Tx) error {
		r, err := tx.LoadRaffle(ctx, raffleID)
		if err != nil {
			return err
		}
		r.ApplyClose()
		if err := tx.SaveRaffle(ctx, r); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	r, err := s.store.GetRaffle(s.ctx, raffleID)
	s.Require().NoError(err)
	s.True(r.Active)
}

func (s *MemoryStoreSuite) TestLoadReturnsCopies() {
	s.bootstrap()
	raffleID := s.create(id.Identity{2})

	r, err := s.store.GetRaffle(s.ctx, raffleID)
	s.Require().NoError(err)
	r.Active = false

	again, err := s.store.GetRaffle(s.ctx, raffleID)
	s.Require().NoError(err)
	s.True(again.Active)
}

func (s *MemoryStoreSuite) TestMissingRaffleIsNotFound() {
	_, err := s.store.GetRaffle(s.ctx, 42)
	s.ErrorIs(err, sentinel.ErrNotFound)

	err = s.store.RunInTx(s.ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.LoadRaffle(ctx, 42)
		return err
	})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestNestedTxJoinsOuter() {
	s.bootstrap()
	raffleID := s.create(id.Identity{2})

	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx Tx) error {
		r, err := tx.LoadRaffle(ctx, raffleID)
		if err != nil {
			return err
		}
		s.Require().NoError(r.AcquireEntryLock())
		if err := tx.SaveRaffle(ctx, r); err != nil {
			return err
		}

		// Without joining, this would deadlock on the shard lock.
		return s.store.RunInTx(ctx, func(ctx context.Context, inner Tx) error {
			seen, err := inner.LoadRaffle(ctx, raffleID)
			if err != nil {
				return err
			}
			s.True(seen.Locked, "nested tx must observe staged writes")
			return nil
		})
	})
	s.Require().NoError(err)
}

func (s *MemoryStoreSuite) TestConcurrentCreatesAreGapless() {
	s.bootstrap()
	const n = 50

	var wg sync.WaitGroup
	ids := make(chan id.RaffleID, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- s.create(id.Identity{byte(i + 1)})
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[id.RaffleID]bool)
	for raffleID := range ids {
		s.False(seen[raffleID], "duplicate id %d", raffleID)
		seen[raffleID] = true
	}
	for i := 1; i <= n; i++ {
		s.True(seen[id.RaffleID(i)], "missing id %d", i)
	}

	reg, err := s.store.GetRegistry(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(n), reg.RaffleCount)
}

func (s *MemoryStoreSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	err := s.store.RunInTx(ctx, func(context.Context, Tx) error { return nil })
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}

func (s *MemoryStoreSuite) TestListRaffles() {
	s.bootstrap()
	alice, bob := id.Identity{0xA}, id.Identity{0xB}
	first := s.create(alice)
	s.create(bob)
	third := s.create(alice)

	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx Tx) error {
		r, err := tx.LoadRaffle(ctx, third)
		if err != nil {
			return err
		}
		if err := r.ApplyEntry(bob); err != nil {
			return err
		}
		return tx.SaveRaffle(ctx, r)
	})
	s.Require().NoError(err)

	all, err := s.store.ListRaffles(s.ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal(first, all[0].ID)

	byCreator, err := s.store.ListRaffles(s.ctx, models.ListFilter{Creator: &alice})
	s.Require().NoError(err)
	s.Len(byCreator, 2)

	byParticipant, err := s.store.ListRaffles(s.ctx, models.ListFilter{Participant: &bob})
	s.Require().NoError(err)
	s.Require().Len(byParticipant, 1)
	s.Equal(third, byParticipant[0].ID)

	limited, err := s.store.ListRaffles(s.ctx, models.ListFilter{Limit: 1})
	s.Require().NoError(err)
	s.Len(limited, 1)
}

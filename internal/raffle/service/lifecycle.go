package service

import (
	"context"

	"raffle/internal/ledger"
	"raffle/internal/raffle/models"
	"raffle/internal/raffle/store"
	id "raffle/pkg/domain"
	dErrors "raffle/pkg/domain-errors"
	audit "raffle/pkg/platform/audit"
)

// Bootstrap initializes the registry with caller as deployer. It succeeds once.
func (s *Service) Bootstrap(ctx context.Context, caller id.Identity) (reg *models.Registry, err error) {
	ctx, span, start := s.begin(ctx, opBootstrap, 0)
	defer func() { s.finish(ctx, span, opBootstrap, start, 0, caller, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		current, err := tx.LoadRegistry(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry")
		}
		if err := current.CanBootstrap(); err != nil {
			return err
		}
		current.ApplyBootstrap(caller)
		if err := tx.SaveRegistry(ctx, current); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registry")
		}
		reg = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "registry bootstrapped", "deployer", caller)
	s.emitAudit(ctx, audit.EventRegistryBootstrapped, 0, caller, audit.DecisionAccepted, "", "")
	return reg, nil
}

// CreateRaffle issues the next raffle id and stores an active raffle owned by caller.
func (s *Service) CreateRaffle(ctx context.Context, caller id.Identity, req models.CreateRaffleRequest) (r *models.Raffle, err error) {
	ctx, span, start := s.begin(ctx, opCreate, 0)
	var raffleID id.RaffleID
	defer func() { s.finish(ctx, span, opCreate, start, raffleID, caller, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		reg, err := tx.LoadRegistry(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry")
		}
		if !reg.Initialized {
			return models.ReasonNotInitialized.Err()
		}

		now := s.clock.Now(ctx)
		if err := models.ValidateCreate(req, now); err != nil {
			return err
		}

		issued, err := reg.IssueID()
		if err != nil {
			return err
		}
		if err := tx.SaveRegistry(ctx, reg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registry")
		}

		created := models.NewRaffle(issued, caller, req, now)
		if err := saveRaffle(ctx, tx, created); err != nil {
			return err
		}
		raffleID = issued
		r = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "raffle created",
		"raffle_id", r.ID,
		"creator", caller,
		"entry_fee", r.EntryFee,
		"max_entries", r.MaxEntries,
		"expiry_date", r.ExpiryDate,
	)
	s.emitAudit(ctx, audit.EventRaffleCreated, r.ID, caller, audit.DecisionAccepted, "", "")
	return r, nil
}

// EnterRaffle admits caller after moving amount from caller's account into escrow.
//
// The entry lock is written to the transaction before the transfer, so an
// entry issued from inside the transfer on the same transaction fails with
// OperationLocked. The lock is cleared on every return path.
func (s *Service) EnterRaffle(ctx context.Context, caller id.Identity, raffleID id.RaffleID, amount uint64) (r *models.Raffle, err error) {
	ctx, span, start := s.begin(ctx, opEnter, raffleID)
	defer func() { s.finish(ctx, span, opEnter, start, raffleID, caller, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		loaded, err := loadRaffle(ctx, tx, raffleID)
		if err != nil {
			return err
		}
		err = withEntryLock(ctx, tx, loaded, func() error {
			if err := loaded.CanEnter(raffleID, caller, amount, s.clock.Now(ctx)); err != nil {
				return err
			}
			if err := s.ledger.TransferNative(ctx, ledger.AccountOf(caller), loaded.Escrow, amount); err != nil {
				return models.ReasonTransferFailed.Wrap(err)
			}
			return loaded.ApplyEntry(caller)
		})
		if err != nil {
			return err
		}
		r = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AddFeesCollected(amount)
	}
	s.logger.InfoContext(ctx, "raffle entered",
		"raffle_id", raffleID,
		"participant", caller,
		"amount", amount,
		"entries", r.Entries.Len(),
	)
	s.emitAudit(ctx, audit.EventRaffleEntered, raffleID, caller, audit.DecisionAccepted, "", "")
	return r, nil
}

// withEntryLock acquires the raffle's entry lock, persists it, runs fn, then
// releases and persists again regardless of fn's result.
func withEntryLock(ctx context.Context, tx store.Tx, r *models.Raffle, fn func() error) (err error) {
	if err := r.AcquireEntryLock(); err != nil {
		return err
	}
	if err := saveRaffle(ctx, tx, r); err != nil {
		return err
	}
	defer func() {
		r.ReleaseEntryLock()
		if saveErr := saveRaffle(ctx, tx, r); saveErr != nil && err == nil {
			err = saveErr
		}
	}()
	return fn()
}

// PickWinner draws a provisional winner among the entries of an expired raffle.
// The raffle stays active and nothing is transferred.
func (s *Service) PickWinner(ctx context.Context, caller id.Identity, raffleID id.RaffleID) (r *models.Raffle, err error) {
	ctx, span, start := s.begin(ctx, opPick, raffleID)
	defer func() { s.finish(ctx, span, opPick, start, raffleID, caller, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	var event models.WinnerSelected
	r, err = s.mutateRaffle(ctx, raffleID, func(ctx context.Context, r *models.Raffle) error {
		now := s.clock.Now(ctx)
		if err := r.CanPickWinner(raffleID, caller, now); err != nil {
			return err
		}
		draw, err := s.draw.Draw(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to draw winner")
		}
		winner := r.ApplyWinnerPick(draw)
		event = models.WinnerSelected{
			Raffle:     r.Escrow,
			RaffleID:   r.ID,
			Winner:     winner,
			SelectedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "winner selected",
		"raffle_id", raffleID,
		"winner", event.Winner,
		"entries", r.Entries.Len(),
	)
	s.emitAudit(ctx, audit.EventWinnerSelected, raffleID, caller, audit.DecisionAccepted, "", event.Winner.String())
	s.publishWinnerSelected(ctx, event)
	return r, nil
}

// publishWinnerSelected notifies observers after commit. Failure is logged and
// counted; the selection itself stands.
func (s *Service) publishWinnerSelected(ctx context.Context, event models.WinnerSelected) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishWinnerSelected(ctx, event); err != nil {
		if s.metrics != nil {
			s.metrics.IncEventPublishFailure()
		}
		s.logger.ErrorContext(ctx, "failed to publish winner selected",
			"raffle_id", event.RaffleID,
			"error", err,
		)
	}
}

// CloseRaffle deactivates a raffle that nobody entered.
func (s *Service) CloseRaffle(ctx context.Context, caller id.Identity, raffleID id.RaffleID) (r *models.Raffle, err error) {
	ctx, span, start := s.begin(ctx, opClose, raffleID)
	defer func() { s.finish(ctx, span, opClose, start, raffleID, caller, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	r, err = s.mutateRaffle(ctx, raffleID, func(_ context.Context, r *models.Raffle) error {
		if err := r.CanClose(raffleID, caller); err != nil {
			return err
		}
		r.ApplyClose()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "raffle closed", "raffle_id", raffleID)
	s.emitAudit(ctx, audit.EventRaffleClosed, raffleID, caller, audit.DecisionAccepted, "", "")
	return r, nil
}

// ConcludeRaffle deactivates a raffle whose winner has been drawn, making the
// prize claimable.
func (s *Service) ConcludeRaffle(ctx context.Context, caller id.Identity, raffleID id.RaffleID) (r *models.Raffle, err error) {
	ctx, span, start := s.begin(ctx, opConclude, raffleID)
	defer func() { s.finish(ctx, span, opConclude, start, raffleID, caller, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	r, err = s.mutateRaffle(ctx, raffleID, func(ctx context.Context, r *models.Raffle) error {
		if err := r.CanConclude(raffleID, caller, s.clock.Now(ctx)); err != nil {
			return err
		}
		r.ApplyConclude()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "raffle concluded", "raffle_id", raffleID, "winner", *r.PartialWinner)
	s.emitAudit(ctx, audit.EventRaffleConcluded, raffleID, caller, audit.DecisionAccepted, "", "")
	return r, nil
}

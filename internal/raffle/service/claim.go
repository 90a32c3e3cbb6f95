package service

import (
	"context"
	"log/slog"

	"raffle/internal/ledger"
	"raffle/internal/raffle/models"
	"raffle/internal/raffle/store"
	id "raffle/pkg/domain"
	audit "raffle/pkg/platform/audit"
)

// ClaimNFT settles a concluded raffle: the asset moves from the creator's own
// account to the winner-side destination, escrow minus the retained minimum is
// swept to the creator, and only then is the winner recorded.
//
// The destination is not checked against the selected winner.
//
// Ledger transfers cannot join the store transaction, so if a later step
// fails the completed transfers are reversed.
func (s *Service) ClaimNFT(ctx context.Context, caller id.Identity, raffleID id.RaffleID, req models.ClaimRequest) (result *models.ClaimResult, err error) {
	ctx, span, start := s.begin(ctx, opClaim, raffleID)
	defer func() { s.finish(ctx, span, opClaim, start, raffleID, caller, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	var undo compensations
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		r, err := loadRaffle(ctx, tx, raffleID)
		if err != nil {
			return err
		}
		if err := r.CanClaim(raffleID, caller); err != nil {
			return err
		}
		if req.CreatorSource == "" || req.WinnerDestination == "" {
			return models.ReasonMissingTokenAccounts.Err()
		}
		if req.CreatorSource != ledger.AccountOf(r.Creator) {
			return models.ReasonUnauthorized.Err()
		}

		if err := s.ledger.TransferAsset(ctx, r.AssetRef, req.CreatorSource, req.WinnerDestination, 1); err != nil {
			return models.ReasonNftNotTransferred.Wrap(err)
		}
		undo.add("return asset", func(ctx context.Context) error {
			return s.ledger.TransferAsset(ctx, r.AssetRef, req.WinnerDestination, req.CreatorSource, 1)
		})

		swept, err := s.sweepEscrow(ctx, r)
		if err != nil {
			return models.ReasonTransferFailed.Wrap(err)
		}
		if swept > 0 {
			creator := ledger.AccountOf(r.Creator)
			undo.add("refund escrow", func(ctx context.Context) error {
				return s.ledger.TransferNative(ctx, creator, r.Escrow, swept)
			})
		}

		winner := r.ApplyClaim()
		if err := saveRaffle(ctx, tx, r); err != nil {
			return err
		}
		result = &models.ClaimResult{
			Raffle:       r,
			Winner:       winner,
			SweptAmount:  swept,
			AssetMovedTo: req.WinnerDestination,
		}
		return nil
	})
	if err != nil {
		undo.run(ctx, s.logger)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AddFeesSwept(result.SweptAmount)
	}
	s.logger.InfoContext(ctx, "prize claimed",
		"raffle_id", raffleID,
		"winner", result.Winner,
		"destination", req.WinnerDestination,
		"swept", result.SweptAmount,
	)
	s.emitAudit(ctx, audit.EventPrizeClaimed, raffleID, caller, audit.DecisionAccepted, "", result.Winner.String())
	return result, nil
}

// sweepEscrow moves everything above the ledger minimum from escrow to the creator.
func (s *Service) sweepEscrow(ctx context.Context, r *models.Raffle) (uint64, error) {
	balance, err := s.ledger.Balance(ctx, r.Escrow)
	if err != nil {
		return 0, err
	}
	minimum := s.ledger.MinimumBalance(ctx)
	if balance <= minimum {
		return 0, nil
	}
	swept := balance - minimum
	if err := s.ledger.TransferNative(ctx, r.Escrow, ledger.AccountOf(r.Creator), swept); err != nil {
		return 0, err
	}
	return swept, nil
}

type compensation struct {
	name string
	fn   func(ctx context.Context) error
}

// compensations undoes completed ledger steps in reverse order.
type compensations []compensation

func (c *compensations) add(name string, fn func(ctx context.Context) error) {
	*c = append(*c, compensation{name: name, fn: fn})
}

func (c compensations) run(ctx context.Context, logger *slog.Logger) {
	ctx = context.WithoutCancel(ctx)
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].fn(ctx); err != nil {
			logger.ErrorContext(ctx, "CRITICAL: claim compensation failed",
				"step", c[i].name,
				"error", err,
			)
		}
	}
}

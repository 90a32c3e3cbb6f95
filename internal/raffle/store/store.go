// Package store persists the raffle registry and raffle records.
//
// Every mutation runs inside RunInTx. Within the callback, Tx reads return
// copies and writes are staged; they become visible to other transactions
// only if the callback returns nil. A RunInTx issued with a context that
// already carries a transaction from the same store joins it.
package store

import (
	"context"

	"raffle/internal/raffle/models"
	id "raffle/pkg/domain"
)

// Tx is the transaction-scoped view of the store.
type Tx interface {
	// LoadRegistry locks and returns the registry. An uninitialized registry
	// is returned as the zero value, not an error.
	LoadRegistry(ctx context.Context) (*models.Registry, error)
	SaveRegistry(ctx context.Context, registry *models.Registry) error
	// LoadRaffle locks and returns a raffle, or sentinel.ErrNotFound.
	LoadRaffle(ctx context.Context, raffleID id.RaffleID) (*models.Raffle, error)
	SaveRaffle(ctx context.Context, raffle *models.Raffle) error
}

// DefaultListLimit bounds ListRaffles when the filter sets no limit.
const DefaultListLimit = 100

func listLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}

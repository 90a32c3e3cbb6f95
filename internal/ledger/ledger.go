// Package ledger defines the substrate the raffle engine settles against:
// native currency balances, non-fungible asset holdings, and the clock/slot
// source used for expiry checks and the winner draw.
package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"
	"time"

	id "raffle/pkg/domain"
)

// Account addresses a balance or asset holding on the ledger.
type Account string

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInsufficientAsset = errors.New("insufficient asset balance")
	ErrInvalidAmount     = errors.New("transfer amount must be positive")
	ErrAmountOutOfRange  = errors.New("transfer amount exceeds the ledger maximum")
	ErrBalanceOverflow   = errors.New("destination balance would overflow")
	ErrInvalidAccount    = errors.New("account cannot be empty")
)

// Ledger moves value between accounts. Each transfer is atomic: it either
// fully applies or returns an error and changes nothing.
type Ledger interface {
	TransferNative(ctx context.Context, from, to Account, amount uint64) error
	Balance(ctx context.Context, account Account) (uint64, error)
	// MinimumBalance is the amount an account must retain to stay alive.
	MinimumBalance(ctx context.Context) uint64
	TransferAsset(ctx context.Context, asset id.AssetID, from, to Account, amount uint64) error
}

// Clock supplies the substrate's notion of time and its monotonic slot counter.
type Clock interface {
	Now(ctx context.Context) time.Time
	Slot(ctx context.Context) (uint64, error)
}

// AccountOf returns the native account controlled by identity.
func AccountOf(identity id.Identity) Account {
	return Account(identity.String())
}

// DeriveAccount maps (namespace, id) to a program-owned account. The mapping
// is injective: the namespace is NUL-terminated and the id fixed-width.
func DeriveAccount(namespace string, n uint64) Account {
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n)
	h.Write(buf[:])
	return Account(hex.EncodeToString(h.Sum(nil)))
}

// EscrowAccount is the account holding a raffle's collected entry fees.
func EscrowAccount(raffleID id.RaffleID) Account {
	return DeriveAccount("raffle", uint64(raffleID))
}

func validateTransfer(from, to Account, amount uint64) error {
	if from == "" || to == "" {
		return ErrInvalidAccount
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	return validateAmount(amount)
}

// validateAmount keeps both adapters to the signed 64-bit range Redis
// counters support.
func validateAmount(amount uint64) error {
	if amount > math.MaxInt64 {
		return ErrAmountOutOfRange
	}
	return nil
}

package models

import (
	"time"

	"raffle/internal/ledger"
	id "raffle/pkg/domain"
)

// MaxEntriesLimit is the largest allowed max_entries.
const MaxEntriesLimit = 255

// Raffle is the aggregate root for one raffle.
//
// Invariants:
//   - EntryFee > 0 and 1 < MaxEntries <= 255
//   - Entries are distinct and never exceed MaxEntries
//   - ExpiryDate was strictly in the future at creation
//   - Active only goes true -> false
//   - PartialWinner, when set, is one of Entries
//   - Winner is set at most once, and only after Active is false
//   - Locked is false whenever no entry is in flight
type Raffle struct {
	ID            id.RaffleID
	Creator       id.Identity
	AssetRef      id.AssetID
	EntryFee      uint64
	MaxEntries    uint8
	Entries       Entries
	PartialWinner *id.Identity
	Winner        *id.Identity
	Active        bool
	Locked        bool
	ExpiryDate    time.Time
	CreatedAt     time.Time
	Escrow        ledger.Account
}

// ValidateCreate checks creation parameters in the order callers observe them.
func ValidateCreate(req CreateRaffleRequest, now time.Time) error {
	if req.EntryFee == 0 {
		return ReasonInvalidEntryFee.Err()
	}
	if req.MaxEntries <= 1 || req.MaxEntries > MaxEntriesLimit {
		return ReasonInvalidMaxEntries.Err()
	}
	if req.AssetRef.IsZero() {
		return ReasonInvalidNftMint.Err()
	}
	if !req.ExpiryDate.After(now) {
		return ReasonInvalidExpiryDate.Err()
	}
	return nil
}

// NewRaffle builds an active raffle with no entries. Parameters must have
// passed ValidateCreate.
func NewRaffle(raffleID id.RaffleID, creator id.Identity, req CreateRaffleRequest, now time.Time) *Raffle {
	return &Raffle{
		ID:         raffleID,
		Creator:    creator,
		AssetRef:   req.AssetRef,
		EntryFee:   req.EntryFee,
		MaxEntries: uint8(req.MaxEntries),
		Entries:    NewEntries(req.MaxEntries),
		Active:     true,
		ExpiryDate: req.ExpiryDate,
		CreatedAt:  now,
		Escrow:     ledger.EscrowAccount(raffleID),
	}
}

// IsExpired reports whether now is at or past the expiry date.
func (r *Raffle) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiryDate)
}

// Status derives the lifecycle state from the record's fields.
func (r *Raffle) Status(now time.Time) Status {
	switch {
	case r.Winner != nil:
		return StatusSettled
	case !r.Active && r.PartialWinner != nil:
		return StatusConcluded
	case !r.Active:
		return StatusClosed
	case r.PartialWinner != nil:
		return StatusWinnerPicked
	case r.IsExpired(now):
		return StatusExpired
	default:
		return StatusActive
	}
}

// -----------------------------------------------------------------------------
// Entry
// -----------------------------------------------------------------------------

// AcquireEntryLock marks an entry as in flight.
func (r *Raffle) AcquireEntryLock() error {
	if r.Locked {
		return ReasonOperationLocked.Err()
	}
	r.Locked = true
	return nil
}

// ReleaseEntryLock clears the in-flight marker.
func (r *Raffle) ReleaseEntryLock() {
	r.Locked = false
}

// CanEnter checks entry preconditions for caller paying amount.
func (r *Raffle) CanEnter(raffleID id.RaffleID, caller id.Identity, amount uint64, now time.Time) error {
	if !r.Active {
		return ReasonRaffleNotActive.Err()
	}
	if r.ID != raffleID {
		return ReasonRaffleNotFound.Err()
	}
	if amount < r.EntryFee {
		return ReasonInvalidRaffleEntryFee.Err()
	}
	if r.Entries.Full() {
		return ReasonMaxEntriesReached.Err()
	}
	if r.Entries.Contains(caller) {
		return ReasonAlreadyEntered.Err()
	}
	if r.IsExpired(now) {
		return ReasonRaffleExpired.Err()
	}
	return nil
}

// ApplyEntry records caller as a participant. Must only be called after
// CanEnter returns nil and the entry fee has been transferred.
func (r *Raffle) ApplyEntry(caller id.Identity) error {
	return r.Entries.Add(caller)
}

// -----------------------------------------------------------------------------
// Winner selection
// -----------------------------------------------------------------------------

func (r *Raffle) checkCreator(caller id.Identity) error {
	if r.Creator != caller {
		return ReasonUnauthorized.Err()
	}
	return nil
}

// CanPickWinner checks winner-selection preconditions.
func (r *Raffle) CanPickWinner(raffleID id.RaffleID, caller id.Identity, now time.Time) error {
	if err := r.checkCreator(caller); err != nil {
		return err
	}
	if !r.Active {
		return ReasonRaffleNotActive.Err()
	}
	if r.ID != raffleID {
		return ReasonRaffleNotFound.Err()
	}
	if r.Entries.Len() == 0 {
		return ReasonNotEnoughEntries.Err()
	}
	if !r.IsExpired(now) {
		return ReasonRaffleNotExpired.Err()
	}
	return nil
}

// ApplyWinnerPick sets the provisional winner to entries[draw mod len].
// Must only be called after CanPickWinner returns nil.
func (r *Raffle) ApplyWinnerPick(draw uint64) id.Identity {
	winner := r.Entries.At(int(draw % uint64(r.Entries.Len())))
	r.PartialWinner = &winner
	return winner
}

// -----------------------------------------------------------------------------
// Close / conclude
// -----------------------------------------------------------------------------

// CanClose checks that an empty raffle may be closed by caller.
func (r *Raffle) CanClose(raffleID id.RaffleID, caller id.Identity) error {
	if err := r.checkCreator(caller); err != nil {
		return err
	}
	if !r.Active {
		return ReasonRaffleNotActive.Err()
	}
	if r.ID != raffleID {
		return ReasonRaffleNotFound.Err()
	}
	if r.Entries.Len() > 0 {
		return ReasonCannotCloseRaffleWithEntries.Err()
	}
	return nil
}

// ApplyClose deactivates the raffle. Irreversible.
func (r *Raffle) ApplyClose() {
	r.Active = false
}

// CanConclude checks that a raffle with a provisional winner may be frozen.
func (r *Raffle) CanConclude(raffleID id.RaffleID, caller id.Identity, now time.Time) error {
	if err := r.checkCreator(caller); err != nil {
		return err
	}
	if !r.Active {
		return ReasonRaffleNotActive.Err()
	}
	if r.ID != raffleID {
		return ReasonRaffleNotFound.Err()
	}
	if r.PartialWinner == nil {
		return ReasonNoWinnerSelected.Err()
	}
	if !r.IsExpired(now) {
		return ReasonRaffleNotExpired.Err()
	}
	return nil
}

// ApplyConclude deactivates the raffle, freezing the provisional winner.
func (r *Raffle) ApplyConclude() {
	r.Active = false
}

// -----------------------------------------------------------------------------
// Claim
// -----------------------------------------------------------------------------

// CanClaim checks settlement preconditions.
func (r *Raffle) CanClaim(raffleID id.RaffleID, caller id.Identity) error {
	if err := r.checkCreator(caller); err != nil {
		return err
	}
	if r.ID != raffleID {
		return ReasonRaffleNotFound.Err()
	}
	if r.Active {
		return ReasonRaffleStillActive.Err()
	}
	if r.PartialWinner == nil {
		return ReasonNoWinnerSelected.Err()
	}
	if r.Winner != nil {
		return ReasonAlreadyClaimed.Err()
	}
	return nil
}

// ApplyClaim finalizes the winner. Must only be called after both transfers succeeded.
func (r *Raffle) ApplyClaim() id.Identity {
	winner := *r.PartialWinner
	r.Winner = &winner
	return winner
}

// IsParticipant reports whether identity has entered.
func (r *Raffle) IsParticipant(identity id.Identity) bool {
	return r.Entries.Contains(identity)
}

// Clone returns a deep copy safe to mutate independently.
func (r *Raffle) Clone() *Raffle {
	out := *r
	out.Entries = r.Entries.clone()
	if r.PartialWinner != nil {
		w := *r.PartialWinner
		out.PartialWinner = &w
	}
	if r.Winner != nil {
		w := *r.Winner
		out.Winner = &w
	}
	return &out
}

package models

import (
	"time"

	"raffle/internal/ledger"
	id "raffle/pkg/domain"
)

// Status is the derived lifecycle state of a raffle.
type Status string

const (
	StatusActive       Status = "active"
	StatusExpired      Status = "expired"
	StatusWinnerPicked Status = "winner_picked"
	StatusConcluded    Status = "concluded"
	StatusSettled      Status = "settled"
	StatusClosed       Status = "closed"
)

// CreateRaffleRequest holds creation parameters.
type CreateRaffleRequest struct {
	AssetRef   id.AssetID
	EntryFee   uint64
	MaxEntries int
	ExpiryDate time.Time
}

// ClaimRequest names the asset holdings the claim moves between.
type ClaimRequest struct {
	// WinnerDestination receives the asset. It is not checked against the
	// selected winner.
	WinnerDestination ledger.Account
	// CreatorSource holds the asset and must be the creator's own account.
	CreatorSource ledger.Account
}

// ListFilter narrows ListRaffles. Nil fields do not filter.
type ListFilter struct {
	Creator     *id.Identity
	Participant *id.Identity
	Active      *bool
	Limit       int
}

// Matches reports whether r satisfies the filter (Limit is ignored).
func (f ListFilter) Matches(r *Raffle) bool {
	if f.Creator != nil && r.Creator != *f.Creator {
		return false
	}
	if f.Participant != nil && !r.IsParticipant(*f.Participant) {
		return false
	}
	if f.Active != nil && r.Active != *f.Active {
		return false
	}
	return true
}

// WinnerSelected is published when a provisional winner is drawn.
type WinnerSelected struct {
	Raffle     ledger.Account `json:"raffle"`
	RaffleID   id.RaffleID    `json:"raffle_id"`
	Winner     id.Identity    `json:"winner"`
	SelectedAt time.Time      `json:"selected_at"`
}

// ClaimResult reports what a successful claim moved.
type ClaimResult struct {
	Raffle       *Raffle
	Winner       id.Identity
	SweptAmount  uint64
	AssetMovedTo ledger.Account
}

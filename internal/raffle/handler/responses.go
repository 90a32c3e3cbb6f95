package handler

import (
	"time"

	"raffle/internal/ledger"
	"raffle/internal/raffle/models"
	id "raffle/pkg/domain"
)

// RaffleResponse is the JSON view of a raffle.
type RaffleResponse struct {
	ID            id.RaffleID    `json:"id"`
	Creator       id.Identity    `json:"creator"`
	AssetRef      id.AssetID     `json:"asset_ref"`
	EntryFee      uint64         `json:"entry_fee"`
	MaxEntries    uint8          `json:"max_entries"`
	Entries       []id.Identity  `json:"entries"`
	PartialWinner *id.Identity   `json:"partial_winner,omitempty"`
	Winner        *id.Identity   `json:"winner,omitempty"`
	Active        bool           `json:"active"`
	Status        models.Status  `json:"status"`
	ExpiryDate    time.Time      `json:"expiry_date"`
	CreatedAt     time.Time      `json:"created_at"`
	Escrow        ledger.Account `json:"escrow"`
}

// FromRaffle converts a domain raffle to its response, deriving status at now.
func FromRaffle(r *models.Raffle, now time.Time) *RaffleResponse {
	return &RaffleResponse{
		ID:            r.ID,
		Creator:       r.Creator,
		AssetRef:      r.AssetRef,
		EntryFee:      r.EntryFee,
		MaxEntries:    r.MaxEntries,
		Entries:       r.Entries.Items(),
		PartialWinner: r.PartialWinner,
		Winner:        r.Winner,
		Active:        r.Active,
		Status:        r.Status(now),
		ExpiryDate:    r.ExpiryDate,
		CreatedAt:     r.CreatedAt,
		Escrow:        r.Escrow,
	}
}

// RaffleListResponse is the response for GET /v1/raffles.
type RaffleListResponse struct {
	Raffles []*RaffleResponse `json:"raffles"`
	Count   int               `json:"count"`
}

func FromRaffles(raffles []*models.Raffle, now time.Time) *RaffleListResponse {
	out := make([]*RaffleResponse, 0, len(raffles))
	for _, r := range raffles {
		out = append(out, FromRaffle(r, now))
	}
	return &RaffleListResponse{Raffles: out, Count: len(out)}
}

// RegistryResponse is the JSON view of the registry.
type RegistryResponse struct {
	Initialized bool         `json:"initialized"`
	RaffleCount uint64       `json:"raffle_count"`
	Deployer    *id.Identity `json:"deployer,omitempty"`
}

func FromRegistry(reg *models.Registry) *RegistryResponse {
	resp := &RegistryResponse{
		Initialized: reg.Initialized,
		RaffleCount: reg.RaffleCount,
	}
	if reg.Initialized {
		deployer := reg.Deployer
		resp.Deployer = &deployer
	}
	return resp
}

// ClaimResponse is the response for POST /v1/raffles/{id}/claim.
type ClaimResponse struct {
	Raffle       *RaffleResponse `json:"raffle"`
	Winner       id.Identity     `json:"winner"`
	SweptAmount  uint64          `json:"swept_amount"`
	AssetMovedTo ledger.Account  `json:"asset_moved_to"`
}

func FromClaim(result *models.ClaimResult, now time.Time) *ClaimResponse {
	return &ClaimResponse{
		Raffle:       FromRaffle(result.Raffle, now),
		Winner:       result.Winner,
		SweptAmount:  result.SweptAmount,
		AssetMovedTo: result.AssetMovedTo,
	}
}

package handler

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"raffle/internal/ledger"
	"raffle/internal/raffle/models"
	id "raffle/pkg/domain"
	dErrors "raffle/pkg/domain-errors"
)

// CreateRaffleRequest is the HTTP request body for POST /v1/raffles.
type CreateRaffleRequest struct {
	AssetRef   string    `json:"asset_ref"`
	EntryFee   uint64    `json:"entry_fee"`
	MaxEntries int       `json:"max_entries"`
	ExpiryDate time.Time `json:"expiry_date"`

	parsedAsset id.AssetID
}

// Validate checks the request shape. Business rules (fee, capacity, expiry)
// are enforced by the service so their reasons stay stable.
func (r *CreateRaffleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.AssetRef = strings.TrimSpace(r.AssetRef)
	if r.AssetRef == "" {
		return dErrors.New(dErrors.CodeValidation, "asset_ref is required")
	}
	asset, err := parseAssetRef(r.AssetRef)
	if err != nil {
		return err
	}
	r.parsedAsset = asset
	if r.ExpiryDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "expiry_date is required")
	}
	return nil
}

// parseAssetRef accepts the all-zero reference so the service can reject it
// with InvalidNftMint.
func parseAssetRef(s string) (id.AssetID, error) {
	var asset id.AssetID
	if err := asset.UnmarshalText([]byte(s)); err != nil {
		return id.AssetID{}, err
	}
	return asset, nil
}

// ToModel converts the validated request into the service request.
func (r *CreateRaffleRequest) ToModel() models.CreateRaffleRequest {
	return models.CreateRaffleRequest{
		AssetRef:   r.parsedAsset,
		EntryFee:   r.EntryFee,
		MaxEntries: r.MaxEntries,
		ExpiryDate: r.ExpiryDate,
	}
}

// EnterRaffleRequest is the HTTP request body for POST /v1/raffles/{id}/entries.
type EnterRaffleRequest struct {
	Amount *uint64 `json:"amount"`
}

func (r *EnterRaffleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Amount == nil {
		return dErrors.New(dErrors.CodeValidation, "amount is required")
	}
	return nil
}

// ClaimRequest is the HTTP request body for POST /v1/raffles/{id}/claim.
type ClaimRequest struct {
	CreatorSource     string `json:"creator_source"`
	WinnerDestination string `json:"winner_destination"`
}

// Validate trims the account names. Missing accounts are reported by the
// service as MissingTokenAccounts.
func (r *ClaimRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.CreatorSource = strings.TrimSpace(r.CreatorSource)
	r.WinnerDestination = strings.TrimSpace(r.WinnerDestination)
	return nil
}

func (r *ClaimRequest) ToModel() models.ClaimRequest {
	return models.ClaimRequest{
		CreatorSource:     ledger.Account(r.CreatorSource),
		WinnerDestination: ledger.Account(r.WinnerDestination),
	}
}

// parseListFilter reads creator, participant, active and limit query parameters.
func parseListFilter(q url.Values) (models.ListFilter, error) {
	var filter models.ListFilter
	if v := q.Get("creator"); v != "" {
		creator, err := id.ParseIdentity(v)
		if err != nil {
			return filter, err
		}
		filter.Creator = &creator
	}
	if v := q.Get("participant"); v != "" {
		participant, err := id.ParseIdentity(v)
		if err != nil {
			return filter, err
		}
		filter.Participant = &participant
	}
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeBadRequest, "active must be true or false")
		}
		filter.Active = &active
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filter, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}

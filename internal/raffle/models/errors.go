package models

import (
	"errors"

	dErrors "raffle/pkg/domain-errors"
)

// Reason is the stable, branchable name of a raffle failure.
type Reason string

const (
	ReasonAlreadyInitialized           Reason = "AlreadyInitialized"
	ReasonNotInitialized               Reason = "NotInitialized"
	ReasonInvalidEntryFee              Reason = "InvalidEntryFee"
	ReasonInvalidMaxEntries            Reason = "InvalidMaxEntries"
	ReasonInvalidNftMint               Reason = "InvalidNftMint"
	ReasonInvalidExpiryDate            Reason = "InvalidExpiryDate"
	ReasonUnauthorized                 Reason = "Unauthorized"
	ReasonRaffleNotActive              Reason = "RaffleNotActive"
	ReasonRaffleNotFound               Reason = "RaffleNotFound"
	ReasonInvalidRaffleEntryFee        Reason = "InvalidRaffleEntryFee"
	ReasonMaxEntriesReached            Reason = "MaxEntriesReached"
	ReasonAlreadyEntered               Reason = "AlreadyEntered"
	ReasonRaffleExpired                Reason = "RaffleExpired"
	ReasonOperationLocked              Reason = "OperationLocked"
	ReasonNotEnoughEntries             Reason = "NotEnoughEntries"
	ReasonRaffleNotExpired             Reason = "RaffleNotExpired"
	ReasonCannotCloseRaffleWithEntries Reason = "CannotCloseRaffleWithEntries"
	ReasonRaffleStillActive            Reason = "RaffleStillActive"
	ReasonNoWinnerSelected             Reason = "NoWinnerSelected"
	ReasonAlreadyClaimed               Reason = "AlreadyClaimed"
	ReasonMissingTokenAccounts         Reason = "MissingTokenAccounts"
	ReasonTransferFailed               Reason = "TransferFailed"
	ReasonNftNotTransferred            Reason = "NftNotTransferred"
)

type reasonInfo struct {
	code    dErrors.Code
	message string
}

var reasons = map[Reason]reasonInfo{
	ReasonAlreadyInitialized:           {dErrors.CodeInvalidState, "registry is already initialized"},
	ReasonNotInitialized:               {dErrors.CodeInvalidState, "registry is not initialized"},
	ReasonInvalidEntryFee:              {dErrors.CodeValidation, "entry fee must be greater than zero"},
	ReasonInvalidMaxEntries:            {dErrors.CodeValidation, "max entries must be between 2 and 255"},
	ReasonInvalidNftMint:               {dErrors.CodeValidation, "asset reference cannot be the default address"},
	ReasonInvalidExpiryDate:            {dErrors.CodeValidation, "expiry date must be in the future"},
	ReasonUnauthorized:                 {dErrors.CodeForbidden, "only the raffle creator may perform this action"},
	ReasonRaffleNotActive:              {dErrors.CodeInvalidState, "raffle is not active"},
	ReasonRaffleNotFound:               {dErrors.CodeNotFound, "raffle not found"},
	ReasonInvalidRaffleEntryFee:        {dErrors.CodeValidation, "amount is below the entry fee"},
	ReasonMaxEntriesReached:            {dErrors.CodeCapacity, "raffle has reached its maximum entries"},
	ReasonAlreadyEntered:               {dErrors.CodeInvalidState, "caller has already entered this raffle"},
	ReasonRaffleExpired:                {dErrors.CodeTemporal, "raffle has expired"},
	ReasonOperationLocked:              {dErrors.CodeInvalidState, "another entry is in progress for this raffle"},
	ReasonNotEnoughEntries:             {dErrors.CodeInvalidState, "raffle has no entries"},
	ReasonRaffleNotExpired:             {dErrors.CodeTemporal, "raffle has not expired yet"},
	ReasonCannotCloseRaffleWithEntries: {dErrors.CodeInvalidState, "raffle with entries cannot be closed"},
	ReasonRaffleStillActive:            {dErrors.CodeInvalidState, "raffle is still active"},
	ReasonNoWinnerSelected:             {dErrors.CodeInvalidState, "no winner has been selected"},
	ReasonAlreadyClaimed:               {dErrors.CodeInvalidState, "prize has already been claimed"},
	ReasonMissingTokenAccounts:         {dErrors.CodeValidation, "asset source and destination accounts are required"},
	ReasonTransferFailed:               {dErrors.CodeTransfer, "fund transfer failed"},
	ReasonNftNotTransferred:            {dErrors.CodeTransfer, "asset transfer failed"},
}

// Err returns the coded domain error for r.
func (r Reason) Err() error {
	info := r.info()
	return dErrors.NewReason(info.code, string(r), info.message)
}

// Wrap returns the coded domain error for r with cause kept in the chain.
func (r Reason) Wrap(cause error) error {
	info := r.info()
	return dErrors.WrapReason(cause, info.code, string(r), info.message)
}

// Code returns the category of r.
func (r Reason) Code() dErrors.Code {
	return r.info().code
}

func (r Reason) info() reasonInfo {
	if info, ok := reasons[r]; ok {
		return info
	}
	return reasonInfo{dErrors.CodeInternal, string(r)}
}

// IsReason reports whether err is the raffle failure r.
func IsReason(err error, r Reason) bool {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Reason == string(r)
}

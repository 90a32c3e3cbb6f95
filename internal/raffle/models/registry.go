package models

import (
	id "raffle/pkg/domain"
)

// Registry is the singleton that issues raffle ids.
//
// Invariants:
//   - Bootstrap happens at most once
//   - RaffleCount only grows, by exactly one per created raffle
//   - Every issued id is in [1, RaffleCount]
type Registry struct {
	Initialized bool        `json:"initialized"`
	RaffleCount uint64      `json:"raffle_count"`
	Deployer    id.Identity `json:"deployer"`
}

// CanBootstrap returns nil if the registry has not been initialized.
func (r *Registry) CanBootstrap() error {
	if r.Initialized {
		return ReasonAlreadyInitialized.Err()
	}
	return nil
}

// ApplyBootstrap initializes the registry. Must only be called after CanBootstrap returns nil.
func (r *Registry) ApplyBootstrap(deployer id.Identity) {
	r.Initialized = true
	r.RaffleCount = 0
	r.Deployer = deployer
}

// IssueID increments the counter and returns the new raffle id.
func (r *Registry) IssueID() (id.RaffleID, error) {
	if !r.Initialized {
		return 0, ReasonNotInitialized.Err()
	}
	r.RaffleCount++
	return id.RaffleID(r.RaffleCount), nil
}

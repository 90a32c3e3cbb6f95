package sentinel

import "errors"

// Infrastructure facts returned by stores, optionally wrapped. Services
// translate them into domain errors; callers never see them directly.
//
//   - ErrNotFound: the record does not exist
//   - ErrConflict: a uniqueness constraint rejected the write
//   - ErrUnavailable: the backend gave up on the transaction (serialization
//     failure, deadlock, lock timeout); the operation may be retried
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)

package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and the backend client
// return these (optionally wrapped) so services can translate them into
// domain errors or session state.
//
//   - ErrNotFound: key or record does not exist
//   - ErrExpired: token, session or cache entry has expired
//   - ErrInvalidState: entity in wrong state for requested operation
//   - ErrUnavailable: backend or store temporarily unavailable
//   - ErrCorrupt: stored payload could not be decoded
var (
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrCorrupt      = errors.New("corrupt entry")
)

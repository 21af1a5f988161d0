package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: row does not exist
// - ErrConflict: a uniqueness guard rejected the write (e.g. second open session)
// - ErrAlreadyClosed: conditional close found the session already closed
// - ErrUnavailable: backing service temporarily unavailable
// - ErrLockHeld: another worker holds the lease
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyClosed = errors.New("already closed")
	ErrUnavailable   = errors.New("unavailable")
	ErrLockHeld      = errors.New("lock held")
)
